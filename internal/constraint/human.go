package constraint

import (
	"fmt"

	"github.com/arloliu/seatplan/types"
)

func rows(k int) string {
	if k == 1 {
		return "row"
	}

	return fmt.Sprintf("%d rows", k)
}

// entryHuman describes one expanded entry.
func entryHuman(kind types.Kind, a, b string, param int) string {
	switch kind {
	case types.KindFrontRows:
		return fmt.Sprintf("%s must sit in the first %s", a, rows(param))
	case types.KindBackRows:
		return fmt.Sprintf("%s must sit in the last %s", a, rows(param))
	case types.KindSoloTable:
		return a + " must sit alone at a table"
	case types.KindEmptyNeighbor:
		return a + " must have an empty seat next to them"
	case types.KindNoAdjacent:
		return a + " must have no direct neighbor"
	case types.KindSameTable:
		return fmt.Sprintf("%s and %s must sit at the same table", a, b)
	case types.KindFarApart:
		return fmt.Sprintf("%s and %s must sit at least %d tables apart", a, b, param)
	default:
		return string(kind)
	}
}

// batchHuman describes a whole batch of n entries.
func batchHuman(kind types.Kind, n, param int) string {
	noun := "student"
	if kind.IsBinary() {
		noun = "pair"
	}
	subject := fmt.Sprintf("%d %s", n, noun)
	if n != 1 {
		subject += "s"
	}

	switch kind {
	case types.KindFrontRows:
		return fmt.Sprintf("%s must sit in the first %s", subject, rows(param))
	case types.KindBackRows:
		return fmt.Sprintf("%s must sit in the last %s", subject, rows(param))
	case types.KindSoloTable:
		return subject + " must each sit alone at a table"
	case types.KindEmptyNeighbor:
		return subject + " must each have an empty seat next to them"
	case types.KindNoAdjacent:
		return subject + " must each have no direct neighbor"
	case types.KindSameTable:
		return subject + " must sit at the same table"
	case types.KindFarApart:
		return fmt.Sprintf("%s must sit at least %d tables apart", subject, param)
	default:
		return string(kind)
	}
}

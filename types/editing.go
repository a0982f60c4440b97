package types

// Selection is the active interactive selection.
//
// At most one of Student, Seat and Table is set, except that Student and Seat
// are jointly set while a placed student is highlighted on their own seat.
type Selection struct {
	Student *int      `json:"student,omitempty"`
	Seat    *SeatKey  `json:"seat,omitempty"`
	Table   *TableKey `json:"table,omitempty"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.Student == nil && s.Seat == nil && s.Table == nil
}

// Clone returns a copy that shares no pointers with s.
func (s Selection) Clone() Selection {
	var out Selection
	if s.Student != nil {
		out.Student = ptr(*s.Student)
	}
	if s.Seat != nil {
		out.Seat = ptr(*s.Seat)
	}
	if s.Table != nil {
		out.Table = ptr(*s.Table)
	}

	return out
}

// Offset is a pixel displacement applied to a table after the default grid layout.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// IsZero reports whether the offset moves nothing.
func (o Offset) IsZero() bool {
	return o.DX == 0 && o.DY == 0
}

// Add returns the sum of two offsets.
func (o Offset) Add(p Offset) Offset {
	return Offset{DX: o.DX + p.DX, DY: o.DY + p.DY}
}

// Rect is an axis-aligned rectangle in layout pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Translate returns the rectangle moved by o.
func (r Rect) Translate(o Offset) Rect {
	return Rect{X: r.X + o.DX, Y: r.Y + o.DY, W: r.W, H: r.H}
}

// Center returns the rectangle's center point.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Overlaps reports whether r and o share interior area. Rectangles that only
// touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Draft is the uncommitted displacement of a table being repositioned.
type Draft struct {
	Table   TableKey `json:"table"`
	DX      float64  `json:"dx"`
	DY      float64  `json:"dy"`
	Invalid bool     `json:"invalid"`
}

// Direction is one keyboard nudge direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// ParseDirection maps "up", "down", "left" and "right" (and arrow key names) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up", "ArrowUp":
		return DirUp, true
	case "down", "ArrowDown":
		return DirDown, true
	case "left", "ArrowLeft":
		return DirLeft, true
	case "right", "ArrowRight":
		return DirRight, true
	default:
		return 0, false
	}
}

// Delta returns the unit displacement of the direction scaled by step.
func (d Direction) Delta(step float64) Offset {
	switch d {
	case DirUp:
		return Offset{DY: -step}
	case DirDown:
		return Offset{DY: step}
	case DirLeft:
		return Offset{DX: -step}
	case DirRight:
		return Offset{DX: step}
	default:
		return Offset{}
	}
}

// FillStrategy chooses seats for unplaced students during an automatic fill.
type FillStrategy interface {
	// Fill proposes a seat for each student in unplaced.
	//
	// Parameters:
	//   - free: Seats that are valid, not forbidden and not occupied, in canonical order
	//   - unplaced: Ids of students without a seat, in roster order
	//
	// Returns:
	//   - map[int]SeatKey: Proposed seat per student; students may be left out when seats run out
	//   - error: Strategy error
	Fill(free []SeatKey, unplaced []int) (map[int]SeatKey, error)
}

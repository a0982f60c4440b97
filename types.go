package seatplan

import "github.com/arloliu/seatplan/types"

// Re-export types from the internal types package.
//
// The definitions live in the `types` subpackage so internal packages can use
// them without importing the root package; the aliases give users
// `seatplan.Student`, `seatplan.SeatKey`, etc.
type (
	Student      = types.Student
	Gender       = types.Gender
	NameView     = types.NameView
	Schema       = types.Schema
	SeatKey      = types.SeatKey
	TableKey     = types.TableKey
	Constraint   = types.Constraint
	Kind         = types.Kind
	BatchMarker  = types.BatchMarker
	Selection    = types.Selection
	Offset       = types.Offset
	Rect         = types.Rect
	Draft        = types.Draft
	Direction    = types.Direction
	SolveOptions = types.SolveOptions
	SolveJob     = types.SolveJob
	JobStatus    = types.JobStatus
	ExportLinks  = types.ExportLinks
	ClickResult  = types.ClickResult
	Change       = types.Change
	ChangeKind   = types.ChangeKind
)

// Re-export interfaces from the internal types package for convenience.
type (
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Hooks            = types.Hooks
	RosterSource     = types.RosterSource
	SolverBackend    = types.SolverBackend
	ExportBackend    = types.ExportBackend
	FillStrategy     = types.FillStrategy
	Clock            = types.Clock
)

// Re-export constraint kinds.
const (
	KindFrontRows     = types.KindFrontRows
	KindBackRows      = types.KindBackRows
	KindSoloTable     = types.KindSoloTable
	KindEmptyNeighbor = types.KindEmptyNeighbor
	KindNoAdjacent    = types.KindNoAdjacent
	KindSameTable     = types.KindSameTable
	KindFarApart      = types.KindFarApart
	KindForbidSeat    = types.KindForbidSeat
	KindExactSeat     = types.KindExactSeat
)

// Re-export name views.
const (
	NameViewFirst = types.NameViewFirst
	NameViewLast  = types.NameViewLast
	NameViewBoth  = types.NameViewBoth
)

// Re-export seat click results.
const (
	ClickRejected         = types.ClickRejected
	ClickPlaced           = types.ClickPlaced
	ClickSwapped          = types.ClickSwapped
	ClickHighlighted      = types.ClickHighlighted
	ClickCleared          = types.ClickCleared
	ClickOccupantSelected = types.ClickOccupantSelected
	ClickSeatSelected     = types.ClickSeatSelected
	ClickSeatDeselected   = types.ClickSeatDeselected
)

// Re-export change kinds.
const (
	ChangeRoster      = types.ChangeRoster
	ChangeSchema      = types.ChangeSchema
	ChangePlacement   = types.ChangePlacement
	ChangeSelection   = types.ChangeSelection
	ChangeConstraints = types.ChangeConstraints
	ChangeLayout      = types.ChangeLayout
	ChangeSolve       = types.ChangeSolve
	ChangeImport      = types.ChangeImport
)

// Re-export nudge directions.
const (
	DirUp    = types.DirUp
	DirDown  = types.DirDown
	DirLeft  = types.DirLeft
	DirRight = types.DirRight
)

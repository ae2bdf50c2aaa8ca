package models

// RoundStatus is the lifecycle state of a round.
type RoundStatus string

const (
	RoundOpen     RoundStatus = "open"
	RoundClosed   RoundStatus = "closed"
	RoundFinished RoundStatus = "finished"
)

// Active reports whether the round still blocks a new round on its table.
func (s RoundStatus) Active() bool {
	return s == RoundOpen || s == RoundClosed
}

// Color is a wheel pocket color.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

// redSlots is the European wheel red set. It is not an even/odd split.
var redSlots = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// MaxSlot is the highest pocket number on the wheel.
const MaxSlot = 36

// ColorOf returns the color of a slot. Out-of-range slots return "".
func ColorOf(slot int) Color {
	switch {
	case slot == 0:
		return Green
	case slot < 0 || slot > MaxSlot:
		return ""
	case redSlots[slot]:
		return Red
	default:
		return Black
	}
}

// Round represents one instance of wheel play on a table.
type Round struct {
	// Number is the unique, monotonically increasing round identifier.
	Number int64

	// TableID is the table this round belongs to. At most one round per
	// table may be open or closed at any time.
	TableID string

	// Status is the lifecycle state; transitions only move forward.
	Status RoundStatus

	// WinningSlot is set exactly once, on the transition to finished.
	WinningSlot *int

	// CreatedAt, ClosedAt and FinishedAt are Unix timestamps. The last two
	// are zero until the matching transition happened.
	CreatedAt  int64
	ClosedAt   int64
	FinishedAt int64
}

// WinningColor derives the color of the winning slot. Empty until finished.
func (r *Round) WinningColor() Color {
	if r.WinningSlot == nil {
		return ""
	}
	return ColorOf(*r.WinningSlot)
}

// RoundStats aggregates the wagers of one round for reporting.
type RoundStats struct {
	TotalWagers  int
	TotalAmount  Money
	ColorWagers  int
	NumberWagers int
	Players      int
	LastWagerAt  int64

	// TotalPayout is only meaningful once the round finished.
	TotalPayout Money
}

// Package ordering assigns sparse integer positions to sibling items
// (columns within a board, tasks within a column).
//
// New items are appended one Gap past the current maximum. Items dropped
// between two neighbours take the midpoint; when two neighbours are
// adjacent integers the whole sibling list is renumbered to Gap spacing
// and the midpoint is taken again.
package ordering

import (
	"errors"
)

// DefaultGap is the spacing between appended items.
const DefaultGap = 1000

var (
	ErrGapTooSmall     = errors.New("ordering: gap must be at least 2")
	ErrIndexOutOfRange = errors.New("ordering: index out of range")
)

// Spacing carries the gap used by every ordering operation. The zero value
// uses DefaultGap.
type Spacing struct {
	Gap int
}

// NewSpacing validates gap. A gap below 2 leaves no integer between two
// renumbered neighbours.
func NewSpacing(gap int) (Spacing, error) {
	if gap < 2 {
		return Spacing{}, ErrGapTooSmall
	}
	return Spacing{Gap: gap}, nil
}

func (s Spacing) gap() int {
	if s.Gap < 2 {
		return DefaultGap
	}
	return s.Gap
}

// NextPosition returns the position for an item appended after existing.
func (s Spacing) NextPosition(existing []int) int {
	if len(existing) == 0 {
		return 0
	}
	highest := existing[0]
	for _, p := range existing[1:] {
		if p > highest {
			highest = p
		}
	}
	return highest + s.gap()
}

// PositionBetween returns the position for an item inserted between before
// and after. A nil bound means the item goes at that end of the list.
// Callers must check HasRoom first; with no room the result collides with
// a bound.
func (s Spacing) PositionBetween(before, after *int) int {
	switch {
	case before == nil && after == nil:
		return 0
	case after == nil:
		return *before + s.gap()
	case before == nil:
		return *after - s.gap()
	}
	return *before + floorDiv(*after-*before, 2)
}

// HasRoom reports whether a distinct integer exists strictly between the
// bounds. Open-ended bounds always have room.
func (s Spacing) HasRoom(before, after *int) bool {
	if before == nil || after == nil {
		return true
	}
	return *after-*before > 1
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

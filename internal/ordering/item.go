package ordering

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"
)

// Item is a record in an ordered collection. ParentID is the board for a
// column and the column for a task.
type Item struct {
	ID       uuid.UUID
	ParentID uuid.UUID
	Position int
}

// Placement is the outcome of inserting into a sibling list. Renumbered
// holds siblings whose position changed and must be persisted together
// with Position.
type Placement struct {
	Position   int
	Renumbered []Item
}

// PositionStore persists new positions for a batch of items. A batch is
// written atomically so a renumber is never half applied.
type PositionStore interface {
	UpdatePositions(ctx context.Context, items []Item) error
}

// Sort orders items for display: ascending position, ties by ID.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return bytes.Compare(items[i].ID[:], items[j].ID[:]) < 0
	})
}

func sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	Sort(out)
	return out
}

// Positions returns the positions of items in their current order.
func Positions(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Position
	}
	return out
}

// Renumber reassigns index*Gap to every sibling in display order and
// returns the items whose position changed.
func (s Spacing) Renumber(siblings []Item) []Item {
	_, changed := s.renumber(sorted(siblings))
	return changed
}

func (s Spacing) renumber(ordered []Item) (all []Item, changed []Item) {
	all = make([]Item, len(ordered))
	for i, it := range ordered {
		pos := i * s.gap()
		if it.Position != pos {
			it.Position = pos
			changed = append(changed, it)
		}
		all[i] = it
	}
	return all, changed
}

func bounds(ordered []Item, index int) (before, after *int) {
	if index > 0 {
		p := ordered[index-1].Position
		before = &p
	}
	if index < len(ordered) {
		p := ordered[index].Position
		after = &p
	}
	return before, after
}

// Place computes the position for a new item dropped at slot index of
// siblings (0 is the top, len(siblings) the bottom). When the neighbours
// leave no room the siblings are renumbered first.
func (s Spacing) Place(siblings []Item, index int) (Placement, error) {
	if index < 0 || index > len(siblings) {
		return Placement{}, ErrIndexOutOfRange
	}
	ordered := sorted(siblings)

	before, after := bounds(ordered, index)
	if s.HasRoom(before, after) {
		return Placement{Position: s.PositionBetween(before, after)}, nil
	}

	all, changed := s.renumber(ordered)
	before, after = bounds(all, index)
	return Placement{Position: s.PositionBetween(before, after), Renumbered: changed}, nil
}

// Move places item at slot index among the siblings of parentID. Item is
// excluded from siblings if present, so the same call reorders within a
// parent or reparents across parents. Nothing changes in the old parent;
// its gap simply persists.
func (s Spacing) Move(item Item, parentID uuid.UUID, siblings []Item, index int) (Item, Placement, error) {
	rest := make([]Item, 0, len(siblings))
	for _, sib := range siblings {
		if sib.ID != item.ID {
			rest = append(rest, sib)
		}
	}
	placement, err := s.Place(rest, index)
	if err != nil {
		return item, Placement{}, err
	}
	item.ParentID = parentID
	item.Position = placement.Position
	return item, placement, nil
}

// TightestGap returns the smallest distance between adjacent siblings.
// ok is false for fewer than two items.
func TightestGap(items []Item) (gap int, ok bool) {
	if len(items) < 2 {
		return 0, false
	}
	ordered := sorted(items)
	gap = ordered[1].Position - ordered[0].Position
	for i := 2; i < len(ordered); i++ {
		if d := ordered[i].Position - ordered[i-1].Position; d < gap {
			gap = d
		}
	}
	return gap, true
}

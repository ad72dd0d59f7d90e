package rules

import "fmt"

// SlotID identifies a defense slot. Ids are unique across both sides.
type SlotID int

// Slot is one face-down defense position.
type Slot struct {
	ID   SlotID `json:"id"`
	Rank Rank   `json:"rank"`
}

// Empty reports whether no card occupies the slot.
func (s Slot) Empty() bool {
	return !s.Rank.IsCard()
}

// SlotBase returns the first slot id of a side's row.
func SlotBase(side Side) SlotID {
	if side == SidePlayer {
		return 100
	}
	return 0
}

// DefenseRow is the fixed set of RowSize slots a side defends.
type DefenseRow struct {
	slots [RowSize]Slot
}

// NewDefenseRow creates an empty row with ids starting at SlotBase(side).
func NewDefenseRow(side Side) *DefenseRow {
	row := &DefenseRow{}
	base := SlotBase(side)
	for i := range row.slots {
		row.slots[i] = Slot{ID: base + SlotID(i)}
	}
	return row
}

// Slots returns a copy of the row in display order.
func (r *DefenseRow) Slots() []Slot {
	out := make([]Slot, RowSize)
	copy(out, r.slots[:])
	return out
}

// Slot looks a slot up by id.
func (r *DefenseRow) Slot(id SlotID) (Slot, bool) {
	for _, s := range r.slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// Place puts rank into slot id. Placing into an occupied slot is an error.
func (r *DefenseRow) Place(id SlotID, rank Rank) error {
	for i := range r.slots {
		if r.slots[i].ID != id {
			continue
		}
		if !r.slots[i].Empty() {
			return fmt.Errorf("slot %d already holds rank %d", id, r.slots[i].Rank)
		}
		r.slots[i].Rank = rank
		return nil
	}
	return fmt.Errorf("slot %d not in row", id)
}

// Clear empties slot id and returns the rank it held.
func (r *DefenseRow) Clear(id SlotID) Rank {
	for i := range r.slots {
		if r.slots[i].ID == id {
			prev := r.slots[i].Rank
			r.slots[i].Rank = NoRank
			return prev
		}
	}
	return NoRank
}

// EmptySlots returns the slots with no card, in row order.
func (r *DefenseRow) EmptySlots() []Slot {
	out := make([]Slot, 0, RowSize)
	for _, s := range r.slots {
		if s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

// Occupied returns the slots holding a card, in row order.
func (r *DefenseRow) Occupied() []Slot {
	out := make([]Slot, 0, RowSize)
	for _, s := range r.slots {
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

// Available returns occupied slots whose id is not in excluded.
func (r *DefenseRow) Available(excluded map[SlotID]bool) []Slot {
	out := make([]Slot, 0, RowSize)
	for _, s := range r.slots {
		if s.Empty() || excluded[s.ID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

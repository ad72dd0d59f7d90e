package game

import (
	"github.com/google/uuid"
	"github.com/wallwar/wallwar-server/internal/game/rules"
)

// MovementKind describes what a single card movement represents.
type MovementKind string

const (
	MovementDeal    MovementKind = "deal"
	MovementDraw    MovementKind = "draw"
	MovementReturn  MovementKind = "return"
	MovementAttack  MovementKind = "attack"
	MovementReclaim MovementKind = "reclaim"
	MovementDiscard MovementKind = "discard"
	MovementCede    MovementKind = "cede"
)

// BatchKind names the engine step a batch belongs to.
type BatchKind string

const (
	BatchDeal   BatchKind = "deal"
	BatchDraw   BatchKind = "draw"
	BatchReturn BatchKind = "return"
	BatchAttack BatchKind = "attack"
	BatchSettle BatchKind = "settle"
)

// Zone is a place a card can be in.
type Zone string

const (
	ZoneDeck    Zone = "deck"
	ZoneDiscard Zone = "discard"
	ZoneHand    Zone = "hand"
	ZoneSlot    Zone = "slot"
)

// Location pins a card position. SlotID is only meaningful for ZoneSlot.
type Location struct {
	Zone   Zone         `json:"zone"`
	Side   rules.Side   `json:"side"`
	SlotID rules.SlotID `json:"slot_id"`
}

func deckOf(side rules.Side) Location {
	return Location{Zone: ZoneDeck, Side: side, SlotID: -1}
}

func discardOf(side rules.Side) Location {
	return Location{Zone: ZoneDiscard, Side: side, SlotID: -1}
}

func handOf(side rules.Side) Location {
	return Location{Zone: ZoneHand, Side: side, SlotID: -1}
}

func slotOf(side rules.Side, id rules.SlotID) Location {
	return Location{Zone: ZoneSlot, Side: side, SlotID: id}
}

// Movement is one card transfer the presentation layer animates.
type Movement struct {
	ID    int          `json:"id"`
	Kind  MovementKind `json:"kind"`
	Owner rules.Side   `json:"owner"`
	Rank  rules.Rank   `json:"rank"`
	From  Location     `json:"from"`
	To    Location     `json:"to"`
}

// Batch groups the movements whose completion gates one state commit.
type Batch struct {
	ID        string     `json:"id"`
	Kind      BatchKind  `json:"kind"`
	Movements []Movement `json:"movements"`
}

// batchBuilder assigns movement ids in insertion order.
type batchBuilder struct {
	batch Batch
}

func newBatchBuilder(kind BatchKind) *batchBuilder {
	return &batchBuilder{batch: Batch{
		ID:        uuid.NewString(),
		Kind:      kind,
		Movements: make([]Movement, 0, 4),
	}}
}

func (b *batchBuilder) add(kind MovementKind, owner rules.Side, rank rules.Rank, from, to Location) *batchBuilder {
	b.batch.Movements = append(b.batch.Movements, Movement{
		ID:    len(b.batch.Movements),
		Kind:  kind,
		Owner: owner,
		Rank:  rank,
		From:  from,
		To:    to,
	})
	return b
}

func (b *batchBuilder) build() Batch {
	return b.batch
}

// pendingBatch counts completions for the single in-flight batch.
// apply mutates state exactly once; next advances the phase afterwards.
type pendingBatch struct {
	batch     Batch
	remaining map[int]struct{}
	apply     func()
	next      func()
}

func newPendingBatch(batch Batch, apply, next func()) *pendingBatch {
	remaining := make(map[int]struct{}, len(batch.Movements))
	for _, m := range batch.Movements {
		remaining[m.ID] = struct{}{}
	}
	return &pendingBatch{batch: batch, remaining: remaining, apply: apply, next: next}
}

// complete marks movementID done. counted is false for unknown or repeated ids;
// done is true only for the call that finished the batch.
func (p *pendingBatch) complete(movementID int) (counted, done bool) {
	if _, ok := p.remaining[movementID]; !ok {
		return false, false
	}
	delete(p.remaining, movementID)
	return true, len(p.remaining) == 0
}

func (p *pendingBatch) outstanding() int {
	return len(p.remaining)
}

package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap"
)

// Invariant names reported in InvariantViolation.Check.
const (
	InvariantConservation  = "card_conservation"
	InvariantDuplicateSlot = "duplicate_slot_id"
	InvariantBothZero      = "both_sides_zero"
	InvariantSlotState     = "slot_state"
	InvariantPhase         = "phase_transition"
)

// InvariantViolation reports an engine bug, never a game outcome.
type InvariantViolation struct {
	GameID string
	Check  string
	Detail string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("game %s: invariant %s violated: %s", v.GameID, v.Check, v.Detail)
}

type rankCounts map[rules.Rank]int

func (c rankCounts) add(ranks ...rules.Rank) {
	for _, r := range ranks {
		if r.IsCard() {
			c[r]++
		}
	}
}

// diff describes where c and other disagree, sorted by rank.
func (c rankCounts) diff(other rankCounts) string {
	seen := make(map[rules.Rank]bool)
	var ranks []int
	for r := range c {
		seen[r] = true
		ranks = append(ranks, int(r))
	}
	for r := range other {
		if !seen[r] {
			ranks = append(ranks, int(r))
		}
	}
	sort.Ints(ranks)

	var parts []string
	for _, r := range ranks {
		if c[rules.Rank(r)] != other[rules.Rank(r)] {
			parts = append(parts, fmt.Sprintf("rank %d: want %d got %d", r, c[rules.Rank(r)], other[rules.Rank(r)]))
		}
	}
	return strings.Join(parts, "; ")
}

// countCards tallies every card in play: decks, discards, rows, attack cards and held draws.
func (e *Engine) countCards() rankCounts {
	counts := make(rankCounts)
	for _, side := range rules.Sides() {
		ps := e.sides[side]
		counts.add(ps.Deck.Cards()...)
		counts.add(ps.Discard...)
		for _, slot := range ps.Row.Occupied() {
			counts.add(slot.Rank)
		}
		counts.add(ps.Drawn)
	}
	for _, d := range e.ctx.defeated {
		counts.add(d.AttackRank)
	}
	return counts
}

func (e *Engine) resetBaseline() {
	e.baseline = e.countCards()
}

// checkInvariants runs after every commit.
func (e *Engine) checkInvariants() {
	if got := e.countCards(); got.diff(e.baseline) != "" {
		e.violate(InvariantConservation, e.baseline.diff(got))
	}

	seen := make(map[rules.SlotID]bool, 2*rules.RowSize)
	for _, side := range rules.Sides() {
		for _, slot := range e.sides[side].Row.Slots() {
			if seen[slot.ID] {
				e.violate(InvariantDuplicateSlot, fmt.Sprintf("slot %d appears twice", slot.ID))
			}
			seen[slot.ID] = true
		}
	}
}

// violate panics in strict mode and logs otherwise.
func (e *Engine) violate(check, detail string) {
	v := &InvariantViolation{GameID: e.gameID, Check: check, Detail: detail}
	if e.opts.StrictInvariants {
		panic(v)
	}
	e.logger.Error("invariant violated",
		zap.String("check", check),
		zap.String("detail", detail),
	)
}

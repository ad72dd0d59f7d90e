package game

import "github.com/wallwar/wallwar-server/internal/game/rules"

// DefeatedSlot is a defended slot beaten this turn, with the attack card lying on it.
type DefeatedSlot struct {
	SlotID     rules.SlotID `json:"slot_id"`
	Rank       rules.Rank   `json:"rank"`
	AttackRank rules.Rank   `json:"attack_rank"`
}

type settlementInput struct {
	Attacker rules.Side
	RowSize  int
	// Defeated is in attack order.
	Defeated []DefeatedSlot
	// Drawn is the card the attacker still holds, NoRank if none.
	Drawn rules.Rank
	// Stalled is set when the attacker could not obtain a usable card
	// (empty deck or every remaining card tied).
	Stalled bool
}

type settlementPlan struct {
	Attacker        rules.Side
	Defender        rules.Side
	DefenderPenalty bool
	AttackerPenalty bool
	Reclaimed       []rules.Rank
	Discarded       []rules.Rank
	Ceded           rules.Rank
	Cleared         []rules.SlotID
}

// planSettlement decides the end-of-turn outcome without touching state.
// Both penalty checks are always evaluated.
//
// A stalled turn (deck empty on draw, or every remaining card tied) with no
// hit costs the attacker a point even though no card is held. This is
// deliberate policy, not only the held-card rule; it keeps games finite.
func planSettlement(in settlementInput) settlementPlan {
	plan := settlementPlan{
		Attacker:  in.Attacker,
		Defender:  in.Attacker.Opponent(),
		Reclaimed: make([]rules.Rank, 0, len(in.Defeated)),
		Discarded: make([]rules.Rank, 0, len(in.Defeated)),
		Cleared:   make([]rules.SlotID, 0, len(in.Defeated)),
		Ceded:     rules.NoRank,
	}

	if len(in.Defeated) == in.RowSize {
		plan.DefenderPenalty = true
	}
	if len(in.Defeated) == 0 && (in.Drawn.IsCard() || in.Stalled) {
		plan.AttackerPenalty = true
	}

	for _, d := range in.Defeated {
		plan.Reclaimed = append(plan.Reclaimed, d.Rank)
	}
	for _, d := range in.Defeated {
		plan.Discarded = append(plan.Discarded, d.AttackRank)
	}
	if in.Drawn.IsCard() {
		plan.Ceded = in.Drawn
	}
	for _, d := range in.Defeated {
		plan.Cleared = append(plan.Cleared, d.SlotID)
	}
	return plan
}

// movements renders the card migrations of the plan as one settle batch.
func (p settlementPlan) movements(b *batchBuilder) {
	for i, id := range p.Cleared {
		b.add(MovementReclaim, p.Attacker, p.Reclaimed[i], slotOf(p.Defender, id), deckOf(p.Attacker))
	}
	for i, id := range p.Cleared {
		b.add(MovementDiscard, p.Attacker, p.Discarded[i], slotOf(p.Defender, id), discardOf(p.Attacker))
	}
	if p.Ceded.IsCard() {
		b.add(MovementCede, p.Attacker, p.Ceded, handOf(p.Attacker), deckOf(p.Defender))
	}
}

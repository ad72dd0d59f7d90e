package rules

// Ruleset holds the rank-dependent rules of a game.
type Ruleset struct {
	// MaxRank is the highest rank in the deck; only rank 1 beats it.
	MaxRank Rank
}

// NewRuleset returns the rules for a deck of ranks 1..rankCount.
func NewRuleset(rankCount int) Ruleset {
	if rankCount < 1 {
		rankCount = DefaultRankCount
	}
	return Ruleset{MaxRank: Rank(rankCount)}
}

// Beats reports whether a drawn card defeats a defended card.
// Rank 1 beats only MaxRank; every other rank beats strictly lower ranks.
func (rs Ruleset) Beats(drawn, defended Rank) bool {
	if !drawn.IsCard() || !defended.IsCard() {
		return false
	}
	if drawn == 1 {
		return defended == rs.MaxRank
	}
	return defended < drawn
}

// CandidatesFor returns the slots a drawn card can defeat.
// slots must already exclude slots defeated earlier in the turn.
func (rs Ruleset) CandidatesFor(slots []Slot, drawn Rank) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if rs.Beats(drawn, s.Rank) {
			out = append(out, s)
		}
	}
	return out
}

// IsTie reports whether drawn equals the rank of any occupied slot.
func (rs Ruleset) IsTie(slots []Slot, drawn Rank) bool {
	if !drawn.IsCard() {
		return false
	}
	for _, s := range slots {
		if s.Rank == drawn {
			return true
		}
	}
	return false
}

// LegalityResult explains whether a target selection is allowed.
type LegalityResult struct {
	Legal  bool
	Reason string
}

// CheckTarget validates a selected slot against the attackable set.
func CheckTarget(attackable []SlotID, id SlotID) LegalityResult {
	if len(attackable) == 0 {
		return LegalityResult{Legal: false, Reason: "no attackable slots"}
	}
	for _, candidate := range attackable {
		if candidate == id {
			return LegalityResult{Legal: true}
		}
	}
	return LegalityResult{Legal: false, Reason: "slot not attackable"}
}

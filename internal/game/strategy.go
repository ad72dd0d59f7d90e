package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wallwar/wallwar-server/internal/game/rules"
)

// DefaultStrategy is the heuristic the computer side plays with.
const DefaultStrategy = "strongest"

// AttackStrategy picks a target among the slots the drawn card can defeat.
// ok is false only when candidates is empty.
type AttackStrategy interface {
	Choose(drawn rules.Rank, candidates []rules.Slot) (target rules.SlotID, ok bool)
}

// StrategyFunc adapts a plain function to AttackStrategy.
type StrategyFunc func(drawn rules.Rank, candidates []rules.Slot) (rules.SlotID, bool)

func (f StrategyFunc) Choose(drawn rules.Rank, candidates []rules.Slot) (rules.SlotID, bool) {
	return f(drawn, candidates)
}

// Strongest takes the highest-ranked candidate, lowest slot id on ties.
func Strongest(_ rules.Rank, candidates []rules.Slot) (rules.SlotID, bool) {
	return pick(candidates, func(a, b rules.Slot) bool { return a.Rank > b.Rank })
}

// Weakest takes the lowest-ranked candidate, lowest slot id on ties.
func Weakest(_ rules.Rank, candidates []rules.Slot) (rules.SlotID, bool) {
	return pick(candidates, func(a, b rules.Slot) bool { return a.Rank < b.Rank })
}

func pick(candidates []rules.Slot, better func(a, b rules.Slot) bool) (rules.SlotID, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) || (c.Rank == best.Rank && c.ID < best.ID) {
			best = c
		}
	}
	return best.ID, true
}

var strategies = map[string]AttackStrategy{
	"strongest": StrategyFunc(Strongest),
	"weakest":   StrategyFunc(Weakest),
}

// LookupStrategy returns the strategy registered under name.
func LookupStrategy(name string) (AttackStrategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultStrategy
	}
	s, ok := strategies[key]
	if !ok {
		return nil, fmt.Errorf("unknown attack strategy %q (known: %s)", name, strings.Join(StrategyNames(), ", "))
	}
	return s, nil
}

// StrategyNames lists registered strategies in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

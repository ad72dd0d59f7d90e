package game

import (
	"sync"

	"github.com/wallwar/wallwar-server/internal/game/rules"
)

// StatsWatcherKey is the registry key of the engine's built-in stats watcher.
const StatsWatcherKey = "stats"

// SideStats counts what one side did over a game.
type SideStats struct {
	Turns        int `json:"turns"`
	Draws        int `json:"draws"`
	Ties         int `json:"ties"`
	Attacks      int `json:"attacks"`
	Penetrations int `json:"penetrations"`
	PointsLost   int `json:"points_lost"`
	EmptyDecks   int `json:"empty_decks"`
	Exhaustions  int `json:"exhaustions"`
}

// StatsSummary is a copy of the accumulated counters.
type StatsSummary struct {
	Sides  PerSide[SideStats] `json:"sides"`
	Winner *rules.Side        `json:"winner,omitempty"`
}

// StatsWatcher tallies game events per side.
type StatsWatcher struct {
	mu     sync.Mutex
	sides  map[rules.Side]*SideStats
	winner *rules.Side
}

func NewStatsWatcher() *StatsWatcher {
	w := &StatsWatcher{}
	w.Reset()
	return w
}

func (w *StatsWatcher) Key() string { return StatsWatcherKey }

func (w *StatsWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sides = map[rules.Side]*SideStats{
		rules.SidePlayer:   {},
		rules.SideComputer: {},
	}
	w.winner = nil
}

func (w *StatsWatcher) Watch(event rules.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sides[event.Side]
	if !ok {
		return
	}
	switch event.Type {
	case rules.EventCardDrawn:
		s.Draws++
	case rules.EventTie:
		s.Ties++
	case rules.EventSlotDefeated:
		s.Attacks++
	case rules.EventTurnEnded:
		s.Turns++
		if event.Amount == rules.RowSize {
			s.Penetrations++
		}
	case rules.EventPointLost:
		s.PointsLost += event.Amount
	case rules.EventDeckEmpty:
		s.EmptyDecks++
	case rules.EventRedrawExhausted:
		s.Exhaustions++
	case rules.EventGameOver:
		winner := event.Side
		w.winner = &winner
	}
}

// Summary returns a copy of the counters.
func (w *StatsWatcher) Summary() StatsSummary {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out StatsSummary
	for side, s := range w.sides {
		out.Sides.Set(side, *s)
	}
	if w.winner != nil {
		winner := *w.winner
		out.Winner = &winner
	}
	return out
}

package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap/zaptest"
)

// recordingPresenter keeps every batch and snapshot it is handed. With auto
// set it completes movements as soon as they are presented.
type recordingPresenter struct {
	mu      sync.Mutex
	target  MovementCompleter
	auto    bool
	batches []Batch
	renders []Snapshot
}

func (p *recordingPresenter) Present(batch Batch) {
	p.mu.Lock()
	p.batches = append(p.batches, batch)
	auto, target := p.auto, p.target
	p.mu.Unlock()

	if auto && target != nil {
		for _, m := range batch.Movements {
			target.NotifyMovementComplete(batch.ID, m.ID)
		}
	}
}

func (p *recordingPresenter) Render(snapshot Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders = append(p.renders, snapshot)
}

func (p *recordingPresenter) lastBatch() (Batch, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.batches) == 0 {
		return Batch{}, false
	}
	return p.batches[len(p.batches)-1], true
}

func (p *recordingPresenter) batchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

// ManualScheduler queues scheduled actions until the test runs them.
type ManualScheduler struct {
	queued []func()
}

func (s *ManualScheduler) After(_ time.Duration, fn func()) {
	s.queued = append(s.queued, fn)
}

func (s *ManualScheduler) Pending() int {
	return len(s.queued)
}

// RunNext runs the oldest queued action and reports whether one existed.
func (s *ManualScheduler) RunNext() bool {
	if len(s.queued) == 0 {
		return false
	}
	next := s.queued[0]
	s.queued = s.queued[1:]
	next()
	return true
}

// EngineTestHarness builds engines with scripted decks for scenario tests.
type EngineTestHarness struct {
	t         *testing.T
	engine    *Engine
	presenter *recordingPresenter
	scheduler *ManualScheduler
}

// NewEngineTestHarness creates a strict engine whose movements complete instantly
// and whose computer actions wait for RunNext.
func NewEngineTestHarness(t *testing.T, opts Options) *EngineTestHarness {
	return newHarness(t, opts, true)
}

// NewManualEngineTestHarness is like NewEngineTestHarness but movements
// must be completed explicitly.
func NewManualEngineTestHarness(t *testing.T, opts Options) *EngineTestHarness {
	return newHarness(t, opts, false)
}

func newHarness(t *testing.T, opts Options, auto bool) *EngineTestHarness {
	t.Helper()
	opts.StrictInvariants = true
	if opts.Seed == 0 && opts.Rand == nil {
		opts.Seed = 1
	}
	presenter := &recordingPresenter{auto: auto}
	scheduler := &ManualScheduler{}
	engine, err := NewEngine(zaptest.NewLogger(t), presenter, scheduler, opts)
	require.NoError(t, err)
	presenter.target = engine

	return &EngineTestHarness{
		t:         t,
		engine:    engine,
		presenter: presenter,
		scheduler: scheduler,
	}
}

// SetDecks replaces both decks (top first) and resets the conservation baseline.
func (h *EngineTestHarness) SetDecks(player, computer []rules.Rank) {
	h.Mutate(func(e *Engine) {
		e.sides[rules.SidePlayer].Deck = rules.NewDeckFrom(player...)
		e.sides[rules.SideComputer].Deck = rules.NewDeckFrom(computer...)
	})
}

// Mutate edits engine state directly and then resets the conservation baseline.
func (h *EngineTestHarness) Mutate(fn func(e *Engine)) {
	h.engine.mu.Lock()
	defer h.engine.mu.Unlock()
	fn(h.engine)
	h.engine.resetBaseline()
}

// Side returns a copy of the interesting parts of one side's state.
func (h *EngineTestHarness) Side(side rules.Side) (deck []rules.Rank, discard []rules.Rank, points int) {
	h.engine.mu.Lock()
	defer h.engine.mu.Unlock()
	ps := h.engine.sides[side]
	return ps.Deck.Cards(), append([]rules.Rank{}, ps.Discard...), ps.Points
}

// RowRanks returns the ranks of a row in display order.
func (h *EngineTestHarness) RowRanks(side rules.Side) []rules.Rank {
	snap := h.engine.Snapshot()
	row := snap.DefenseRows.Get(side)
	ranks := make([]rules.Rank, len(row))
	for i, s := range row {
		ranks[i] = s.Rank
	}
	return ranks
}

// CompleteLast fires every completion of the most recently presented batch.
func (h *EngineTestHarness) CompleteLast() Batch {
	h.t.Helper()
	batch, ok := h.presenter.lastBatch()
	require.True(h.t, ok, "no batch presented")
	for _, m := range batch.Movements {
		h.engine.NotifyMovementComplete(batch.ID, m.ID)
	}
	return batch
}

// RequirePhase asserts the current phase and attacker.
func (h *EngineTestHarness) RequirePhase(phase rules.Phase, attacker rules.Side) Snapshot {
	h.t.Helper()
	snap := h.engine.Snapshot()
	require.Equal(h.t, phase, snap.Phase, "phase")
	require.Equal(h.t, attacker, snap.Attacker, "attacker")
	return snap
}

func ranks(values ...int) []rules.Rank {
	out := make([]rules.Rank, len(values))
	for i, v := range values {
		out[i] = rules.Rank(v)
	}
	return out
}

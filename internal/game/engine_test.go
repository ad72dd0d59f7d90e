package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEngineDefaults(t *testing.T) {
	engine, err := NewEngine(zaptest.NewLogger(t), NewInstantPresenter(), ImmediateScheduler{}, Options{Seed: 3})
	require.NoError(t, err)

	snap := engine.Snapshot()
	assert.NotEmpty(t, snap.GameID)
	assert.False(t, snap.Started)
	assert.Equal(t, rules.PhaseDealing, snap.Phase)
	assert.Equal(t, DefaultMaxPoints, snap.Points.Player)
	assert.Equal(t, DefaultMaxPoints, snap.Points.Computer)
	assert.Equal(t, rules.DefaultRankCount*rules.CopiesPerRank, snap.DeckLengths.Player)
	assert.Equal(t, rules.DefaultRankCount*rules.CopiesPerRank, snap.DeckLengths.Computer)
	assert.True(t, engine.IsAutomated(rules.SideComputer))
	assert.False(t, engine.IsAutomated(rules.SidePlayer))
}

func TestNewEngineRejectsBadOptions(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewEngine(logger, nil, nil, Options{})
	assert.Error(t, err)

	_, err = NewEngine(logger, NewInstantPresenter(), nil, Options{RankCount: 1})
	assert.Error(t, err)

	_, err = NewEngine(logger, NewInstantPresenter(), nil, Options{MaxPoints: -2})
	assert.Error(t, err)

	_, err = NewEngine(logger, NewInstantPresenter(), nil, Options{ComputerDelay: -time.Second})
	assert.Error(t, err)
}

func TestStartGameDealsBothRows(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 4, 3, 2), ranks(1, 2, 3, 4))

	require.True(t, h.engine.StartGame(rules.SidePlayer))

	h.RequirePhase(rules.PhaseDraw, rules.SidePlayer)
	assert.Equal(t, ranks(5, 4, 3), h.RowRanks(rules.SidePlayer))
	assert.Equal(t, ranks(1, 2, 3), h.RowRanks(rules.SideComputer))

	playerDeck, _, _ := h.Side(rules.SidePlayer)
	computerDeck, _, _ := h.Side(rules.SideComputer)
	assert.Equal(t, ranks(2), playerDeck)
	assert.Equal(t, ranks(4), computerDeck)
	assert.Equal(t, 0, h.scheduler.Pending(), "human attacker must not schedule anything")
}

func TestFullPenetrationScenario(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2, 2, 2, 3), ranks(1, 1, 1, 4, 4, 4, 4))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	snap := h.RequirePhase(rules.PhaseAttack, rules.SidePlayer)
	assert.Equal(t, []rules.SlotID{0, 1, 2}, snap.Attackable)
	assert.Equal(t, rules.Rank(2), snap.Drawn.Player)

	require.True(t, h.engine.SelectAttackTarget(0))
	snap = h.RequirePhase(rules.PhaseDraw, rules.SidePlayer)
	assert.Empty(t, snap.Attackable)
	assert.Equal(t, []DefeatedSlot{{SlotID: 0, Rank: 1, AttackRank: 2}}, snap.Defeated)

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	snap = h.RequirePhase(rules.PhaseAttack, rules.SidePlayer)
	assert.Equal(t, []rules.SlotID{1, 2}, snap.Attackable, "defeated slots are excluded")
	require.True(t, h.engine.SelectAttackTarget(2))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	snap = h.RequirePhase(rules.PhaseAttack, rules.SidePlayer)
	assert.Equal(t, []rules.SlotID{1}, snap.Attackable)
	require.True(t, h.engine.SelectAttackTarget(1))

	// settlement ran, the computer row was refilled and the turn flipped
	snap = h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 2, snap.Turn)
	assert.Equal(t, 5, snap.Points.Player)
	assert.Equal(t, 4, snap.Points.Computer)
	assert.Empty(t, snap.Defeated)

	playerDeck, playerDiscard, _ := h.Side(rules.SidePlayer)
	assert.Equal(t, ranks(3, 1, 1, 1), playerDeck, "defeated cards go to the attacker's deck bottom")
	assert.Equal(t, ranks(2, 2, 2), playerDiscard, "attack cards go to the attacker's discard")

	computerDeck, computerDiscard, _ := h.Side(rules.SideComputer)
	assert.Equal(t, ranks(4), computerDeck)
	assert.Empty(t, computerDiscard)
	assert.Equal(t, ranks(4, 4, 4), h.RowRanks(rules.SideComputer))
	assert.Equal(t, ranks(5, 5, 5), h.RowRanks(rules.SidePlayer))

	assert.Equal(t, 1, h.scheduler.Pending(), "computer draw is scheduled")
	stats := h.engine.Stats()
	assert.Equal(t, 1, stats.Sides.Player.Penetrations)
	assert.Equal(t, 3, stats.Sides.Player.Attacks)
	assert.Equal(t, 1, stats.Sides.Computer.PointsLost)
}

func TestPenetrationIndependentOfAttackOrder(t *testing.T) {
	orders := [][]rules.SlotID{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}}
	for _, order := range orders {
		h := NewEngineTestHarness(t, Options{})
		h.SetDecks(ranks(5, 5, 5, 4, 3, 2), ranks(1, 1, 1))
		require.True(t, h.engine.StartGame(rules.SidePlayer))

		for _, target := range order {
			require.True(t, h.engine.RequestDraw(rules.SidePlayer))
			require.True(t, containsSlot(h.engine.Snapshot().Attackable, target))
			require.True(t, h.engine.SelectAttackTarget(target))
		}

		snap := h.engine.Snapshot()
		assert.Equal(t, 4, snap.Points.Computer, "order %v", order)
		assert.Equal(t, 5, snap.Points.Player, "order %v", order)
		_, discard, _ := h.Side(rules.SidePlayer)
		assert.Equal(t, ranks(4, 3, 2), discard, "order %v", order)
	}
}

func containsSlot(ids []rules.SlotID, id rules.SlotID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func TestNoCandidatesEndsTurnWithPenalty(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(4, 4, 4, 2), ranks(5, 5, 5))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))

	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 4, snap.Points.Player, "no-hit penalty")
	assert.Equal(t, 5, snap.Points.Computer)
	assert.Equal(t, rules.NoRank, snap.Drawn.Player)

	computerDeck, _, _ := h.Side(rules.SideComputer)
	assert.Equal(t, ranks(2), computerDeck, "held card is ceded to the defender's deck bottom")
	assert.Equal(t, ranks(5, 5, 5), h.RowRanks(rules.SideComputer))
}

func TestComputerNoCandidatesEndIsPaced(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 3), ranks(1, 1, 1, 2))
	require.True(t, h.engine.StartGame(rules.SideComputer))

	require.True(t, h.scheduler.RunNext())
	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, rules.Rank(2), snap.Drawn.Computer, "held until the scheduled end")
	assert.Equal(t, 5, snap.Points.Computer)
	require.Equal(t, 1, h.scheduler.Pending(), "turn end waits for the computer delay")

	require.True(t, h.scheduler.RunNext())
	snap = h.RequirePhase(rules.PhaseDraw, rules.SidePlayer)
	assert.Equal(t, 4, snap.Points.Computer)
	playerDeck, _, _ := h.Side(rules.SidePlayer)
	assert.Equal(t, ranks(3, 2), playerDeck, "held card ceded to the player's deck bottom")
	assert.Equal(t, 0, h.scheduler.Pending())
}

func TestTieReturnsCardAndRedraws(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 3, 4), ranks(3, 1, 2))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	before := h.engine.Snapshot()
	require.True(t, h.engine.RequestDraw(rules.SidePlayer))

	snap := h.RequirePhase(rules.PhaseAttack, rules.SidePlayer)
	assert.Equal(t, rules.Rank(4), snap.Drawn.Player)
	assert.Equal(t, []rules.SlotID{0, 1, 2}, snap.Attackable)
	assert.Equal(t, before.DefenseRows.Computer, snap.DefenseRows.Computer, "a tie never removes a defended card")
	assert.Equal(t, before.DeckLengths.Player-1, snap.DeckLengths.Player, "tie cycle nets to a rotation")

	playerDeck, _, _ := h.Side(rules.SidePlayer)
	assert.Equal(t, ranks(3), playerDeck, "tied card went to the bottom of the attacker's own deck")
	computerDeck, _, _ := h.Side(rules.SideComputer)
	assert.Empty(t, computerDeck)

	assert.Equal(t, 1, h.engine.Stats().Sides.Player.Ties)
}

func TestRedrawExhaustionEndsTurn(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 3, 3), ranks(3, 5, 5))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))

	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 4, snap.Points.Player, "a stalled turn without hits costs a point")
	playerDeck, _, _ := h.Side(rules.SidePlayer)
	assert.Equal(t, ranks(3, 3), playerDeck)

	stats := h.engine.Stats()
	assert.Equal(t, 2, stats.Sides.Player.Ties)
	assert.Equal(t, 1, stats.Sides.Player.Exhaustions)
}

func TestEmptyDeckForcesEnd(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5), ranks(1, 1, 1, 2))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))

	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 4, snap.Points.Player)
	assert.Equal(t, rules.NoRank, snap.Drawn.Player)
	assert.Equal(t, 1, h.engine.Stats().Sides.Player.EmptyDecks)
}

func TestVoluntaryEndAfterHit(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2, 3), ranks(1, 5, 5, 4))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	require.Equal(t, []rules.SlotID{0}, h.engine.Snapshot().Attackable)
	require.True(t, h.engine.SelectAttackTarget(0))
	require.True(t, h.engine.RequestEndTurn())

	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 5, snap.Points.Player)
	assert.Equal(t, 5, snap.Points.Computer)

	playerDeck, playerDiscard, _ := h.Side(rules.SidePlayer)
	assert.Equal(t, ranks(3, 1), playerDeck)
	assert.Equal(t, ranks(2), playerDiscard)
	assert.Equal(t, ranks(4, 5, 5), h.RowRanks(rules.SideComputer), "only the cleared slot is refilled")
}

func TestVoluntaryEndHoldingCard(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2), ranks(1, 1, 1))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	h.RequirePhase(rules.PhaseAttack, rules.SidePlayer)
	require.True(t, h.engine.RequestEndTurn())

	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 4, snap.Points.Player)
	computerDeck, _, _ := h.Side(rules.SideComputer)
	assert.Equal(t, ranks(2), computerDeck)
}

func TestVoluntaryEndWithoutDrawingHasNoPenalty(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2), ranks(1, 1, 1))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestEndTurn())

	snap := h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.Equal(t, 5, snap.Points.Player)
	assert.Equal(t, 5, snap.Points.Computer)
}

func TestCommandsRejected(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2, 2), ranks(1, 1, 1))

	assert.False(t, h.engine.RequestDraw(rules.SidePlayer), "draw before start")
	assert.False(t, h.engine.RequestEndTurn(), "end before start")
	assert.False(t, h.engine.StartGame(rules.Side(7)), "unknown side")

	require.True(t, h.engine.StartGame(rules.SidePlayer))
	assert.False(t, h.engine.StartGame(rules.SidePlayer), "second start")
	assert.False(t, h.engine.RequestDraw(rules.SideComputer), "not the attacker")
	assert.False(t, h.engine.SelectAttackTarget(0), "select during draw")

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	assert.False(t, h.engine.RequestDraw(rules.SidePlayer), "draw during attack")
	assert.False(t, h.engine.SelectAttackTarget(100), "own slot")
	assert.False(t, h.engine.SelectAttackTarget(55), "unknown slot")

	snap := h.RequirePhase(rules.PhaseAttack, rules.SidePlayer)
	assert.Equal(t, []rules.SlotID{0, 1, 2}, snap.Attackable, "rejected commands change nothing")
}

func TestComputerTurnUsesStrategy(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(4, 2, 4, 2), ranks(5, 5, 5, 5))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	// player's 2 cannot beat 5s; turn passes to the computer
	require.True(t, h.engine.RequestDraw(rules.SidePlayer))
	h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
	assert.False(t, h.engine.RequestDraw(rules.SideComputer), "computer side is not driven by commands")

	require.True(t, h.scheduler.RunNext())
	snap := h.RequirePhase(rules.PhaseAttack, rules.SideComputer)
	assert.Equal(t, []rules.SlotID{100, 101, 102}, snap.Attackable)
	assert.False(t, h.engine.SelectAttackTarget(100), "human cannot pick for the computer")

	require.True(t, h.scheduler.RunNext())
	snap = h.engine.Snapshot()
	require.NotEmpty(t, snap.Defeated)
	assert.Equal(t, rules.SlotID(100), snap.Defeated[0].SlotID, "strongest picks the highest rank, lowest id")
	assert.Equal(t, rules.Rank(4), snap.Defeated[0].Rank)
}

func TestStaleScheduledActionDropped(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(2, 2, 2), ranks(1, 1, 1, 4))
	require.True(t, h.engine.StartGame(rules.SideComputer))
	require.Equal(t, 1, h.scheduler.Pending())

	draw := h.scheduler.queued[0]
	draw()
	h.RequirePhase(rules.PhaseAttack, rules.SideComputer)

	draw()
	assert.Equal(t, 1, h.engine.Stats().Sides.Computer.Draws, "second run of the same action is stale")
	h.RequirePhase(rules.PhaseAttack, rules.SideComputer)
}

func TestMovementCompletionCounting(t *testing.T) {
	h := NewManualEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 4, 3, 2), ranks(1, 2, 3, 4))

	require.True(t, h.engine.StartGame(rules.SidePlayer))
	batch, ok := h.presenter.lastBatch()
	require.True(t, ok)
	assert.Equal(t, BatchDeal, batch.Kind)
	require.Len(t, batch.Movements, 6)
	for i, m := range batch.Movements {
		assert.Equal(t, i, m.ID)
		assert.Equal(t, MovementDeal, m.Kind)
	}

	snap := h.engine.Snapshot()
	assert.Equal(t, batch.ID, snap.PendingBatchID)
	assert.Equal(t, rules.PhaseDealing, snap.Phase)
	assert.Equal(t, ranks(0, 0, 0), h.RowRanks(rules.SidePlayer), "nothing commits before completion")

	assert.True(t, h.engine.NotifyMovementComplete(batch.ID, 0))
	assert.False(t, h.engine.NotifyMovementComplete(batch.ID, 0), "double fire ignored")
	assert.False(t, h.engine.NotifyMovementComplete(batch.ID, 99), "unknown movement ignored")
	assert.False(t, h.engine.NotifyMovementComplete("other-batch", 1), "unknown batch ignored")
	assert.False(t, h.engine.RequestEndTurn(), "input blocked while a batch is pending")

	// completion order is irrelevant
	for _, id := range []int{5, 3, 1, 4} {
		assert.True(t, h.engine.NotifyMovementComplete(batch.ID, id))
	}
	h.RequirePhase(rules.PhaseDealing, rules.SidePlayer)
	assert.True(t, h.engine.NotifyMovementComplete(batch.ID, 2))

	snap = h.RequirePhase(rules.PhaseDraw, rules.SidePlayer)
	assert.Empty(t, snap.PendingBatchID)
	assert.Equal(t, ranks(5, 4, 3), h.RowRanks(rules.SidePlayer))
	assert.False(t, h.engine.NotifyMovementComplete(batch.ID, 2), "committed batch ignored")
}

func TestManualSettlementBatch(t *testing.T) {
	h := NewManualEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2, 2, 2), ranks(1, 1, 1, 3, 3, 3))
	require.True(t, h.engine.StartGame(rules.SidePlayer))
	h.CompleteLast()

	for _, target := range []rules.SlotID{0, 1, 2} {
		require.True(t, h.engine.RequestDraw(rules.SidePlayer))
		h.CompleteLast()
		require.True(t, h.engine.SelectAttackTarget(target))
		h.CompleteLast()
	}

	batch, ok := h.presenter.lastBatch()
	require.True(t, ok)
	require.Equal(t, BatchSettle, batch.Kind)
	kinds := make(map[MovementKind]int)
	for _, m := range batch.Movements {
		kinds[m.Kind]++
	}
	assert.Equal(t, 3, kinds[MovementReclaim])
	assert.Equal(t, 3, kinds[MovementDiscard])
	assert.Equal(t, 0, kinds[MovementCede])

	snap := h.RequirePhase(rules.PhaseEnd, rules.SidePlayer)
	assert.Equal(t, 5, snap.Points.Computer, "points change only at commit")
	assert.Len(t, snap.Defeated, 3)

	h.CompleteLast()
	snap = h.RequirePhase(rules.PhaseDealing, rules.SideComputer)
	assert.Equal(t, 4, snap.Points.Computer)

	refill := h.CompleteLast()
	assert.Equal(t, BatchDeal, refill.Kind)
	assert.Len(t, refill.Movements, 3)
	h.RequirePhase(rules.PhaseDraw, rules.SideComputer)
}

func TestZeroMovementBatchCommitsImmediately(t *testing.T) {
	h := NewManualEngineTestHarness(t, Options{})
	h.SetDecks(nil, nil)

	require.True(t, h.engine.StartGame(rules.SidePlayer))
	assert.Equal(t, 0, h.presenter.batchCount(), "empty batches never reach the presenter")
	h.RequirePhase(rules.PhaseDraw, rules.SidePlayer)
}

func TestGameOverIsTerminal(t *testing.T) {
	h := NewEngineTestHarness(t, Options{MaxPoints: 1})
	h.SetDecks(ranks(5, 5, 5, 2), ranks(5, 5, 5))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	require.True(t, h.engine.RequestDraw(rules.SidePlayer))

	snap := h.RequirePhase(rules.PhaseGameOver, rules.SidePlayer)
	require.NotNil(t, snap.Winner)
	assert.Equal(t, rules.SideComputer, *snap.Winner)
	assert.Equal(t, 0, snap.Points.Player)

	winner, ok := h.engine.Winner()
	assert.True(t, ok)
	assert.Equal(t, rules.SideComputer, winner)

	assert.False(t, h.engine.RequestDraw(rules.SidePlayer))
	assert.False(t, h.engine.RequestEndTurn())
	assert.False(t, h.engine.SelectAttackTarget(0))
	assert.False(t, h.engine.StartGame(rules.SidePlayer))
	assert.Equal(t, 0, h.scheduler.Pending())
	assert.Equal(t, snap, h.engine.Snapshot())
}

func TestConservationViolationPanicsInStrictMode(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2, 2), ranks(1, 1, 1))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	// slip in a card without resetting the baseline
	h.engine.mu.Lock()
	h.engine.sides[rules.SidePlayer].Deck.Replenish(3)
	h.engine.mu.Unlock()

	defer func() {
		r := recover()
		v, ok := r.(*InvariantViolation)
		require.True(t, ok, "expected *InvariantViolation, got %T", r)
		assert.Equal(t, InvariantConservation, v.Check)
		assert.Contains(t, v.Error(), "rank 3")
	}()
	h.engine.RequestDraw(rules.SidePlayer)
	t.Fatal("expected panic")
}

func TestBothZeroRecoveryFavorsDefender(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	presenter := NewInstantPresenter()
	scheduler := &ManualScheduler{}
	engine, err := NewEngine(zap.New(core), presenter, scheduler, Options{Seed: 5, MaxPoints: 1})
	require.NoError(t, err)
	presenter.Bind(engine)

	engine.mu.Lock()
	engine.sides[rules.SidePlayer].Deck = rules.NewDeckFrom(ranks(5, 5, 5, 2, 2, 2)...)
	engine.sides[rules.SideComputer].Deck = rules.NewDeckFrom(ranks(1, 1, 1)...)
	engine.resetBaseline()
	engine.mu.Unlock()

	require.True(t, engine.StartGame(rules.SidePlayer))

	engine.mu.Lock()
	engine.sides[rules.SidePlayer].Points = 0
	engine.mu.Unlock()

	for _, target := range []rules.SlotID{0, 1, 2} {
		require.True(t, engine.RequestDraw(rules.SidePlayer))
		require.True(t, engine.SelectAttackTarget(target))
	}

	winner, ok := engine.Winner()
	require.True(t, ok)
	assert.Equal(t, rules.SideComputer, winner)
	assert.Equal(t, 1, logs.FilterMessage("invariant violated").Len())
	assert.Equal(t, InvariantBothZero, logs.All()[0].ContextMap()["check"])
}

func TestPresenterReceivesRenders(t *testing.T) {
	h := NewEngineTestHarness(t, Options{})
	h.SetDecks(ranks(5, 5, 5, 2), ranks(1, 1, 1))
	require.True(t, h.engine.StartGame(rules.SidePlayer))

	h.presenter.mu.Lock()
	renders := append([]Snapshot(nil), h.presenter.renders...)
	h.presenter.mu.Unlock()

	require.NotEmpty(t, renders)
	last := renders[len(renders)-1]
	assert.Equal(t, rules.PhaseDraw, last.Phase)
	assert.Equal(t, h.engine.Snapshot().Checksum(), last.Checksum())
}

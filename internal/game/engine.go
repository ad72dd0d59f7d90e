package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap"
)

const (
	// DefaultMaxPoints is the life-point pool each side starts with.
	DefaultMaxPoints = 5
	// DefaultComputerDelay paces automated actions so they can be followed on screen.
	DefaultComputerDelay = time.Second
)

// Options configures one game.
type Options struct {
	// GameID defaults to a random uuid.
	GameID    string
	RankCount int
	MaxPoints int
	// Seed drives shuffling when Rand is nil. Zero selects a time-based seed.
	Seed uint64
	Rand *rand.Rand
	// ComputerStrategy defaults to Strongest.
	ComputerStrategy AttackStrategy
	// PlayerStrategy, when set, automates the player side as well.
	PlayerStrategy   AttackStrategy
	ComputerDelay    time.Duration
	StrictInvariants bool
	// Recorder receives a snapshot after every commit when set.
	Recorder *ReplayRecorder
}

// PlayerState is everything one side owns.
type PlayerState struct {
	Side    rules.Side
	Deck    *rules.Deck
	Discard []rules.Rank
	Row     *rules.DefenseRow
	Drawn   rules.Rank
	Points  int
}

// turnContext accumulates per-turn state. attackable is recomputed every draw.
type turnContext struct {
	attackable []rules.SlotID
	defeated   []DefeatedSlot
	tieStreak  int
	stalled    bool
}

func (c *turnContext) defeatedSet() map[rules.SlotID]bool {
	set := make(map[rules.SlotID]bool, len(c.defeated))
	for _, d := range c.defeated {
		set[d.SlotID] = true
	}
	return set
}

func (c *turnContext) reset() {
	c.attackable = nil
	c.defeated = nil
	c.tieStreak = 0
	c.stalled = false
}

// Engine runs one game between the player and the computer.
//
// State only changes when a batch commits. Calls into the presenter, the
// scheduler and event listeners are queued while the lock is held and
// delivered afterwards, so any of them may call back into the engine.
type Engine struct {
	logger    *zap.Logger
	presenter Presenter
	scheduler Scheduler
	opts      Options
	ruleset   rules.Ruleset
	bus       *rules.EventBus
	watchers  *rules.WatcherRegistry
	stats     *StatsWatcher
	replay    *Replay
	gameID    string

	mu        sync.Mutex
	started   bool
	turn      *rules.TurnManager
	sides     map[rules.Side]*PlayerState
	ctx       turnContext
	pending   *pendingBatch
	winner    *rules.Side
	automated map[rules.Side]AttackStrategy
	baseline  rankCounts
	dirty     bool

	outbox   []func()
	flushing bool
}

// NewEngine builds a game with freshly shuffled decks and empty rows.
func NewEngine(logger *zap.Logger, presenter Presenter, scheduler Scheduler, opts Options) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if presenter == nil {
		return nil, errors.New("presenter is required")
	}
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	if opts.RankCount == 0 {
		opts.RankCount = rules.DefaultRankCount
	}
	if opts.RankCount < 2 {
		return nil, fmt.Errorf("rank count must be at least 2, got %d", opts.RankCount)
	}
	if opts.MaxPoints == 0 {
		opts.MaxPoints = DefaultMaxPoints
	}
	if opts.MaxPoints < 0 {
		return nil, fmt.Errorf("max points must be positive, got %d", opts.MaxPoints)
	}
	if opts.ComputerDelay < 0 {
		return nil, fmt.Errorf("computer delay must not be negative, got %s", opts.ComputerDelay)
	}
	if opts.ComputerStrategy == nil {
		opts.ComputerStrategy = StrategyFunc(Strongest)
	}
	if opts.GameID == "" {
		opts.GameID = uuid.NewString()
	}

	rng := opts.Rand
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	e := &Engine{
		logger:    logger.With(zap.String("game_id", opts.GameID)),
		presenter: presenter,
		scheduler: scheduler,
		opts:      opts,
		ruleset:   rules.NewRuleset(opts.RankCount),
		bus:       rules.NewEventBus(),
		watchers:  rules.NewWatcherRegistry(),
		stats:     NewStatsWatcher(),
		gameID:    opts.GameID,
		turn:      rules.NewTurnManager(rules.SidePlayer),
		sides:     make(map[rules.Side]*PlayerState, 2),
		automated: map[rules.Side]AttackStrategy{rules.SideComputer: opts.ComputerStrategy},
	}
	if opts.PlayerStrategy != nil {
		e.automated[rules.SidePlayer] = opts.PlayerStrategy
	}
	for _, side := range rules.Sides() {
		e.sides[side] = &PlayerState{
			Side:    side,
			Deck:    rules.NewDeck(opts.RankCount, rng),
			Discard: make([]rules.Rank, 0, rules.CopiesPerRank*opts.RankCount),
			Row:     rules.NewDefenseRow(side),
			Points:  opts.MaxPoints,
		}
	}

	e.watchers.Add(e.stats)
	e.watchers.Attach(e.bus)
	if opts.Recorder != nil {
		e.replay = opts.Recorder.StartRecording(e.gameID)
	}
	e.resetBaseline()

	e.logger.Debug("engine created",
		zap.Int("rank_count", opts.RankCount),
		zap.Int("max_points", opts.MaxPoints),
		zap.Bool("player_automated", opts.PlayerStrategy != nil),
	)
	return e, nil
}

// GameID returns the id of the game.
func (e *Engine) GameID() string { return e.gameID }

// Events returns the bus game events are published on.
func (e *Engine) Events() *rules.EventBus { return e.bus }

// Stats returns the counters of the built-in stats watcher.
func (e *Engine) Stats() StatsSummary { return e.stats.Summary() }

// Replay returns the recorded replay, or nil when recording is off.
func (e *Engine) Replay() *Replay { return e.replay }

// IsAutomated reports whether side is played by a strategy.
func (e *Engine) IsAutomated(side rules.Side) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.automated[side]
	return ok
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Winner returns the winning side once the game is over.
func (e *Engine) Winner() (rules.Side, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.winner == nil {
		return rules.SidePlayer, false
	}
	return *e.winner, true
}

// StartGame deals both rows and hands the first draw to first.
func (e *Engine) StartGame(first rules.Side) bool {
	return e.do(func() bool {
		if e.started || e.turn.Phase() != rules.PhaseDealing || !first.Valid() {
			e.reject("start_game", first)
			return false
		}
		e.started = true
		e.turn.SetAttacker(first)
		e.publish(e.event(rules.EventGameStarted, first))
		e.logger.Info("game started", zap.Stringer("first", first))
		e.beginDeal(rules.SidePlayer, rules.SideComputer)
		return true
	})
}

// RequestDraw draws for a human attacker.
func (e *Engine) RequestDraw(side rules.Side) bool {
	return e.do(func() bool {
		if !e.humanMayAct(side, rules.PhaseDraw) {
			e.reject("draw", side)
			return false
		}
		e.beginDraw()
		return true
	})
}

// SelectAttackTarget attacks slot id with the human attacker's drawn card.
func (e *Engine) SelectAttackTarget(id rules.SlotID) bool {
	return e.do(func() bool {
		attacker := e.turn.Attacker()
		if !e.humanMayAct(attacker, rules.PhaseAttack) {
			e.reject("select_slot", attacker)
			return false
		}
		if res := rules.CheckTarget(e.ctx.attackable, id); !res.Legal {
			e.logger.Debug("attack target rejected",
				zap.Int("slot_id", int(id)),
				zap.String("reason", res.Reason),
			)
			return false
		}
		e.attack(id)
		return true
	})
}

// RequestEndTurn ends the human attacker's turn voluntarily.
func (e *Engine) RequestEndTurn() bool {
	return e.do(func() bool {
		attacker := e.turn.Attacker()
		if !e.humanMayAct(attacker, rules.PhaseDraw, rules.PhaseAttack) {
			e.reject("end_turn", attacker)
			return false
		}
		e.enterEnd()
		return true
	})
}

// NotifyMovementComplete reports that one movement of the pending batch finished.
// It returns false for stale batches, unknown movements and repeats.
func (e *Engine) NotifyMovementComplete(batchID string, movementID int) bool {
	return e.do(func() bool {
		if e.pending == nil || e.pending.batch.ID != batchID {
			e.logger.Debug("completion for inactive batch ignored",
				zap.String("batch_id", batchID),
				zap.Int("movement_id", movementID),
			)
			return false
		}
		counted, done := e.pending.complete(movementID)
		if !counted {
			e.logger.Debug("duplicate or unknown movement ignored",
				zap.String("batch_id", batchID),
				zap.Int("movement_id", movementID),
			)
			return false
		}
		if done {
			e.commitPending()
		}
		return true
	})
}

func (e *Engine) humanMayAct(side rules.Side, phases ...rules.Phase) bool {
	if !e.started || e.turn.IsOver() || e.pending != nil {
		return false
	}
	if side != e.turn.Attacker() {
		return false
	}
	if _, auto := e.automated[side]; auto {
		return false
	}
	for _, p := range phases {
		if e.turn.Phase() == p {
			return true
		}
	}
	return false
}

func (e *Engine) reject(command string, side rules.Side) {
	pendingID := ""
	if e.pending != nil {
		pendingID = e.pending.batch.ID
	}
	e.logger.Debug("command rejected",
		zap.String("command", command),
		zap.Stringer("side", side),
		zap.Stringer("phase", e.turn.Phase()),
		zap.String("pending_batch_id", pendingID),
	)
}

// --- phase flow; everything below runs with e.mu held ---

func (e *Engine) advance(to rules.Phase) bool {
	if err := e.turn.Advance(to); err != nil {
		e.violate(InvariantPhase, err.Error())
		return false
	}
	e.dirty = true
	ev := e.event(rules.EventPhaseChanged, e.turn.Attacker())
	e.publish(ev)
	e.logger.Debug("phase changed",
		zap.Stringer("phase", to),
		zap.Stringer("attacker", e.turn.Attacker()),
		zap.Int("turn", e.turn.TurnNumber()),
	)
	return true
}

// beginDeal fills the empty slots of each listed row from its owner's deck.
func (e *Engine) beginDeal(sides ...rules.Side) {
	b := newBatchBuilder(BatchDeal)
	targets := make(map[rules.Side][]rules.SlotID, len(sides))
	for _, side := range sides {
		ps := e.sides[side]
		top := ps.Deck.Cards()
		for i, slot := range ps.Row.EmptySlots() {
			if i >= len(top) {
				break
			}
			b.add(MovementDeal, side, top[i], deckOf(side), slotOf(side, slot.ID))
			targets[side] = append(targets[side], slot.ID)
		}
	}

	e.startBatch(b.build(), func() {
		dealt := make([]rules.Event, 0, len(sides))
		for _, side := range sides {
			slots := targets[side]
			if len(slots) == 0 {
				continue
			}
			ps := e.sides[side]
			drawn := ps.Deck.DrawN(len(slots))
			if len(drawn) < len(slots) {
				e.violate(InvariantSlotState, fmt.Sprintf("deck of %s ran out while dealing", side))
			}
			ev := e.event(rules.EventCardsDealt, side)
			for i, rank := range drawn {
				if err := ps.Row.Place(slots[i], rank); err != nil {
					ps.Deck.Replenish(rank)
					e.violate(InvariantSlotState, err.Error())
					continue
				}
				ev.Slots = append(ev.Slots, slots[i])
				ev.Ranks = append(ev.Ranks, rank)
			}
			ev.Amount = len(ev.Slots)
			dealt = append(dealt, ev)
		}
		e.publishAll(dealt)
	}, func() {
		if e.advance(rules.PhaseDraw) {
			e.awaitDraw()
		}
	})
}

// awaitDraw waits for the human or schedules the automated draw.
func (e *Engine) awaitDraw() {
	e.ctx.attackable = nil
	if _, auto := e.automated[e.turn.Attacker()]; auto {
		e.schedule("draw", e.beginDraw)
	}
}

func (e *Engine) beginDraw() {
	attacker := e.turn.Attacker()
	ps := e.sides[attacker]
	top, ok := ps.Deck.Peek()
	if !ok {
		e.ctx.stalled = true
		e.publish(e.event(rules.EventDeckEmpty, attacker))
		e.logger.Info("deck empty on draw", zap.Stringer("side", attacker))
		e.enterEnd()
		return
	}

	b := newBatchBuilder(BatchDraw).add(MovementDraw, attacker, top, deckOf(attacker), handOf(attacker))
	e.startBatch(b.build(), func() {
		rank, _ := ps.Deck.Draw()
		ps.Drawn = rank
		ev := e.event(rules.EventCardDrawn, attacker)
		ev.Rank = rank
		e.publish(ev)
	}, e.resolveDraw)
}

// resolveDraw checks for a tie first, then computes the attackable set.
func (e *Engine) resolveDraw() {
	attacker := e.turn.Attacker()
	ps := e.sides[attacker]
	available := e.sides[e.turn.Defender()].Row.Available(e.ctx.defeatedSet())
	drawn := ps.Drawn

	if e.ruleset.IsTie(available, drawn) {
		e.ctx.tieStreak++
		ev := e.event(rules.EventTie, attacker)
		ev.Rank = drawn
		ev.Amount = e.ctx.tieStreak
		e.publish(ev)
		if !e.advance(rules.PhaseRedraw) {
			return
		}
		b := newBatchBuilder(BatchReturn).add(MovementReturn, attacker, drawn, handOf(attacker), deckOf(attacker))
		e.startBatch(b.build(), func() {
			ps.Deck.Replenish(ps.Drawn)
			ps.Drawn = rules.NoRank
		}, e.afterReturn)
		return
	}

	e.ctx.tieStreak = 0
	candidates := e.ruleset.CandidatesFor(available, drawn)
	if len(candidates) == 0 {
		e.logger.Debug("no attack candidates",
			zap.Stringer("side", attacker),
			zap.Int("rank", int(drawn)),
		)
		if _, auto := e.automated[attacker]; auto {
			e.schedule("end", e.enterEnd)
			return
		}
		e.enterEnd()
		return
	}

	ids := make([]rules.SlotID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	e.ctx.attackable = ids
	if !e.advance(rules.PhaseAttack) {
		return
	}
	ev := e.event(rules.EventAttackOptions, attacker)
	ev.Rank = drawn
	ev.Slots = append([]rules.SlotID(nil), ids...)
	e.publish(ev)

	if strategy, auto := e.automated[attacker]; auto {
		e.schedule("attack", func() { e.autoAttack(strategy) })
	}
}

// afterReturn redraws, unless every card left in the deck has tied in a row.
func (e *Engine) afterReturn() {
	attacker := e.turn.Attacker()
	if e.ctx.tieStreak >= e.sides[attacker].Deck.Len() {
		e.ctx.stalled = true
		ev := e.event(rules.EventRedrawExhausted, attacker)
		ev.Amount = e.ctx.tieStreak
		e.publish(ev)
		e.logger.Info("redraw exhausted",
			zap.Stringer("side", attacker),
			zap.Int("ties", e.ctx.tieStreak),
		)
		e.enterEnd()
		return
	}
	if e.advance(rules.PhaseDraw) {
		e.beginDraw()
	}
}

func (e *Engine) autoAttack(strategy AttackStrategy) {
	defender := e.sides[e.turn.Defender()]
	candidates := make([]rules.Slot, 0, len(e.ctx.attackable))
	for _, id := range e.ctx.attackable {
		if slot, ok := defender.Row.Slot(id); ok {
			candidates = append(candidates, slot)
		}
	}
	drawn := e.sides[e.turn.Attacker()].Drawn
	target, ok := strategy.Choose(drawn, candidates)
	if !ok || !rules.CheckTarget(e.ctx.attackable, target).Legal {
		e.logger.Warn("strategy chose an illegal target, falling back",
			zap.Int("slot_id", int(target)),
		)
		target, _ = Strongest(drawn, candidates)
	}
	e.attack(target)
}

// attack lays the drawn card on target. The attackable set is cleared first
// so no further selection is accepted until the next draw.
func (e *Engine) attack(target rules.SlotID) {
	attacker := e.turn.Attacker()
	defender := e.turn.Defender()
	ps := e.sides[attacker]
	slot, _ := e.sides[defender].Row.Slot(target)
	drawn := ps.Drawn
	e.ctx.attackable = nil

	b := newBatchBuilder(BatchAttack).add(MovementAttack, attacker, drawn, handOf(attacker), slotOf(defender, target))
	e.startBatch(b.build(), func() {
		e.ctx.defeated = append(e.ctx.defeated, DefeatedSlot{
			SlotID:     target,
			Rank:       slot.Rank,
			AttackRank: ps.Drawn,
		})
		ps.Drawn = rules.NoRank
		ev := e.event(rules.EventSlotDefeated, attacker)
		ev.SlotID = target
		ev.Rank = drawn
		ev.Ranks = []rules.Rank{slot.Rank}
		e.publish(ev)
	}, func() {
		if len(e.ctx.defeated) >= rules.RowSize {
			e.enterEnd()
			return
		}
		if e.advance(rules.PhaseDraw) {
			e.awaitDraw()
		}
	})
}

// enterEnd plans the settlement and presents it as one batch.
func (e *Engine) enterEnd() {
	if !e.advance(rules.PhaseEnd) {
		return
	}
	attacker := e.turn.Attacker()
	e.ctx.attackable = nil

	defeated := append([]DefeatedSlot(nil), e.ctx.defeated...)
	plan := planSettlement(settlementInput{
		Attacker: attacker,
		RowSize:  rules.RowSize,
		Defeated: defeated,
		Drawn:    e.sides[attacker].Drawn,
		Stalled:  e.ctx.stalled,
	})

	ev := e.event(rules.EventTurnEnded, attacker)
	ev.Amount = len(defeated)
	ev.Slots = append([]rules.SlotID(nil), plan.Cleared...)
	e.publish(ev)

	b := newBatchBuilder(BatchSettle)
	plan.movements(b)
	e.startBatch(b.build(), func() { e.applySettlement(plan) }, e.afterSettlement)
}

func (e *Engine) applySettlement(plan settlementPlan) {
	att := e.sides[plan.Attacker]
	def := e.sides[plan.Defender]

	if plan.DefenderPenalty {
		e.losePoint(def)
	}
	if plan.AttackerPenalty {
		e.losePoint(att)
	}

	for i, id := range plan.Cleared {
		reclaimed := def.Row.Clear(id)
		if reclaimed != plan.Reclaimed[i] {
			e.violate(InvariantSlotState, fmt.Sprintf("slot %d held %d, planned %d", id, reclaimed, plan.Reclaimed[i]))
		}
		att.Deck.Replenish(reclaimed)
	}
	att.Discard = append(att.Discard, plan.Discarded...)
	e.ctx.defeated = nil

	var events []rules.Event
	if plan.Ceded.IsCard() {
		def.Deck.Replenish(plan.Ceded)
		att.Drawn = rules.NoRank
		ev := e.event(rules.EventCardCeded, plan.Attacker)
		ev.Rank = plan.Ceded
		events = append(events, ev)
	}
	if len(plan.Reclaimed) > 0 {
		ev := e.event(rules.EventCardsReclaimed, plan.Attacker)
		ev.Ranks = append([]rules.Rank(nil), plan.Reclaimed...)
		ev.Amount = len(plan.Reclaimed)
		events = append(events, ev)
	}
	if len(plan.Discarded) > 0 {
		ev := e.event(rules.EventCardsDiscarded, plan.Attacker)
		ev.Ranks = append([]rules.Rank(nil), plan.Discarded...)
		ev.Amount = len(plan.Discarded)
		events = append(events, ev)
	}
	e.publishAll(events)
}

func (e *Engine) losePoint(ps *PlayerState) {
	if ps.Points <= 0 {
		return
	}
	ps.Points--
	ev := e.event(rules.EventPointLost, ps.Side)
	ev.Amount = 1
	e.publish(ev)
	e.logger.Info("point lost",
		zap.Stringer("side", ps.Side),
		zap.Int("remaining", ps.Points),
	)
}

// afterSettlement ends the game or flips the turn and refills the old defender's row.
func (e *Engine) afterSettlement() {
	playerOut := e.sides[rules.SidePlayer].Points == 0
	computerOut := e.sides[rules.SideComputer].Points == 0

	switch {
	case playerOut && computerOut:
		e.violate(InvariantBothZero, "both sides reached zero points in one settlement")
		e.finish(e.turn.Defender())
	case playerOut:
		e.finish(rules.SideComputer)
	case computerOut:
		e.finish(rules.SidePlayer)
	default:
		oldDefender := e.turn.Defender()
		e.turn.EndTurn()
		e.ctx.reset()
		if e.advance(rules.PhaseDealing) {
			e.beginDeal(oldDefender)
		}
	}
}

func (e *Engine) finish(winner rules.Side) {
	if !e.advance(rules.PhaseGameOver) {
		return
	}
	e.winner = &winner
	e.publish(e.event(rules.EventGameOver, winner))
	e.logger.Info("game over",
		zap.Stringer("winner", winner),
		zap.Int("turns", e.turn.TurnNumber()),
	)
}

// --- batches and delivery ---

func (e *Engine) startBatch(batch Batch, apply, next func()) {
	e.pending = newPendingBatch(batch, apply, next)
	e.dirty = true
	if len(batch.Movements) == 0 {
		e.commitPending()
		return
	}
	e.logger.Debug("batch started",
		zap.String("batch_id", batch.ID),
		zap.String("kind", string(batch.Kind)),
		zap.Int("movements", len(batch.Movements)),
	)
	e.enqueue(func() { e.presenter.Present(batch) })
}

func (e *Engine) commitPending() {
	p := e.pending
	e.pending = nil
	p.apply()
	e.dirty = true
	e.checkInvariants()
	if e.replay != nil {
		e.replay.RecordState(e.snapshotLocked())
	}
	p.next()
}

// schedule runs action after the computer delay unless the phase moved on meanwhile.
func (e *Engine) schedule(name string, action func()) {
	seq := e.turn.Seq()
	delay := e.opts.ComputerDelay
	e.enqueue(func() {
		e.scheduler.After(delay, func() {
			e.do(func() bool {
				if e.turn.Seq() != seq || e.pending != nil {
					e.logger.Debug("stale scheduled action dropped", zap.String("action", name))
					return false
				}
				action()
				return true
			})
		})
	})
}

func (e *Engine) event(eventType rules.EventType, side rules.Side) rules.Event {
	ev := rules.NewEvent(eventType, e.gameID, side)
	ev.Phase = e.turn.Phase()
	ev.Turn = e.turn.TurnNumber()
	return ev
}

func (e *Engine) publish(ev rules.Event) {
	e.enqueue(func() { e.bus.Publish(ev) })
}

// publishAll delivers related events back to back.
func (e *Engine) publishAll(events []rules.Event) {
	if len(events) == 0 {
		return
	}
	e.enqueue(func() { e.bus.PublishBatch(events) })
}

func (e *Engine) enqueue(fn func()) {
	e.outbox = append(e.outbox, fn)
}

// do runs fn under the lock, then delivers queued calls.
func (e *Engine) do(fn func() bool) bool {
	accepted := e.locked(fn)
	e.flush()
	return accepted
}

func (e *Engine) locked(fn func() bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	accepted := fn()
	if e.dirty {
		e.dirty = false
		snap := e.snapshotLocked()
		e.enqueue(func() { e.presenter.Render(snap) })
	}
	return accepted
}

// flush delivers the outbox. Calls made from inside a delivery only append
// to the outbox; the outermost flush drains it, so nesting stays flat.
func (e *Engine) flush() {
	e.mu.Lock()
	if e.flushing {
		e.mu.Unlock()
		return
	}
	e.flushing = true
	defer func() {
		e.flushing = false
		e.mu.Unlock()
	}()

	for len(e.outbox) > 0 {
		next := e.outbox[0]
		e.outbox = e.outbox[1:]
		func() {
			e.mu.Unlock()
			defer e.mu.Lock()
			next()
		}()
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		GameID:     e.gameID,
		Started:    e.started,
		Phase:      e.turn.Phase(),
		Attacker:   e.turn.Attacker(),
		Turn:       e.turn.TurnNumber(),
		Defeated:   append([]DefeatedSlot{}, e.ctx.defeated...),
		Attackable: append([]rules.SlotID{}, e.ctx.attackable...),
	}
	for _, side := range rules.Sides() {
		ps := e.sides[side]
		snap.Points.Set(side, ps.Points)
		snap.DeckLengths.Set(side, ps.Deck.Len())
		snap.DiscardLengths.Set(side, len(ps.Discard))
		snap.Drawn.Set(side, ps.Drawn)
		snap.DefenseRows.Set(side, ps.Row.Slots())
	}
	if e.pending != nil {
		snap.PendingBatchID = e.pending.batch.ID
	}
	if e.winner != nil {
		winner := *e.winner
		snap.Winner = &winner
	}
	return snap
}

package game

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultReplayMaxStates bounds an in-memory replay when no limit is configured.
const DefaultReplayMaxStates = 5000

// Replay holds the snapshots recorded after every commit, for stepping back through a game.
// When full, the oldest snapshot is dropped.
type Replay struct {
	GameID       string
	States       []Snapshot
	CurrentIndex int
	maxStates    int
	dropped      int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay. maxStates <= 0 selects DefaultReplayMaxStates.
func NewReplay(gameID string, maxStates int) *Replay {
	if maxStates <= 0 {
		maxStates = DefaultReplayMaxStates
	}
	return &Replay{
		GameID:    gameID,
		States:    make([]Snapshot, 0, 64),
		maxStates: maxStates,
	}
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(snapshot Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) >= r.maxStates {
		r.States = r.States[1:]
		r.dropped++
		if r.CurrentIndex > 0 {
			r.CurrentIndex--
		}
	}
	r.States = append(r.States, snapshot)
}

// Start rewinds to the first state.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and advances it. ok is false at the end.
func (r *Replay) Next() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.States) {
		state := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return state, true
	}
	return Snapshot{}, false
}

// Previous moves the cursor back and returns that state.
func (r *Replay) Previous() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex], true
	}
	return Snapshot{}, false
}

// Skip moves the cursor by count, clamped to the recorded range.
func (r *Replay) Skip(count int) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) == 0 {
		return Snapshot{}, false
	}
	newIndex := r.CurrentIndex + count
	if newIndex >= len(r.States) {
		newIndex = len(r.States) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}
	r.CurrentIndex = newIndex
	return r.States[r.CurrentIndex], true
}

// Size returns the number of retained states.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// Dropped returns how many states were evicted to stay under the limit.
func (r *Replay) Dropped() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.dropped
}

// StateAt returns the state at index.
func (r *Replay) StateAt(index int) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index], true
	}
	return Snapshot{}, false
}

// Last returns the most recent state.
func (r *Replay) Last() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.States) == 0 {
		return Snapshot{}, false
	}
	return r.States[len(r.States)-1], true
}

// ReplayRecorder keeps the replays of finished and running games in memory.
type ReplayRecorder struct {
	logger    *zap.Logger
	mu        sync.RWMutex
	replays   map[string]*Replay
	maxStates int
	maxGames  int
	order     []string
}

// NewReplayRecorder creates a recorder retaining up to maxGames replays.
func NewReplayRecorder(logger *zap.Logger, maxStates, maxGames int) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxGames <= 0 {
		maxGames = 16
	}
	return &ReplayRecorder{
		logger:    logger,
		replays:   make(map[string]*Replay),
		maxStates: maxStates,
		maxGames:  maxGames,
	}
}

// StartRecording creates the replay for gameID and returns it.
func (rr *ReplayRecorder) StartRecording(gameID string) *Replay {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if existing, ok := rr.replays[gameID]; ok {
		return existing
	}
	if len(rr.order) >= rr.maxGames {
		evicted := rr.order[0]
		rr.order = rr.order[1:]
		delete(rr.replays, evicted)
		rr.logger.Debug("evicted replay", zap.String("game_id", evicted))
	}

	replay := NewReplay(gameID, rr.maxStates)
	rr.replays[gameID] = replay
	rr.order = append(rr.order, gameID)

	rr.logger.Info("started replay recording", zap.String("game_id", gameID))
	return replay
}

// GetReplay returns the replay for a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// ClearReplay removes a replay from memory.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	for i, id := range rr.order {
		if id == gameID {
			rr.order = append(rr.order[:i], rr.order[i+1:]...)
			break
		}
	}
	rr.logger.Debug("cleared replay from memory", zap.String("game_id", gameID))
}

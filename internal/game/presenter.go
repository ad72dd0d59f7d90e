package game

import "sync"

// Presenter shows engine output. Present must eventually lead to one
// NotifyMovementComplete call per movement in the batch, in any order.
type Presenter interface {
	Present(batch Batch)
	Render(snapshot Snapshot)
}

// MovementCompleter receives completion signals for presented movements.
type MovementCompleter interface {
	NotifyMovementComplete(batchID string, movementID int) bool
}

// InstantPresenter completes every movement as soon as it is presented.
// Completion is reported synchronously; the engine absorbs the re-entry.
type InstantPresenter struct {
	mu       sync.RWMutex
	target   MovementCompleter
	onRender func(Snapshot)
}

// NewInstantPresenter creates a presenter that must be bound before the game starts.
func NewInstantPresenter() *InstantPresenter {
	return &InstantPresenter{}
}

// Bind sets the receiver of completion signals.
func (p *InstantPresenter) Bind(target MovementCompleter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
}

// OnRender registers a callback invoked with every rendered snapshot.
func (p *InstantPresenter) OnRender(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRender = fn
}

func (p *InstantPresenter) Present(batch Batch) {
	p.mu.RLock()
	target := p.target
	p.mu.RUnlock()
	if target == nil {
		return
	}
	for _, m := range batch.Movements {
		target.NotifyMovementComplete(batch.ID, m.ID)
	}
}

func (p *InstantPresenter) Render(snapshot Snapshot) {
	p.mu.RLock()
	fn := p.onRender
	p.mu.RUnlock()
	if fn != nil {
		fn(snapshot)
	}
}

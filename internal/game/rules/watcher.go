package rules

import "sync"

// Watcher observes game events and accumulates state about them.
type Watcher interface {
	// Watch is called for every event published on the bus the watcher is attached to.
	Watch(event Event)
	// Reset clears accumulated state.
	Reset()
	// Key identifies the watcher inside a registry.
	Key() string
}

// WatcherRegistry keeps watchers for one game and feeds them events.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// Add registers a watcher, replacing any watcher with the same key.
func (wr *WatcherRegistry) Add(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	key := watcher.Key()
	if _, exists := wr.watchers[key]; !exists {
		wr.order = append(wr.order, key)
	}
	wr.watchers[key] = watcher
}

// Watch forwards an event to every watcher in registration order.
func (wr *WatcherRegistry) Watch(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, key := range wr.order {
		wr.watchers[key].Watch(event)
	}
}

// Attach subscribes the registry to all events on bus and returns the handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.Watch)
}

package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a game event.
type EventType string

const (
	EventGameStarted     EventType = "GAME_STARTED"
	EventPhaseChanged    EventType = "PHASE_CHANGED"
	EventCardsDealt      EventType = "CARDS_DEALT"
	EventCardDrawn       EventType = "CARD_DRAWN"
	EventDeckEmpty       EventType = "DECK_EMPTY"
	EventTie             EventType = "TIE"
	EventRedrawExhausted EventType = "REDRAW_EXHAUSTED"
	EventAttackOptions   EventType = "ATTACK_OPTIONS"
	EventSlotDefeated    EventType = "SLOT_DEFEATED"
	EventTurnEnded       EventType = "TURN_ENDED"
	EventPointLost       EventType = "POINT_LOST"
	EventCardsReclaimed  EventType = "CARDS_RECLAIMED"
	EventCardsDiscarded  EventType = "CARDS_DISCARDED"
	EventCardCeded       EventType = "CARD_CEDED"
	EventGameOver        EventType = "GAME_OVER"
)

// Event is a state change other subsystems may react to.
type Event struct {
	Type      EventType
	GameID    string
	Side      Side
	Phase     Phase
	SlotID    SlotID
	Rank      Rank
	Amount    int
	Turn      int
	Slots     []SlotID
	Ranks     []Rank
	Timestamp time.Time
}

// NewEvent creates an event with the common fields populated.
func NewEvent(eventType EventType, gameID string, side Side) Event {
	return Event{
		Type:      eventType,
		GameID:    gameID,
		Side:      side,
		Timestamp: time.Now(),
	}
}

// Listener reacts to events.
type Listener func(Event)

type typedListener struct {
	handle   int
	callback Listener
}

// EventBus is a synchronous publish/subscribe hub with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]typedListener
	nextHandle     int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]typedListener),
	}
}

// Subscribe registers a listener for all events and returns its handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for one event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback Listener) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], typedListener{
		handle:   handle,
		callback: callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by handle, typed or not.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to every matching listener synchronously.
// Listeners must not subscribe or unsubscribe from inside the callback.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.callback(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}

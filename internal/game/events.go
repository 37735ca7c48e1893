package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lox/boothjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeRoundStart   EventType = "round_start"
	EventTypeCardDealt    EventType = "card_dealt"
	EventTypeHoleRevealed EventType = "hole_revealed"
	EventTypeSplit        EventType = "split"
	EventTypeHandDone     EventType = "hand_done"
	EventTypeRoundEnd     EventType = "round_end"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happened during a round.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	fmt.Stringer
}

// RoundStartEvent is published once the bet is taken and before any card.
type RoundStartEvent struct {
	RoundID   string
	Mode      Mode
	Bet       int
	Money     int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }
func (e RoundStartEvent) String() string {
	if e.Mode == ModePractice {
		return "New practice round"
	}
	return fmt.Sprintf("New round, bet %d", e.Bet)
}

// CardDealtEvent is published for every card delivered.
type CardDealtEvent struct {
	RoundID   string
	Seat      Seat
	Hand      int
	Card      deck.Card
	Hidden    bool
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }
func (e CardDealtEvent) String() string {
	if e.Seat == SeatDealer {
		if e.Hidden {
			return "Dealer takes a hole card"
		}
		return fmt.Sprintf("Dealer draws %s", e.Card)
	}
	return fmt.Sprintf("Hand %d draws %s", e.Hand, e.Card)
}

// HoleRevealedEvent is published when the dealer turns the hole card.
type HoleRevealedEvent struct {
	RoundID   string
	Card      deck.Card
	Value     int
	timestamp time.Time
}

func (e HoleRevealedEvent) EventType() EventType { return EventTypeHoleRevealed }
func (e HoleRevealedEvent) Timestamp() time.Time { return e.timestamp }
func (e HoleRevealedEvent) String() string {
	return fmt.Sprintf("Dealer reveals %s (%d)", e.Card, e.Value)
}

// SplitEvent is published when a pair is split into two hands.
type SplitEvent struct {
	RoundID   string
	Bet       int
	timestamp time.Time
}

func (e SplitEvent) EventType() EventType { return EventTypeSplit }
func (e SplitEvent) Timestamp() time.Time { return e.timestamp }
func (e SplitEvent) String() string { return fmt.Sprintf("Split, second bet %d", e.Bet) }

// HandDoneEvent is published when a player hand busts or stands.
type HandDoneEvent struct {
	RoundID   string
	Hand      int
	Result    HandResult
	Value     int
	timestamp time.Time
}

func (e HandDoneEvent) EventType() EventType { return EventTypeHandDone }
func (e HandDoneEvent) Timestamp() time.Time { return e.timestamp }
func (e HandDoneEvent) String() string {
	return fmt.Sprintf("Hand %d %s on %d", e.Hand, e.Result, e.Value)
}

// RoundEndEvent carries the same summary the RoundOverSink receives.
type RoundEndEvent struct {
	Summary   RoundSummary
	timestamp time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }
func (e RoundEndEvent) String() string {
	return fmt.Sprintf("Round over: %s, money %d", e.Summary.Outcome, e.Summary.Money)
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(GameEvent)

func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber) (unsubscribe func())
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously on the publishing goroutine.
type SimpleEventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{subscribers: make(map[int]EventSubscriber)}
}

// Subscribe adds a subscriber and returns a function that removes it.
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	id := bus.nextID
	bus.nextID++
	bus.subscribers[id] = subscriber
	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		delete(bus.subscribers, id)
	}
}

// Publish sends an event to all subscribers in subscription order. The lock
// is not held while subscribers run, so they may unsubscribe themselves.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	ids := make([]int, 0, len(bus.subscribers))
	for id := range bus.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]EventSubscriber, len(ids))
	for i, id := range ids {
		subs[i] = bus.subscribers[id]
	}
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.OnEvent(event)
	}
}

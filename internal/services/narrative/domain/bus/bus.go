// Package bus is the process-wide publish/subscribe channel that carries
// mini-game completion signals and dialogue progress between independent parts
// of the game shell.
//
// Delivery is synchronous: subscribers registered when Publish is called are
// invoked once each, in registration order, before Publish returns. Nothing is
// retained; a subscriber that registers late never sees earlier messages and
// must read history from the game state instead.
package bus

import (
	"strings"
	"sync"
)

// Topic names a message stream.
type Topic string

const (
	// Wildcard subscribes to every topic.
	Wildcard Topic = "*"
	// TopicEventCompleted carries EventCompleted payloads from mini-games.
	TopicEventCompleted Topic = "interactive_event_completed"
	// TopicDialogueProgress carries DialogueProgress payloads from the sequencer.
	TopicDialogueProgress Topic = "dialogue_progress"
)

// Message is one published value.
type Message struct {
	Topic   Topic
	Payload any
}

// Handler receives published messages.
type Handler func(Message)

// Unsubscribe removes a subscription. Calling it more than once is safe.
type Unsubscribe func()

// EventCompleted reports that a mini-game reached an interactive milestone.
type EventCompleted struct {
	EventID string
	Data    map[string]any
}

// DialogueProgress reports the dialogue step now shown for a scene.
type DialogueProgress struct {
	DialogueIndex int
	QuestID       string
	DialogueKey   string
}

type subscription struct {
	id      uint64
	topic   Topic
	handler Handler
}

// Bus fans messages out to subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// New creates an isolated bus.
func New() *Bus {
	return &Bus{}
}

var defaultBus = New()

// Default returns the process-wide bus.
func Default() *Bus {
	return defaultBus
}

// Subscribe registers handler for topic (or Wildcard).
func (b *Bus) Subscribe(topic Topic, handler Handler) Unsubscribe {
	topic = Topic(strings.TrimSpace(string(topic)))
	if b == nil || handler == nil || topic == "" {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Publish delivers payload to the current subscribers of topic.
func (b *Bus) Publish(topic Topic, payload any) {
	if b == nil || topic == "" {
		return
	}

	b.mu.Lock()
	targets := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.topic == topic || sub.topic == Wildcard {
			targets = append(targets, sub.handler)
		}
	}
	b.mu.Unlock()

	msg := Message{Topic: topic, Payload: payload}
	for _, handler := range targets {
		handler(msg)
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	b := New()
	var calls []string
	b.Subscribe(TopicEventCompleted, func(Message) { calls = append(calls, "first") })
	b.Subscribe(Wildcard, func(Message) { calls = append(calls, "wildcard") })
	b.Subscribe(TopicEventCompleted, func(Message) { calls = append(calls, "third") })
	b.Subscribe(TopicDialogueProgress, func(Message) { calls = append(calls, "other topic") })

	b.Publish(TopicEventCompleted, EventCompleted{EventID: "a"})

	assert.Equal(t, []string{"first", "wildcard", "third"}, calls)
}

func TestPublishCarriesTopicAndPayload(t *testing.T) {
	b := New()
	var got Message
	b.Subscribe(TopicDialogueProgress, func(msg Message) { got = msg })

	b.Publish(TopicDialogueProgress, DialogueProgress{DialogueIndex: 2, QuestID: "ladder", DialogueKey: "ladder"})

	require.Equal(t, TopicDialogueProgress, got.Topic)
	payload, ok := got.Payload.(DialogueProgress)
	require.True(t, ok)
	assert.Equal(t, 2, payload.DialogueIndex)
	assert.Equal(t, "ladder", payload.QuestID)
}

func TestLateSubscriberMissesEarlierMessages(t *testing.T) {
	b := New()
	b.Publish(TopicEventCompleted, EventCompleted{EventID: "early"})

	count := 0
	b.Subscribe(TopicEventCompleted, func(Message) { count++ })

	assert.Zero(t, count)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := New()
	count := 0
	unsub := b.Subscribe(TopicEventCompleted, func(Message) { count++ })
	other := b.Subscribe(TopicEventCompleted, func(Message) {})

	unsub()
	unsub()
	b.Publish(TopicEventCompleted, nil)

	assert.Zero(t, count)
	assert.Len(t, b.subs, 1)
	other()
	assert.Empty(t, b.subs)
}

func TestHandlerUnsubscribingDuringPublishStillRunsSnapshot(t *testing.T) {
	b := New()
	var second Unsubscribe
	calls := 0
	b.Subscribe(TopicEventCompleted, func(Message) {
		calls++
		second()
	})
	second = b.Subscribe(TopicEventCompleted, func(Message) { calls++ })

	b.Publish(TopicEventCompleted, nil)
	assert.Equal(t, 2, calls)

	b.Publish(TopicEventCompleted, nil)
	assert.Equal(t, 3, calls)
}

func TestSubscribeIgnoresBlankTopicAndNilHandler(t *testing.T) {
	b := New()
	b.Subscribe("  ", func(Message) {})
	b.Subscribe(TopicEventCompleted, nil)
	assert.Empty(t, b.subs)
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

package state

import "github.com/louisbranch/theorem-trail/internal/services/narrative/domain/bus"

// RecordCompletedEvents subscribes the store to completed-event messages and
// appends every event id it has not seen yet. It is the only writer of
// CompletedEvents.
func RecordCompletedEvents(b *bus.Bus, store *Store) bus.Unsubscribe {
	return b.Subscribe(bus.TopicEventCompleted, func(msg bus.Message) {
		switch payload := msg.Payload.(type) {
		case bus.EventCompleted:
			store.Update(CompleteEvent(payload.EventID))
		case *bus.EventCompleted:
			if payload != nil {
				store.Update(CompleteEvent(payload.EventID))
			}
		}
	})
}

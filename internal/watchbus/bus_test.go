package watchbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Type: EventMemoryChange, Data: EventData{Action: ActionAdd, File: "x.md"}})

	evt := <-sub.Events()
	require.Equal(t, EventMemoryChange, evt.Type)
	require.Equal(t, ActionAdd, evt.Data.Action)
	require.False(t, evt.ResyncNeeded)
}

func TestOverflowDropsOldestAndFlagsResync(t *testing.T) {
	b := NewWithQueueSize(2)
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Data: EventData{File: "1"}})
	b.Publish(Event{Data: EventData{File: "2"}})
	b.Publish(Event{Data: EventData{File: "3"}}) // overflow: drops "1"
	b.Publish(Event{Data: EventData{File: "4"}}) // this one should carry resync

	first := <-sub.Events()
	require.Equal(t, "3", first.Data.File)

	second := <-sub.Events()
	require.Equal(t, "4", second.Data.File)
	require.True(t, second.ResyncNeeded)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())
	sub.Close()
	require.Equal(t, 0, b.SubscriberCount())
	_, ok := <-sub.Events()
	require.False(t, ok)
}

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro/micro-a2a/pkg/a2a"
)

func TestSubscribeAndPublishDeliversInOrder(t *testing.T) {
	r := NewSubscriberRegistry()
	sub := r.Subscribe("t1")

	r.Publish("t1", a2a.TaskStatusUpdateEvent{ID: "t1", Status: a2a.TaskStatus{State: a2a.TaskStateWorking}})
	r.Publish("t1", a2a.TaskArtifactUpdateEvent{ID: "t1", Artifact: a2a.Artifact{Name: "partial"}})

	first := mustReceive(t, sub)
	_, ok := first.(a2a.TaskStatusUpdateEvent)
	assert.True(t, ok)

	second := mustReceive(t, sub)
	_, ok = second.(a2a.TaskArtifactUpdateEvent)
	assert.True(t, ok)
}

func TestPublishFinalClosesAndDetachesSubscriber(t *testing.T) {
	r := NewSubscriberRegistry()
	sub := r.Subscribe("t1")

	r.Publish("t1", a2a.TaskStatusUpdateEvent{ID: "t1", Status: a2a.TaskStatus{State: a2a.TaskStateCompleted}, Final: true})

	mustReceive(t, sub)

	_, open := <-sub.Events()
	assert.False(t, open, "channel must be closed after a Final event")
	assert.False(t, r.HasSubscribers("t1"))
}

func TestPublishJSONRPCErrorClosesAndDetachesSubscriber(t *testing.T) {
	r := NewSubscriberRegistry()
	sub := r.Subscribe("t1")

	r.Publish("t1", a2a.ErrInternal(nil))

	event := mustReceive(t, sub)
	_, ok := event.(*a2a.JSONRPCError)
	assert.True(t, ok, "a *JSONRPCError published to a task must reach the subscriber as an Event")

	_, open := <-sub.Events()
	assert.False(t, open, "a *JSONRPCError terminates the stream just like a Final status update")
	assert.False(t, r.HasSubscribers("t1"))
}

func TestDetachClosesChannelAndRemovesSubscriber(t *testing.T) {
	r := NewSubscriberRegistry()
	sub := r.Subscribe("t1")
	require.True(t, r.HasSubscribers("t1"))

	r.Detach(sub)

	_, open := <-sub.Events()
	assert.False(t, open)
	assert.False(t, r.HasSubscribers("t1"))
}

func TestPublishAfterDetachDoesNotPanic(t *testing.T) {
	r := NewSubscriberRegistry()
	sub := r.Subscribe("t1")
	r.Detach(sub)

	assert.NotPanics(t, func() {
		r.Publish("t1", a2a.TaskStatusUpdateEvent{ID: "t1", Final: true})
	})
}

func TestMultipleSubscribersEachReceiveEvent(t *testing.T) {
	r := NewSubscriberRegistry()
	subA := r.Subscribe("t1")
	subB := r.Subscribe("t1")

	r.Publish("t1", a2a.TaskStatusUpdateEvent{ID: "t1", Status: a2a.TaskStatus{State: a2a.TaskStateWorking}})

	mustReceive(t, subA)
	mustReceive(t, subB)
}

func mustReceive(t *testing.T, sub *Subscriber) a2a.Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		require.True(t, ok)
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

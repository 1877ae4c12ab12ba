package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: TypeAlertRefresh, Body: "user-1"}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, TypeAlertRefresh, msg.Type)
		assert.Equal(t, "user-1", msg.Body)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestInMemory_PublishHonorsContext(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, Message{Type: TypeConflictRefresh, Body: "user-1"}))

	// Queue full: a cancelled context unblocks the publisher.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := q.Publish(cancelled, Message{Type: TypeConflictRefresh, Body: "user-2"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: TypeConflictRefresh, Body: "8c2f1c2e"}
	assert.Equal(t, msg, deserialize(serialize(msg)))

	// Untyped payloads come back as bare bodies.
	assert.Equal(t, Message{Body: "junk"}, deserialize("junk"))
}

package messagequeue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_PublishConsume(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 2)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(ctx, "events", func(_ context.Context, body []byte) error {
			received <- string(body)
			return nil
		})
	}()

	require.NoError(t, q.Publish(ctx, "events", []byte("one")))
	require.NoError(t, q.Publish(ctx, "events", []byte("two")))

	for _, want := range []string{"one", "two"} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish(context.Background(), "events", []byte("x")), ErrQueueClosed)
}

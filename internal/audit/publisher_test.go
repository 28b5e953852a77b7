package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recircle/pkg/requestcontext"
)

func TestChannelPublisherFillsEventFields(t *testing.T) {
	publisher := NewChannelPublisher(4, slog.New(slog.DiscardHandler))

	ctx := requestcontext.WithDevice(context.Background(), "Chrome on Linux")
	publisher.Emit(ctx, Event{Kind: KindPointsCredit, Entity: "profile"})

	select {
	case event := <-publisher.Events():
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.False(t, event.At.IsZero())
		assert.Equal(t, "Chrome on Linux", event.Device)
	default:
		t.Fatal("event was not enqueued")
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	publisher := NewChannelPublisher(1, slog.New(slog.DiscardHandler))

	ctx := context.Background()
	publisher.Emit(ctx, Event{Kind: KindPointsCredit})
	// The buffer is full; this must not block the caller.
	done := make(chan struct{})
	go func() {
		publisher.Emit(ctx, Event{Kind: KindPointsDebit})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
	assert.Len(t, publisher.Events(), 1)
}

func TestWorkerDrainsToSinks(t *testing.T) {
	publisher := NewChannelPublisher(4, slog.New(slog.DiscardHandler))
	store := NewMemoryStore()
	worker := NewWorker(publisher.Events(), slog.New(slog.DiscardHandler), store)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(finished)
	}()

	publisher.Emit(ctx, Event{Kind: KindCollectionTransition, Entity: "collection"})
	publisher.Emit(ctx, Event{Kind: KindRewardRedeemed, Entity: "reward"})

	require.Eventually(t, func() bool {
		return len(store.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-finished

	events := store.Events()
	assert.Equal(t, KindCollectionTransition, events[0].Kind)
	assert.Equal(t, KindRewardRedeemed, events[1].Kind)
}

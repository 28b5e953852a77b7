//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"recircle/internal/audit"
	"recircle/pkg/domain"
	"recircle/pkg/testutil/containers"
)

func TestKafkaSinkRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	redpanda := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	const topic = "recircle.audit.test"

	sink, err := audit.NewKafkaSink(ctx, []string{redpanda.Broker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	user := domain.NewUserID()
	events := []audit.Event{
		{
			ID:       uuid.New(),
			Kind:     audit.KindCollectionRequested,
			UserID:   user.String(),
			Entity:   "collection",
			EntityID: uuid.NewString(),
			Detail:   "pickup requested",
			At:       time.Now().UTC(),
		},
		{
			ID:       uuid.New(),
			Kind:     audit.KindPointsCredit,
			UserID:   user.String(),
			Entity:   "profile",
			EntityID: user.String(),
			Detail:   "+10: plastic processed",
			At:       time.Now().UTC(),
		},
	}
	for _, event := range events {
		require.NoError(t, sink.Append(ctx, event))
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	deadline, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var got []audit.Event
	for len(got) < len(events) {
		fetches := consumer.PollFetches(deadline)
		require.NoError(t, fetches.Err())
		fetches.EachRecord(func(record *kgo.Record) {
			require.Equal(t, user.String(), string(record.Key),
				"events are keyed by user for per-user ordering")
			var event audit.Event
			require.NoError(t, json.Unmarshal(record.Value, &event))
			got = append(got, event)
		})
	}

	require.Len(t, got, len(events))
	require.Equal(t, events[0].ID, got[0].ID)
	require.Equal(t, audit.KindPointsCredit, got[1].Kind)
}

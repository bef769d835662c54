package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeMessages(t *testing.T) {
	now := time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC)
	end := now.Add(-24 * time.Hour)
	events := []*entity.Event{
		{ID: "e1", Title: "Meetup", OrganizerID: "org", EndTime: &end},
		{ID: "e2", Title: "Workshop", OrganizerID: "org"},
	}

	messages, err := purgeMessages(now, events, now)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, []byte("e1"), messages[0].Key)
	assert.Equal(t, now, messages[0].Time)

	var record PurgeRecord
	require.NoError(t, json.Unmarshal(messages[0].Value, &record))
	assert.Equal(t, "e1", record.EventID)
	assert.Equal(t, "Meetup", record.Title)
	require.NotNil(t, record.EndTime)
	assert.True(t, end.Equal(*record.EndTime))
	assert.True(t, now.Equal(record.Cutoff))
}

func TestPurgeMessagesEmpty(t *testing.T) {
	messages, err := purgeMessages(time.Now(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestNewProducerWithoutBrokersFallsBack(t *testing.T) {
	producer := NewProducer(nil, "audit")
	require.IsType(t, &mockProducer{}, producer)

	err := producer.RecordPurge(context.Background(), time.Now(), []*entity.Event{{ID: "e1"}})
	assert.NoError(t, err)
	assert.NoError(t, producer.Close())
}

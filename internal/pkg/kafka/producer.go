package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// PurgeRecord is the audit message published for every purged event.
type PurgeRecord struct {
	EventID     string     `json:"event_id"`
	Title       string     `json:"title"`
	OrganizerID string     `json:"organizer_id"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Cutoff      time.Time  `json:"cutoff"`
	PurgedAt    time.Time  `json:"purged_at"`
}

type Producer interface {
	RecordPurge(ctx context.Context, cutoff time.Time, events []*entity.Event) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer returns a Kafka-backed producer, or a logging one when no
// broker is reachable.
func NewProducer(brokers []string, topic string) Producer {
	if len(brokers) == 0 {
		logrus.Warn("Kafka brokers not configured, purge audit goes to the log")
		return &mockProducer{topic: topic}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v. Using mock producer instead", err)
		return &mockProducer{topic: topic}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Debugf("Could not create topic (might already exist): %v", err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.WithField("brokers", brokers).Info("Connected to Kafka")
	return &kafkaProducer{writer: writer, topic: topic}
}

func (p *kafkaProducer) RecordPurge(ctx context.Context, cutoff time.Time, events []*entity.Event) error {
	messages, err := purgeMessages(cutoff, events, time.Now())
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"topic":   p.topic,
		"records": len(messages),
	}).Debug("Purge audit published")
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

func purgeMessages(cutoff time.Time, events []*entity.Event, now time.Time) ([]kafka.Message, error) {
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(PurgeRecord{
			EventID:     event.ID,
			Title:       event.Title,
			OrganizerID: event.OrganizerID,
			EndTime:     event.EndTime,
			Cutoff:      cutoff,
			PurgedAt:    now,
		})
		if err != nil {
			return nil, err
		}

		messages = append(messages, kafka.Message{
			Key:   []byte(event.ID),
			Value: value,
			Time:  now,
		})
	}
	return messages, nil
}

// mockProducer logs audit records when Kafka is not available.
type mockProducer struct {
	topic string
}

func (m *mockProducer) RecordPurge(_ context.Context, cutoff time.Time, events []*entity.Event) error {
	for _, event := range events {
		logrus.WithFields(logrus.Fields{
			"topic":    m.topic,
			"event_id": event.ID,
			"cutoff":   cutoff,
		}).Info("MOCK: purge audit record")
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}

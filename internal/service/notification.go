package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/sirupsen/logrus"
)

type NotificationKind string

const (
	NotifyRSVPConfirmation      NotificationKind = "RSVP_CONFIRMATION"
	NotifyVolunteerConfirmation NotificationKind = "VOLUNTEER_CONFIRMATION"
	NotifyVolunteerApproved     NotificationKind = "VOLUNTEER_APPROVED"
)

// Notification is a request to tell an actor something about an event.
// Rendering and delivery belong to the consumer.
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	ActorID    string           `json:"actor_id"`
	EventID    string           `json:"event_id"`
	EventTitle string           `json:"event_title"`
	StartTime  time.Time        `json:"start_time"`
	Location   string           `json:"location"`
	CreatedAt  time.Time        `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
	Close() error
}

const notifyTimeout = 5 * time.Second

// dispatcher sends notifications on their own goroutine; failures are logged
// and never reach the caller.
type dispatcher struct {
	notifier Notifier
	timeout  time.Duration
}

func newDispatcher(notifier Notifier) *dispatcher {
	return &dispatcher{notifier: notifier, timeout: notifyTimeout}
}

func (d *dispatcher) send(kind NotificationKind, actorID string, event *entity.Event) {
	if d == nil || d.notifier == nil {
		return
	}

	n := &Notification{
		Kind:       kind,
		ActorID:    actorID,
		EventID:    event.ID,
		EventTitle: event.Title,
		StartTime:  event.StartTime,
		Location:   event.Location,
		CreatedAt:  time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, n); err != nil {
			logrus.WithFields(logrus.Fields{
				"kind":     n.Kind,
				"actor_id": n.ActorID,
				"event_id": n.EventID,
			}).Warnf("Failed to send notification: %v", err)
		}
	}()
}

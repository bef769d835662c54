package repository

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	SetActive(ctx context.Context, id string, active bool) error

	// DeleteCascade removes the event together with its RSVPs and volunteers.
	DeleteCascade(ctx context.Context, id string) error
	// PurgeCompletedBefore removes every event whose end time is strictly
	// before cutoff, cascading, and returns what was removed.
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Event, error)

	List(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error)
	Count(ctx context.Context, filter entity.EventFilter) (int64, error)
	// CountRegistrations aggregates RSVP and volunteer counts for every id in
	// one round trip. Ids without registrations map to zero counts.
	CountRegistrations(ctx context.Context, eventIDs []string) (map[string]entity.EventCounts, error)
}

type RSVPRepository interface {
	// Upsert inserts or overwrites the (event, actor) RSVP in one statement.
	Upsert(ctx context.Context, rsvp *entity.RSVP) (*entity.RSVP, error)
	Get(ctx context.Context, eventID, actorID string) (*entity.RSVP, error)
	Delete(ctx context.Context, eventID, actorID string) error

	ListByEvent(ctx context.Context, eventID string, status *entity.RSVPStatus) ([]*entity.RSVPWithUser, error)
	ListByActor(ctx context.Context, actorID string) ([]*entity.RSVP, error)
	CountByStatus(ctx context.Context, eventID string, status entity.RSVPStatus) (int, error)
}

type VolunteerRepository interface {
	// Create is insert-only; an existing (event, actor) row yields ErrVolunteerExists.
	Create(ctx context.Context, volunteer *entity.Volunteer) error
	Get(ctx context.Context, eventID, actorID string) (*entity.Volunteer, error)
	// SetStatus updates the status and reports the status it replaced.
	SetStatus(ctx context.Context, eventID, actorID string, status entity.VolunteerStatus) (entity.VolunteerStatus, *entity.Volunteer, error)
	UpdateRole(ctx context.Context, eventID, actorID, role string) (*entity.Volunteer, error)
	Delete(ctx context.Context, eventID, actorID string) error

	ListByEvent(ctx context.Context, eventID string, status *entity.VolunteerStatus) ([]*entity.VolunteerWithUser, error)
	ListByActor(ctx context.Context, actorID string) ([]*entity.Volunteer, error)
	CountByStatus(ctx context.Context, eventID string, status entity.VolunteerStatus) (int, error)
}

type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, role *entity.Role) ([]*entity.User, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	SetRole(ctx context.Context, id string, role entity.Role) error
	CountByRole(ctx context.Context) (map[entity.Role]int64, error)

	// DeleteWithRegistrations refuses organizers of record, otherwise removes
	// the user and their RSVPs and volunteer rows.
	DeleteWithRegistrations(ctx context.Context, id string) error
}

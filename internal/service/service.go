package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"
)

// EventService is the event lifecycle engine.
type EventService interface {
	CreateEvent(ctx context.Context, actor entity.Actor, req *CreateEventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, actor entity.Actor, id string, req *UpdateEventRequest) (*entity.Event, error)
	ActivateEvent(ctx context.Context, id string) error
	DeactivateEvent(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, actor entity.Actor, id string) error
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Event, error)

	GetEvent(ctx context.Context, id string) (*entity.EventWithStats, error)
	GetEventForManagement(ctx context.Context, actor entity.Actor, id string) (*entity.Event, error)

	ListActive(ctx context.Context) ([]*entity.EventWithStats, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*entity.EventWithStats, error)
	ListByCategory(ctx context.Context, category entity.Category) ([]*entity.EventWithStats, error)
	SearchByLocation(ctx context.Context, location string) ([]*entity.EventWithStats, error)
	Search(ctx context.Context, keyword string) ([]*entity.EventWithStats, error)
	ListPendingApproval(ctx context.Context) ([]*entity.EventWithStats, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*entity.EventWithStats, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithStats, error)
	Filter(ctx context.Context, filter entity.EventFilter) ([]*entity.EventWithStats, error)
}

// RegistrationService is the registration coordinator for RSVPs and volunteers.
type RegistrationService interface {
	SubmitRSVP(ctx context.Context, actor entity.Actor, eventID string, req *RSVPRequest) (*entity.RSVP, error)
	WithdrawRSVP(ctx context.Context, actor entity.Actor, eventID string) error

	RegisterVolunteer(ctx context.Context, actor entity.Actor, eventID string, req *VolunteerRequest) (*entity.Volunteer, error)
	DecideVolunteer(ctx context.Context, decider entity.Actor, eventID, volunteerActorID string, status entity.VolunteerStatus) (*entity.Volunteer, error)
	UpdateVolunteerRole(ctx context.Context, actor entity.Actor, eventID, role string) (*entity.Volunteer, error)
	WithdrawVolunteer(ctx context.Context, actor entity.Actor, eventID string) error

	GoingCount(ctx context.Context, eventID string) (int, error)
	InterestedCount(ctx context.Context, eventID string) (int, error)
	ApprovedVolunteerCount(ctx context.Context, eventID string) (int, error)
	PendingVolunteerCount(ctx context.Context, eventID string) (int, error)

	EventRSVPs(ctx context.Context, eventID string, status *entity.RSVPStatus) ([]*entity.RSVPWithUser, error)
	EventVolunteers(ctx context.Context, eventID string, status *entity.VolunteerStatus) ([]*entity.VolunteerWithUser, error)
	ActorRSVPs(ctx context.Context, actor entity.Actor) ([]*entity.RSVP, error)
	ActorVolunteering(ctx context.Context, actor entity.Actor) ([]*entity.Volunteer, error)
}

// ModerationService gates every administrative operation behind the ADMIN role.
type ModerationService interface {
	EnableUser(ctx context.Context, admin entity.Actor, userID string) error
	DisableUser(ctx context.Context, admin entity.Actor, userID string) error
	ChangeUserRole(ctx context.Context, admin entity.Actor, userID string, role entity.Role) error
	DeleteUser(ctx context.Context, admin entity.Actor, userID string) error
	ListUsers(ctx context.Context, admin entity.Actor, role *entity.Role) ([]*entity.User, error)

	ActivateEvent(ctx context.Context, admin entity.Actor, eventID string) error
	DeactivateEvent(ctx context.Context, admin entity.Actor, eventID string) error
	DeleteEvent(ctx context.Context, admin entity.Actor, eventID string) error
	ListEvents(ctx context.Context, admin entity.Actor, filter AdminEventFilter) ([]*entity.Event, error)
	PurgeCompleted(ctx context.Context, admin entity.Actor, cutoff time.Time) ([]*entity.Event, error)
	Stats(ctx context.Context, admin entity.Actor) (*entity.ModerationStats, error)
}

// ProfileService keeps the user directory in sync with the identity provider.
type ProfileService interface {
	SaveProfile(ctx context.Context, actor entity.Actor, req *ProfileRequest) (*entity.User, error)
	GetProfile(ctx context.Context, actor entity.Actor) (*entity.User, error)
}

// PurgeAuditor records each event removed by a purge run.
type PurgeAuditor interface {
	RecordPurge(ctx context.Context, cutoff time.Time, events []*entity.Event) error
	Close() error
}

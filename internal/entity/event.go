package entity

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryWorkshop      Category = "WORKSHOP"
	CategoryHackathon     Category = "HACKATHON"
	CategoryDonationDrive Category = "DONATION_DRIVE"
	CategoryMeetup        Category = "MEETUP"
	CategoryConference    Category = "CONFERENCE"
	CategorySeminar       Category = "SEMINAR"
	CategoryOther         Category = "OTHER"
)

var Categories = []Category{
	CategoryWorkshop,
	CategoryHackathon,
	CategoryDonationDrive,
	CategoryMeetup,
	CategoryConference,
	CategorySeminar,
	CategoryOther,
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

type ParticipationMode string

const (
	ParticipationIndividual ParticipationMode = "INDIVIDUAL"
	ParticipationGroup      ParticipationMode = "GROUP"
)

func ParseParticipationMode(s string) (ParticipationMode, bool) {
	switch m := ParticipationMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ParticipationIndividual, ParticipationGroup:
		return m, true
	}
	return "", false
}

type Event struct {
	ID                   string            `json:"id" db:"id"`
	Title                string            `json:"title" db:"title"`
	Description          string            `json:"description" db:"description"`
	Category             Category          `json:"category" db:"category"`
	Location             string            `json:"location" db:"location"`
	StartTime            time.Time         `json:"start_time" db:"start_time"`
	EndTime              *time.Time        `json:"end_time,omitempty" db:"end_time"`
	RegistrationDeadline *time.Time        `json:"registration_deadline,omitempty" db:"registration_deadline"`
	OrganizerID          string            `json:"organizer_id" db:"organizer_id"`
	MaxParticipants      *int              `json:"max_participants,omitempty" db:"max_participants"`
	ParticipationMode    ParticipationMode `json:"participation_mode" db:"participation_mode"`
	GroupSize            *int              `json:"group_size,omitempty" db:"group_size"`
	RequiresApproval     bool              `json:"requires_approval" db:"requires_approval"`
	Active               bool              `json:"active" db:"active"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at" db:"updated_at"`
}

// IsRegistrationClosed reports whether the registration deadline has been
// reached at t. Events without a deadline never close.
func (e *Event) IsRegistrationClosed(t time.Time) bool {
	if e.RegistrationDeadline == nil {
		return false
	}
	return !t.Before(*e.RegistrationDeadline)
}

// IsFull reports whether going already reaches the participant cap.
func (e *Event) IsFull(going int) bool {
	return e.MaxParticipants != nil && going >= *e.MaxParticipants
}

func (e *Event) IsUpcoming(now time.Time) bool {
	return e.StartTime.After(now)
}

// CompletedBefore reports whether the event has an end time strictly before cutoff.
func (e *Event) CompletedBefore(cutoff time.Time) bool {
	return e.EndTime != nil && e.EndTime.Before(cutoff)
}

// EventWithStats is an event together with its derived registration counts.
type EventWithStats struct {
	Event
	CurrentParticipants int  `json:"current_participants"`
	Interested          int  `json:"interested"`
	ApprovedVolunteers  int  `json:"approved_volunteers"`
	PendingVolunteers   int  `json:"pending_volunteers"`
	IsFull              bool `json:"is_full"`
	RegistrationClosed  bool `json:"registration_closed"`
}

// EventCounts holds the aggregate registration counts of one event.
type EventCounts struct {
	Going              int `json:"going"`
	Interested         int `json:"interested"`
	ApprovedVolunteers int `json:"approved_volunteers"`
	PendingVolunteers  int `json:"pending_volunteers"`
}

func NewEventWithStats(event *Event, counts EventCounts, now time.Time) *EventWithStats {
	return &EventWithStats{
		Event:               *event,
		CurrentParticipants: counts.Going,
		Interested:          counts.Interested,
		ApprovedVolunteers:  counts.ApprovedVolunteers,
		PendingVolunteers:   counts.PendingVolunteers,
		IsFull:              event.IsFull(counts.Going),
		RegistrationClosed:  event.IsRegistrationClosed(now),
	}
}

// EventFilter narrows event listings. Zero values are ignored.
type EventFilter struct {
	Category         Category
	Keyword          string // title, description or location
	Location         string
	OrganizerID      string
	Active           *bool
	RequiresApproval *bool
	StartsAfter      *time.Time
	From             *time.Time // start_time >= From
	To               *time.Time // start_time <= To
	OpenAt           *time.Time // end_time absent or not before OpenAt
	SortDesc         bool
	Limit            int
	Offset           int
}

// Matches evaluates the filter in memory, mirroring the SQL the store builds.
func (f EventFilter) Matches(e *Event) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.OrganizerID != "" && e.OrganizerID != f.OrganizerID {
		return false
	}
	if f.Active != nil && e.Active != *f.Active {
		return false
	}
	if f.RequiresApproval != nil && e.RequiresApproval != *f.RequiresApproval {
		return false
	}
	if f.StartsAfter != nil && !e.StartTime.After(*f.StartsAfter) {
		return false
	}
	if f.From != nil && e.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && e.StartTime.After(*f.To) {
		return false
	}
	if f.OpenAt != nil && e.EndTime != nil && e.EndTime.Before(*f.OpenAt) {
		return false
	}
	if f.Location != "" && !containsFold(e.Location, f.Location) {
		return false
	}
	if f.Keyword != "" && !containsFold(e.Title, f.Keyword) &&
		!containsFold(e.Description, f.Keyword) && !containsFold(e.Location, f.Keyword) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func BoolPtr(b bool) *bool { return &b }

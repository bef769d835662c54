package entity

import (
	"strings"
	"time"
)

type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "GOING"
	RSVPInterested RSVPStatus = "INTERESTED"
	RSVPNotGoing   RSVPStatus = "NOT_GOING"
)

func ParseRSVPStatus(s string) (RSVPStatus, bool) {
	switch st := RSVPStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case RSVPGoing, RSVPInterested, RSVPNotGoing:
		return st, true
	}
	return "", false
}

type RSVP struct {
	ID          string     `json:"id" db:"id"`
	EventID     string     `json:"event_id" db:"event_id"`
	ActorID     string     `json:"actor_id" db:"actor_id"`
	Status      RSVPStatus `json:"status" db:"status"`
	RespondedAt time.Time  `json:"responded_at" db:"responded_at"`
	Notes       string     `json:"notes,omitempty" db:"notes"`
	TeamName    *string    `json:"team_name,omitempty" db:"team_name"`
	TeamSize    *int       `json:"team_size,omitempty" db:"team_size"`
}

// Team is the optional team information of a GROUP RSVP.
type Team struct {
	Name *string
	Size *int
}

// ValidateFor checks the team against a GROUP event for a GOING response.
func (t Team) ValidateFor(event *Event) error {
	if t.Name == nil || strings.TrimSpace(*t.Name) == "" {
		return Validationf("team name is required for group events")
	}
	if t.Size == nil || *t.Size < 1 {
		return Validationf("valid team size is required")
	}
	if event.GroupSize != nil && *t.Size > *event.GroupSize {
		return Validationf("team size cannot exceed %d members", *event.GroupSize)
	}
	return nil
}

type VolunteerStatus string

const (
	VolunteerPending  VolunteerStatus = "PENDING"
	VolunteerApproved VolunteerStatus = "APPROVED"
	VolunteerRejected VolunteerStatus = "REJECTED"
)

func ParseVolunteerStatus(s string) (VolunteerStatus, bool) {
	switch st := VolunteerStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case VolunteerPending, VolunteerApproved, VolunteerRejected:
		return st, true
	}
	return "", false
}

type Volunteer struct {
	ID              string          `json:"id" db:"id"`
	EventID         string          `json:"event_id" db:"event_id"`
	ActorID         string          `json:"actor_id" db:"actor_id"`
	RoleDescription string          `json:"role_description" db:"role_description"`
	Status          VolunteerStatus `json:"status" db:"status"`
	RegisteredAt    time.Time       `json:"registered_at" db:"registered_at"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
}

// RSVPWithUser and VolunteerWithUser carry the directory data needed by exports.
type RSVPWithUser struct {
	RSVP
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type VolunteerWithUser struct {
	Volunteer
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

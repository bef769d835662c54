package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleParticipant Role = "PARTICIPANT"
	RoleOrganizer   Role = "ORGANIZER"
	RoleAdmin       Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleParticipant, RoleOrganizer, RoleAdmin:
		return r, true
	}
	return "", false
}

// Actor is the authenticated caller as resolved by the identity provider.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanManageEvent is the single ownership predicate used by every mutating
// path: the organizer of record or any admin.
func CanManageEvent(actor Actor, event *Event) bool {
	if event == nil || actor.ID == "" {
		return false
	}
	return actor.IsAdmin() || actor.ID == event.OrganizerID
}

type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      Role      `json:"role" db:"role"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

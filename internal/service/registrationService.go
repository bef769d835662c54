package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/ds124wfegd/eventsphere/internal/database/postgres"
	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RSVPRequest struct {
	Status   string  `json:"status" binding:"required,rsvp_status"`
	Notes    string  `json:"notes" binding:"max=1000"`
	TeamName *string `json:"team_name,omitempty" binding:"omitempty,max=255"`
	TeamSize *int    `json:"team_size,omitempty"`
}

type VolunteerRequest struct {
	RoleDescription string `json:"role_description" binding:"max=1000"`
	Notes           string `json:"notes" binding:"max=1000"`
}

type registrationService struct {
	eventRepo     repository.EventRepository
	rsvpRepo      repository.RSVPRepository
	volunteerRepo repository.VolunteerRepository
	notifications *dispatcher
	now           func() time.Time
}

func NewRegistrationService(
	eventRepo repository.EventRepository,
	rsvpRepo repository.RSVPRepository,
	volunteerRepo repository.VolunteerRepository,
	notifier Notifier,
) RegistrationService {
	return &registrationService{
		eventRepo:     eventRepo,
		rsvpRepo:      rsvpRepo,
		volunteerRepo: volunteerRepo,
		notifications: newDispatcher(notifier),
		now:           time.Now,
	}
}

// SubmitRSVP creates or overwrites the actor's RSVP. Capacity and the
// registration deadline are reported on reads and not enforced here.
func (s *registrationService) SubmitRSVP(ctx context.Context, actor entity.Actor, eventID string, req *RSVPRequest) (*entity.RSVP, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}

	status, ok := entity.ParseRSVPStatus(req.Status)
	if !ok {
		return nil, entity.Validationf("unknown rsvp status %q", req.Status)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rsvp := &entity.RSVP{
		ID:          uuid.NewString(),
		EventID:     event.ID,
		ActorID:     actor.ID,
		Status:      status,
		RespondedAt: s.now(),
		Notes:       req.Notes,
	}

	if event.ParticipationMode == entity.ParticipationGroup {
		team := entity.Team{Name: req.TeamName, Size: req.TeamSize}
		if status == entity.RSVPGoing {
			if err := team.ValidateFor(event); err != nil {
				return nil, err
			}
		}
		rsvp.TeamName = team.Name
		rsvp.TeamSize = team.Size
	}

	saved, err := s.rsvpRepo.Upsert(ctx, rsvp)
	if err != nil {
		return nil, fmt.Errorf("failed to save rsvp: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id": event.ID,
		"actor_id": actor.ID,
		"status":   saved.Status,
	}).Info("RSVP submitted")

	if saved.Status == entity.RSVPGoing {
		s.notifications.send(NotifyRSVPConfirmation, actor.ID, event)
	}
	return saved, nil
}

func (s *registrationService) WithdrawRSVP(ctx context.Context, actor entity.Actor, eventID string) error {
	if actor.ID == "" {
		return entity.ErrUnauthenticated
	}
	return s.rsvpRepo.Delete(ctx, eventID, actor.ID)
}

func (s *registrationService) RegisterVolunteer(ctx context.Context, actor entity.Actor, eventID string, req *VolunteerRequest) (*entity.Volunteer, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	volunteer := &entity.Volunteer{
		ID:              uuid.NewString(),
		EventID:         event.ID,
		ActorID:         actor.ID,
		RoleDescription: req.RoleDescription,
		Status:          entity.VolunteerPending,
		RegisteredAt:    s.now(),
		Notes:           req.Notes,
	}

	if err := s.volunteerRepo.Create(ctx, volunteer); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event_id": event.ID,
		"actor_id": actor.ID,
	}).Info("Volunteer registered")

	s.notifications.send(NotifyVolunteerConfirmation, actor.ID, event)
	return volunteer, nil
}

func (s *registrationService) DecideVolunteer(ctx context.Context, decider entity.Actor, eventID, volunteerActorID string, status entity.VolunteerStatus) (*entity.Volunteer, error) {
	if decider.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	if _, ok := entity.ParseVolunteerStatus(string(status)); !ok {
		return nil, entity.Validationf("unknown volunteer status %q", status)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !entity.CanManageEvent(decider, event) {
		return nil, entity.ErrCannotManage
	}

	previous, updated, err := s.volunteerRepo.SetStatus(ctx, eventID, volunteerActorID, status)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"actor_id": volunteerActorID,
		"decider":  decider.ID,
		"from":     previous,
		"to":       updated.Status,
	}).Info("Volunteer status changed")

	if previous != entity.VolunteerApproved && updated.Status == entity.VolunteerApproved {
		s.notifications.send(NotifyVolunteerApproved, volunteerActorID, event)
	}
	return updated, nil
}

func (s *registrationService) UpdateVolunteerRole(ctx context.Context, actor entity.Actor, eventID, role string) (*entity.Volunteer, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	return s.volunteerRepo.UpdateRole(ctx, eventID, actor.ID, role)
}

func (s *registrationService) WithdrawVolunteer(ctx context.Context, actor entity.Actor, eventID string) error {
	if actor.ID == "" {
		return entity.ErrUnauthenticated
	}
	return s.volunteerRepo.Delete(ctx, eventID, actor.ID)
}

func (s *registrationService) GoingCount(ctx context.Context, eventID string) (int, error) {
	return s.rsvpRepo.CountByStatus(ctx, eventID, entity.RSVPGoing)
}

func (s *registrationService) InterestedCount(ctx context.Context, eventID string) (int, error) {
	return s.rsvpRepo.CountByStatus(ctx, eventID, entity.RSVPInterested)
}

func (s *registrationService) ApprovedVolunteerCount(ctx context.Context, eventID string) (int, error) {
	return s.volunteerRepo.CountByStatus(ctx, eventID, entity.VolunteerApproved)
}

func (s *registrationService) PendingVolunteerCount(ctx context.Context, eventID string) (int, error) {
	return s.volunteerRepo.CountByStatus(ctx, eventID, entity.VolunteerPending)
}

func (s *registrationService) EventRSVPs(ctx context.Context, eventID string, status *entity.RSVPStatus) ([]*entity.RSVPWithUser, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.rsvpRepo.ListByEvent(ctx, eventID, status)
}

func (s *registrationService) EventVolunteers(ctx context.Context, eventID string, status *entity.VolunteerStatus) ([]*entity.VolunteerWithUser, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.volunteerRepo.ListByEvent(ctx, eventID, status)
}

func (s *registrationService) ActorRSVPs(ctx context.Context, actor entity.Actor) ([]*entity.RSVP, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	return s.rsvpRepo.ListByActor(ctx, actor.ID)
}

func (s *registrationService) ActorVolunteering(ctx context.Context, actor entity.Actor) ([]*entity.Volunteer, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	return s.volunteerRepo.ListByActor(ctx, actor.ID)
}

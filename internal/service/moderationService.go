package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/ds124wfegd/eventsphere/internal/database/postgres"
	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/sirupsen/logrus"
)

type AdminEventFilter string

const (
	AdminEventsAll      AdminEventFilter = ""
	AdminEventsActive   AdminEventFilter = "active"
	AdminEventsPending  AdminEventFilter = "pending"
	AdminEventsInactive AdminEventFilter = "inactive"
	AdminEventsUpcoming AdminEventFilter = "upcoming"
)

type moderationService struct {
	events    EventService
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

func NewModerationService(
	events EventService,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
) ModerationService {
	return &moderationService{
		events:    events,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

func requireAdmin(actor entity.Actor) error {
	if actor.ID == "" {
		return entity.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return entity.ErrAdminOnly
	}
	return nil
}

func (s *moderationService) EnableUser(ctx context.Context, admin entity.Actor, userID string) error {
	return s.setEnabled(ctx, admin, userID, true)
}

func (s *moderationService) DisableUser(ctx context.Context, admin entity.Actor, userID string) error {
	return s.setEnabled(ctx, admin, userID, false)
}

func (s *moderationService) setEnabled(ctx context.Context, admin entity.Actor, userID string, enabled bool) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.userRepo.SetEnabled(ctx, userID, enabled); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"admin":   admin.ID,
		"enabled": enabled,
	}).Info("User enabled flag changed")
	return nil
}

func (s *moderationService) ChangeUserRole(ctx context.Context, admin entity.Actor, userID string, role entity.Role) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if _, ok := entity.ParseRole(string(role)); !ok {
		return entity.Validationf("unknown role %q", role)
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"admin":   admin.ID,
		"role":    role,
	}).Info("User role changed")
	return nil
}

func (s *moderationService) DeleteUser(ctx context.Context, admin entity.Actor, userID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.userRepo.DeleteWithRegistrations(ctx, userID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"admin":   admin.ID,
	}).Info("User deleted")
	return nil
}

func (s *moderationService) ListUsers(ctx context.Context, admin entity.Actor, role *entity.Role) ([]*entity.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, role)
}

func (s *moderationService) ActivateEvent(ctx context.Context, admin entity.Actor, eventID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	return s.events.ActivateEvent(ctx, eventID)
}

func (s *moderationService) DeactivateEvent(ctx context.Context, admin entity.Actor, eventID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	return s.events.DeactivateEvent(ctx, eventID)
}

func (s *moderationService) DeleteEvent(ctx context.Context, admin entity.Actor, eventID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	return s.events.DeleteEvent(ctx, admin, eventID)
}

// ListEvents returns events matching the admin filter, newest start first.
func (s *moderationService) ListEvents(ctx context.Context, admin entity.Actor, filter AdminEventFilter) ([]*entity.Event, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	query, err := s.adminQuery(filter)
	if err != nil {
		return nil, err
	}
	query.SortDesc = true

	return s.eventRepo.List(ctx, query)
}

func (s *moderationService) adminQuery(filter AdminEventFilter) (entity.EventFilter, error) {
	now := s.now()
	switch filter {
	case AdminEventsAll:
		return entity.EventFilter{}, nil
	case AdminEventsActive:
		return entity.EventFilter{Active: entity.BoolPtr(true), OpenAt: &now}, nil
	case AdminEventsPending:
		return entity.EventFilter{RequiresApproval: entity.BoolPtr(true)}, nil
	case AdminEventsInactive:
		return entity.EventFilter{Active: entity.BoolPtr(false)}, nil
	case AdminEventsUpcoming:
		return entity.EventFilter{Active: entity.BoolPtr(true), StartsAfter: &now}, nil
	default:
		return entity.EventFilter{}, entity.Validationf("unknown event filter %q", filter)
	}
}

func (s *moderationService) PurgeCompleted(ctx context.Context, admin entity.Actor, cutoff time.Time) ([]*entity.Event, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	deleted, err := s.events.PurgeCompletedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"admin":   admin.ID,
		"cutoff":  cutoff,
		"deleted": len(deleted),
	}).Info("Manual purge completed")
	return deleted, nil
}

func (s *moderationService) Stats(ctx context.Context, admin entity.Actor) (*entity.ModerationStats, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	stats := &entity.ModerationStats{UsersByRole: byRole}
	for _, count := range byRole {
		stats.TotalUsers += count
	}

	counts := []struct {
		dst    *int64
		filter AdminEventFilter
	}{
		{&stats.TotalEvents, AdminEventsAll},
		{&stats.ActiveEvents, AdminEventsActive},
		{&stats.InactiveEvents, AdminEventsInactive},
		{&stats.UpcomingEvents, AdminEventsUpcoming},
		{&stats.PendingEvents, AdminEventsPending},
	}
	for _, c := range counts {
		query, err := s.adminQuery(c.filter)
		if err != nil {
			return nil, err
		}
		if *c.dst, err = s.eventRepo.Count(ctx, query); err != nil {
			return nil, fmt.Errorf("failed to count events: %w", err)
		}
	}
	return stats, nil
}

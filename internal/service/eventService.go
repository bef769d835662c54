package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/ds124wfegd/eventsphere/internal/database/postgres"
	cache "github.com/ds124wfegd/eventsphere/internal/database/redis"
	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateEventRequest represents the data needed to create an event
type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,max=255"`
	Description          string     `json:"description" binding:"max=5000"`
	Category             string     `json:"category" binding:"required,category"`
	Location             string     `json:"location" binding:"max=255"`
	StartTime            time.Time  `json:"start_time" binding:"required"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MaxParticipants      *int       `json:"max_participants,omitempty" binding:"omitempty,min=1"`
	ParticipationMode    string     `json:"participation_mode" binding:"omitempty,participation"`
	GroupSize            *int       `json:"group_size,omitempty" binding:"omitempty,min=1"`
	RequiresApproval     bool       `json:"requires_approval"`
}

// UpdateEventRequest overwrites every mutable field of an event.
// Organizer and participation mode are fixed at creation.
type UpdateEventRequest struct {
	Title                string     `json:"title" binding:"required,max=255"`
	Description          string     `json:"description" binding:"max=5000"`
	Category             string     `json:"category" binding:"required,category"`
	Location             string     `json:"location" binding:"max=255"`
	StartTime            time.Time  `json:"start_time" binding:"required"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	MaxParticipants      *int       `json:"max_participants,omitempty" binding:"omitempty,min=1"`
	GroupSize            *int       `json:"group_size,omitempty" binding:"omitempty,min=1"`
	RequiresApproval     bool       `json:"requires_approval"`
}

type eventService struct {
	eventRepo repository.EventRepository
	cache     cache.EventCache
	auditor   PurgeAuditor
	now       func() time.Time
}

// NewEventService creates a new instance of EventService
func NewEventService(
	eventRepo repository.EventRepository,
	eventCache cache.EventCache,
	auditor PurgeAuditor,
) EventService {
	if eventCache == nil {
		eventCache = cache.NoopCache{}
	}
	return &eventService{
		eventRepo: eventRepo,
		cache:     eventCache,
		auditor:   auditor,
		now:       time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actor entity.Actor, req *CreateEventRequest) (*entity.Event, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	if actor.Role != entity.RoleOrganizer && actor.Role != entity.RoleAdmin {
		return nil, entity.ErrOrganizerRequired
	}

	category, err := validateEventFields(req.Title, req.Category)
	if err != nil {
		return nil, err
	}

	mode := entity.ParticipationIndividual
	if req.ParticipationMode != "" {
		parsed, ok := entity.ParseParticipationMode(req.ParticipationMode)
		if !ok {
			return nil, entity.Validationf("unknown participation mode %q", req.ParticipationMode)
		}
		mode = parsed
	}

	now := s.now()
	event := &entity.Event{
		ID:                   uuid.NewString(),
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		Category:             category,
		Location:             req.Location,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		RegistrationDeadline: req.RegistrationDeadline,
		OrganizerID:          actor.ID,
		MaxParticipants:      req.MaxParticipants,
		ParticipationMode:    mode,
		GroupSize:            req.GroupSize,
		RequiresApproval:     req.RequiresApproval,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id": event.ID,
		"actor_id": actor.ID,
	}).Info("Event created")
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor entity.Actor, id string, req *UpdateEventRequest) (*entity.Event, error) {
	event, err := s.GetEventForManagement(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	category, err := validateEventFields(req.Title, req.Category)
	if err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Category = category
	event.Location = req.Location
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.RegistrationDeadline = req.RegistrationDeadline
	event.MaxParticipants = req.MaxParticipants
	event.GroupSize = req.GroupSize
	event.RequiresApproval = req.RequiresApproval
	event.UpdatedAt = s.now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	s.invalidate(ctx, event.ID)

	return event, nil
}

func (s *eventService) ActivateEvent(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *eventService) DeactivateEvent(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *eventService) setActive(ctx context.Context, id string, active bool) error {
	if err := s.eventRepo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to set event active=%t: %w", active, err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actor entity.Actor, id string) error {
	if _, err := s.GetEventForManagement(ctx, actor, id); err != nil {
		return err
	}

	if err := s.eventRepo.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.invalidate(ctx, id)

	logrus.WithFields(logrus.Fields{
		"event_id": id,
		"actor_id": actor.ID,
	}).Info("Event deleted")
	return nil
}

func (s *eventService) PurgeCompletedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Event, error) {
	deleted, err := s.eventRepo.PurgeCompletedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to purge completed events: %w", err)
	}
	if len(deleted) == 0 {
		return deleted, nil
	}

	ids := make([]string, len(deleted))
	for i, event := range deleted {
		ids[i] = event.ID
	}
	s.invalidate(ctx, ids...)

	if s.auditor != nil {
		if err := s.auditor.RecordPurge(ctx, cutoff, deleted); err != nil {
			logrus.WithField("deleted", len(deleted)).Warnf("Failed to record purge audit: %v", err)
		}
	}
	return deleted, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*entity.EventWithStats, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, event)
}

// GetEventForManagement loads the event and applies the ownership predicate.
func (s *eventService) GetEventForManagement(ctx context.Context, actor entity.Actor, id string) (*entity.Event, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanManageEvent(actor, event) {
		return nil, entity.ErrCannotManage
	}
	return event, nil
}

func (s *eventService) loadEvent(ctx context.Context, id string) (*entity.Event, error) {
	event, err := s.cache.GetEvent(ctx, id)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logrus.WithField("event_id", id).Warnf("Event cache read failed: %v", err)
	}

	event, err = s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetEvent(ctx, event); err != nil {
		logrus.WithField("event_id", id).Warnf("Event cache write failed: %v", err)
	}
	return event, nil
}

func (s *eventService) invalidate(ctx context.Context, ids ...string) {
	if err := s.cache.DeleteEvents(ctx, ids...); err != nil {
		logrus.WithField("event_ids", ids).Warnf("Event cache invalidation failed: %v", err)
	}
}

func (s *eventService) ListActive(ctx context.Context) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{Active: entity.BoolPtr(true)})
}

func (s *eventService) ListUpcoming(ctx context.Context, now time.Time) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{Active: entity.BoolPtr(true), StartsAfter: &now})
}

func (s *eventService) ListByCategory(ctx context.Context, category entity.Category) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{Active: entity.BoolPtr(true), Category: category})
}

func (s *eventService) SearchByLocation(ctx context.Context, location string) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{Active: entity.BoolPtr(true), Location: location})
}

func (s *eventService) Search(ctx context.Context, keyword string) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{Active: entity.BoolPtr(true), Keyword: keyword})
}

func (s *eventService) ListPendingApproval(ctx context.Context) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{RequiresApproval: entity.BoolPtr(true)})
}

func (s *eventService) ListByOrganizer(ctx context.Context, organizerID string) ([]*entity.EventWithStats, error) {
	return s.Filter(ctx, entity.EventFilter{OrganizerID: organizerID})
}

func (s *eventService) ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.EventWithStats, error) {
	if to.Before(from) {
		return nil, entity.Validationf("date range end is before its start")
	}
	return s.Filter(ctx, entity.EventFilter{Active: entity.BoolPtr(true), From: &from, To: &to})
}

func (s *eventService) Filter(ctx context.Context, filter entity.EventFilter) ([]*entity.EventWithStats, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return s.decorate(ctx, events)
}

func (s *eventService) withStats(ctx context.Context, event *entity.Event) (*entity.EventWithStats, error) {
	result, err := s.decorate(ctx, []*entity.Event{event})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

// decorate attaches registration counts with a single grouped query.
func (s *eventService) decorate(ctx context.Context, events []*entity.Event) ([]*entity.EventWithStats, error) {
	result := make([]*entity.EventWithStats, 0, len(events))
	if len(events) == 0 {
		return result, nil
	}

	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	counts, err := s.eventRepo.CountRegistrations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}

	now := s.now()
	for _, event := range events {
		result = append(result, entity.NewEventWithStats(event, counts[event.ID], now))
	}
	return result, nil
}

func validateEventFields(title, category string) (entity.Category, error) {
	if strings.TrimSpace(title) == "" {
		return "", entity.Validationf("title is required")
	}
	parsed, ok := entity.ParseCategory(category)
	if !ok {
		return "", entity.Validationf("unknown category %q", category)
	}
	return parsed, nil
}

// IsRegistrationClosed reports whether registration for event is closed at t.
func IsRegistrationClosed(event *entity.Event, t time.Time) bool {
	return event.IsRegistrationClosed(t)
}

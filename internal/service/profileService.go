package service

import (
	"context"
	"strings"
	"time"

	repository "github.com/ds124wfegd/eventsphere/internal/database/postgres"
	"github.com/ds124wfegd/eventsphere/internal/entity"
)

type ProfileRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email"`
}

type profileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

// SaveProfile records the actor's name and email. A new row takes the token
// role; an existing row keeps whatever role moderation gave it.
func (s *profileService) SaveProfile(ctx context.Context, actor entity.Actor, req *ProfileRequest) (*entity.User, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, entity.Validationf("name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return nil, entity.Validationf("invalid email %q", req.Email)
	}

	user := &entity.User{
		ID:        actor.ID,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Name:      strings.TrimSpace(req.Name),
		Role:      actor.Role,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *profileService) GetProfile(ctx context.Context, actor entity.Actor) (*entity.User, error) {
	if actor.ID == "" {
		return nil, entity.ErrUnauthenticated
	}
	return s.userRepo.GetByID(ctx, actor.ID)
}

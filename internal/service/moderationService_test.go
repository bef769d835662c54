package service

import (
	"context"
	"testing"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModerationFixture() (*eventFixture, ModerationService) {
	f := newEventFixture()
	return f, NewModerationService(f.events, f.store.eventRepo(), f.store.userRepo())
}

func seedUsers(t *testing.T, f *eventFixture) {
	t.Helper()
	users := f.store.userRepo()
	for _, u := range []*entity.User{
		{ID: organizer.ID, Email: "org@example.com", Name: "Org", Role: entity.RoleOrganizer, Enabled: true},
		{ID: participant.ID, Email: "user@example.com", Name: "User", Role: entity.RoleParticipant, Enabled: true},
		{ID: "user-2", Email: "user2@example.com", Name: "User Two", Role: entity.RoleParticipant, Enabled: true},
		{ID: admin.ID, Email: "admin@example.com", Name: "Admin", Role: entity.RoleAdmin, Enabled: true},
	} {
		require.NoError(t, users.Upsert(context.Background(), u))
	}
}

func TestModerationRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f, moderation := newModerationFixture()
	seedUsers(t, f)
	f.store.addEvent(newEvent("e1"))

	calls := map[string]func(entity.Actor) error{
		"enable":  func(a entity.Actor) error { return moderation.EnableUser(ctx, a, participant.ID) },
		"disable": func(a entity.Actor) error { return moderation.DisableUser(ctx, a, participant.ID) },
		"role": func(a entity.Actor) error {
			return moderation.ChangeUserRole(ctx, a, participant.ID, entity.RoleOrganizer)
		},
		"delete user": func(a entity.Actor) error { return moderation.DeleteUser(ctx, a, "user-2") },
		"list users": func(a entity.Actor) error {
			_, err := moderation.ListUsers(ctx, a, nil)
			return err
		},
		"activate":     func(a entity.Actor) error { return moderation.ActivateEvent(ctx, a, "e1") },
		"deactivate":   func(a entity.Actor) error { return moderation.DeactivateEvent(ctx, a, "e1") },
		"delete event": func(a entity.Actor) error { return moderation.DeleteEvent(ctx, a, "e1") },
		"list events": func(a entity.Actor) error {
			_, err := moderation.ListEvents(ctx, a, AdminEventsAll)
			return err
		},
		"purge": func(a entity.Actor) error {
			_, err := moderation.PurgeCompleted(ctx, a, time.Now())
			return err
		},
		"stats": func(a entity.Actor) error {
			_, err := moderation.Stats(ctx, a)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			for _, actor := range []entity.Actor{participant, organizer, {}} {
				assert.ErrorIs(t, call(actor), entity.ErrPermissionDenied, "actor %q", actor.ID)
			}
		})
	}

	// nothing was deleted by the rejected calls
	_, err := f.events.GetEvent(ctx, "e1")
	require.NoError(t, err)
}

func TestModerationUserManagement(t *testing.T) {
	ctx := context.Background()
	f, moderation := newModerationFixture()
	seedUsers(t, f)

	require.NoError(t, moderation.DisableUser(ctx, admin, participant.ID))
	user, err := f.store.userRepo().GetByID(ctx, participant.ID)
	require.NoError(t, err)
	assert.False(t, user.Enabled)

	require.NoError(t, moderation.EnableUser(ctx, admin, participant.ID))
	user, err = f.store.userRepo().GetByID(ctx, participant.ID)
	require.NoError(t, err)
	assert.True(t, user.Enabled)

	require.NoError(t, moderation.ChangeUserRole(ctx, admin, participant.ID, entity.RoleOrganizer))
	assert.ErrorIs(t, moderation.ChangeUserRole(ctx, admin, participant.ID, entity.Role("ROOT")), entity.ErrValidation)
	assert.ErrorIs(t, moderation.EnableUser(ctx, admin, "ghost"), entity.ErrNotFound)

	organizers := entity.RoleOrganizer
	users, err := moderation.ListUsers(ctx, admin, &organizers)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestModerationDeleteUser(t *testing.T) {
	ctx := context.Background()
	f, moderation := newModerationFixture()
	seedUsers(t, f)
	f.store.addEvent(newEvent("e1"))

	_, err := f.regs.SubmitRSVP(ctx, participant, "e1", &RSVPRequest{Status: "GOING"})
	require.NoError(t, err)
	_, err = f.regs.RegisterVolunteer(ctx, participant, "e1", &VolunteerRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, moderation.DeleteUser(ctx, admin, organizer.ID), entity.ErrConflict)

	require.NoError(t, moderation.DeleteUser(ctx, admin, participant.ID))

	going, err := f.regs.GoingCount(ctx, "e1")
	require.NoError(t, err)
	assert.Zero(t, going)
	pending, err := f.regs.PendingVolunteerCount(ctx, "e1")
	require.NoError(t, err)
	assert.Zero(t, pending)

	assert.ErrorIs(t, moderation.DeleteUser(ctx, admin, participant.ID), entity.ErrNotFound)
}

func TestModerationListEvents(t *testing.T) {
	ctx := context.Background()
	f, moderation := newModerationFixture()
	now := time.Now()

	f.store.addEvent(newEvent("ended", func(e *entity.Event) {
		e.StartTime = now.Add(-72 * time.Hour)
		e.EndTime = timePtr(now.Add(-48 * time.Hour))
	}))
	f.store.addEvent(newEvent("ongoing", func(e *entity.Event) {
		e.StartTime = now.Add(-time.Hour)
		e.EndTime = timePtr(now.Add(time.Hour))
	}))
	f.store.addEvent(newEvent("upcoming", func(e *entity.Event) {
		e.StartTime = now.Add(24 * time.Hour)
		e.RequiresApproval = true
	}))
	f.store.addEvent(newEvent("hidden", func(e *entity.Event) {
		e.StartTime = now.Add(48 * time.Hour)
		e.Active = false
	}))

	tests := []struct {
		filter AdminEventFilter
		want   []string
	}{
		{AdminEventsAll, []string{"hidden", "upcoming", "ongoing", "ended"}},
		{AdminEventsActive, []string{"upcoming", "ongoing"}},
		{AdminEventsPending, []string{"upcoming"}},
		{AdminEventsInactive, []string{"hidden"}},
		{AdminEventsUpcoming, []string{"upcoming"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			events, err := moderation.ListEvents(ctx, admin, tt.filter)
			require.NoError(t, err)

			got := make([]string, 0, len(events))
			for _, e := range events {
				got = append(got, e.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := moderation.ListEvents(ctx, admin, AdminEventFilter("archived"))
	assert.ErrorIs(t, err, entity.ErrValidation)

	stats, err := moderation.Stats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalEvents)
	assert.EqualValues(t, 2, stats.ActiveEvents)
	assert.EqualValues(t, 1, stats.InactiveEvents)
	assert.EqualValues(t, 1, stats.UpcomingEvents)
	assert.EqualValues(t, 1, stats.PendingEvents)
}

func TestModerationEventActions(t *testing.T) {
	ctx := context.Background()
	f, moderation := newModerationFixture()
	seedUsers(t, f)
	f.store.addEvent(newEvent("e1"))
	f.store.addEvent(newEvent("old", func(e *entity.Event) { e.EndTime = timePtr(time.Now().Add(-time.Hour)) }))

	require.NoError(t, moderation.DeactivateEvent(ctx, admin, "e1"))
	event, err := f.events.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, event.Active)

	require.NoError(t, moderation.ActivateEvent(ctx, admin, "e1"))

	deleted, err := moderation.PurgeCompleted(ctx, admin, time.Now())
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "old", deleted[0].ID)

	require.NoError(t, moderation.DeleteEvent(ctx, admin, "e1"))
	_, err = f.events.GetEvent(ctx, "e1")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	stats, err := moderation.Stats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.UsersByRole[entity.RoleParticipant])
	assert.EqualValues(t, 1, stats.UsersByRole[entity.RoleOrganizer])
	assert.EqualValues(t, 1, stats.UsersByRole[entity.RoleAdmin])
	assert.Zero(t, stats.TotalEvents)
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	profiles := NewProfileService(store.userRepo())

	_, err := profiles.GetProfile(ctx, participant)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = profiles.SaveProfile(ctx, entity.Actor{}, &ProfileRequest{Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)

	_, err = profiles.SaveProfile(ctx, participant, &ProfileRequest{Name: "x", Email: "nope"})
	assert.ErrorIs(t, err, entity.ErrValidation)

	saved, err := profiles.SaveProfile(ctx, participant, &ProfileRequest{Name: " Ada ", Email: "Ada@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", saved.Name)
	assert.Equal(t, "ada@example.com", saved.Email)
	assert.Equal(t, entity.RoleParticipant, saved.Role)

	got, err := profiles.GetProfile(ctx, participant)
	require.NoError(t, err)
	assert.Equal(t, saved.Email, got.Email)
}

func TestSaveProfileKeepsModeratedRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	profiles := NewProfileService(store.userRepo())
	moderation := NewModerationService(nil, store.eventRepo(), store.userRepo())

	_, err := profiles.SaveProfile(ctx, participant, &ProfileRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, moderation.ChangeUserRole(ctx, admin, participant.ID, entity.RoleOrganizer))

	saved, err := profiles.SaveProfile(ctx, participant, &ProfileRequest{Name: "Ada L.", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOrganizer, saved.Role)
	assert.Equal(t, "Ada L.", saved.Name)

	got, err := profiles.GetProfile(ctx, participant)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOrganizer, got.Role)
}

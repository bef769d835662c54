package service

import (
	"context"
	"sort"
	"sync"
	"time"

	cache "github.com/ds124wfegd/eventsphere/internal/database/redis"
	"github.com/ds124wfegd/eventsphere/internal/entity"
)

// memStore is an in-memory stand-in for the Postgres repositories.
type memStore struct {
	mu         sync.Mutex
	events     map[string]*entity.Event
	rsvps      map[[2]string]*entity.RSVP
	volunteers map[[2]string]*entity.Volunteer
	users      map[string]*entity.User
	failWith   error
}

func newMemStore() *memStore {
	return &memStore{
		events:     make(map[string]*entity.Event),
		rsvps:      make(map[[2]string]*entity.RSVP),
		volunteers: make(map[[2]string]*entity.Volunteer),
		users:      make(map[string]*entity.User),
	}
}

func (m *memStore) eventRepo() *memEventRepo         { return &memEventRepo{m} }
func (m *memStore) rsvpRepo() *memRSVPRepo           { return &memRSVPRepo{m} }
func (m *memStore) volunteerRepo() *memVolunteerRepo { return &memVolunteerRepo{m} }
func (m *memStore) userRepo() *memUserRepo           { return &memUserRepo{m} }

func (m *memStore) addEvent(e *entity.Event) *entity.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events[e.ID] = &cp
	return e
}

type memEventRepo struct{ m *memStore }

func (r *memEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return r.m.failWith
	}
	cp := *event
	r.m.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, id string) (*entity.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	e, ok := r.m.events[id]
	if !ok {
		return nil, entity.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) Update(_ context.Context, event *entity.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.events[event.ID]; !ok {
		return entity.ErrEventNotFound
	}
	cp := *event
	r.m.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) SetActive(_ context.Context, id string, active bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.events[id]
	if !ok {
		return entity.ErrEventNotFound
	}
	e.Active = active
	return nil
}

func (r *memEventRepo) DeleteCascade(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.events[id]; !ok {
		return entity.ErrEventNotFound
	}
	r.m.deleteEventLocked(id)
	return nil
}

func (m *memStore) deleteEventLocked(id string) {
	delete(m.events, id)
	for k := range m.rsvps {
		if k[0] == id {
			delete(m.rsvps, k)
		}
	}
	for k := range m.volunteers {
		if k[0] == id {
			delete(m.volunteers, k)
		}
	}
}

func (r *memEventRepo) PurgeCompletedBefore(_ context.Context, cutoff time.Time) ([]*entity.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	var deleted []*entity.Event
	for id, e := range r.m.events {
		if e.CompletedBefore(cutoff) {
			deleted = append(deleted, e)
			r.m.deleteEventLocked(id)
		}
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].EndTime.Before(*deleted[j].EndTime) })
	return deleted, nil
}

func (r *memEventRepo) List(_ context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*entity.Event, 0)
	for _, e := range r.m.events {
		if filter.Matches(e) {
			cp := *e
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if filter.SortDesc {
			return result[i].StartTime.After(result[j].StartTime)
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*entity.Event{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memEventRepo) Count(ctx context.Context, filter entity.EventFilter) (int64, error) {
	events, err := r.List(ctx, filter)
	return int64(len(events)), err
}

func (r *memEventRepo) CountRegistrations(_ context.Context, eventIDs []string) (map[string]entity.EventCounts, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}

	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	counts := make(map[string]entity.EventCounts, len(eventIDs))
	for k, rsvp := range r.m.rsvps {
		if !wanted[k[0]] {
			continue
		}
		c := counts[k[0]]
		switch rsvp.Status {
		case entity.RSVPGoing:
			c.Going++
		case entity.RSVPInterested:
			c.Interested++
		}
		counts[k[0]] = c
	}
	for k, v := range r.m.volunteers {
		if !wanted[k[0]] {
			continue
		}
		c := counts[k[0]]
		switch v.Status {
		case entity.VolunteerApproved:
			c.ApprovedVolunteers++
		case entity.VolunteerPending:
			c.PendingVolunteers++
		}
		counts[k[0]] = c
	}
	return counts, nil
}

type memRSVPRepo struct{ m *memStore }

func (r *memRSVPRepo) Upsert(_ context.Context, rsvp *entity.RSVP) (*entity.RSVP, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]string{rsvp.EventID, rsvp.ActorID}
	cp := *rsvp
	if existing, ok := r.m.rsvps[key]; ok {
		cp.ID = existing.ID
	}
	r.m.rsvps[key] = &cp
	out := cp
	return &out, nil
}

func (r *memRSVPRepo) Get(_ context.Context, eventID, actorID string) (*entity.RSVP, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rsvp, ok := r.m.rsvps[[2]string{eventID, actorID}]
	if !ok {
		return nil, entity.ErrRSVPNotFound
	}
	cp := *rsvp
	return &cp, nil
}

func (r *memRSVPRepo) Delete(_ context.Context, eventID, actorID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]string{eventID, actorID}
	if _, ok := r.m.rsvps[key]; !ok {
		return entity.ErrRSVPNotFound
	}
	delete(r.m.rsvps, key)
	return nil
}

func (r *memRSVPRepo) ListByEvent(_ context.Context, eventID string, status *entity.RSVPStatus) ([]*entity.RSVPWithUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*entity.RSVPWithUser, 0)
	for k, rsvp := range r.m.rsvps {
		if k[0] != eventID || (status != nil && rsvp.Status != *status) {
			continue
		}
		item := &entity.RSVPWithUser{RSVP: *rsvp}
		if u, ok := r.m.users[rsvp.ActorID]; ok {
			item.UserName, item.UserEmail = u.Name, u.Email
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ActorID < result[j].ActorID })
	return result, nil
}

func (r *memRSVPRepo) ListByActor(_ context.Context, actorID string) ([]*entity.RSVP, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*entity.RSVP, 0)
	for k, rsvp := range r.m.rsvps {
		if k[1] == actorID {
			cp := *rsvp
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memRSVPRepo) CountByStatus(_ context.Context, eventID string, status entity.RSVPStatus) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for k, rsvp := range r.m.rsvps {
		if k[0] == eventID && rsvp.Status == status {
			n++
		}
	}
	return n, nil
}

type memVolunteerRepo struct{ m *memStore }

func (r *memVolunteerRepo) Create(_ context.Context, v *entity.Volunteer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]string{v.EventID, v.ActorID}
	if _, ok := r.m.volunteers[key]; ok {
		return entity.ErrVolunteerExists
	}
	cp := *v
	r.m.volunteers[key] = &cp
	return nil
}

func (r *memVolunteerRepo) Get(_ context.Context, eventID, actorID string) (*entity.Volunteer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.volunteers[[2]string{eventID, actorID}]
	if !ok {
		return nil, entity.ErrVolunteerNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memVolunteerRepo) SetStatus(_ context.Context, eventID, actorID string, status entity.VolunteerStatus) (entity.VolunteerStatus, *entity.Volunteer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.volunteers[[2]string{eventID, actorID}]
	if !ok {
		return "", nil, entity.ErrVolunteerNotFound
	}
	previous := v.Status
	v.Status = status
	cp := *v
	return previous, &cp, nil
}

func (r *memVolunteerRepo) UpdateRole(_ context.Context, eventID, actorID, role string) (*entity.Volunteer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.volunteers[[2]string{eventID, actorID}]
	if !ok {
		return nil, entity.ErrVolunteerNotFound
	}
	v.RoleDescription = role
	cp := *v
	return &cp, nil
}

func (r *memVolunteerRepo) Delete(_ context.Context, eventID, actorID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]string{eventID, actorID}
	if _, ok := r.m.volunteers[key]; !ok {
		return entity.ErrVolunteerNotFound
	}
	delete(r.m.volunteers, key)
	return nil
}

func (r *memVolunteerRepo) ListByEvent(_ context.Context, eventID string, status *entity.VolunteerStatus) ([]*entity.VolunteerWithUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*entity.VolunteerWithUser, 0)
	for k, v := range r.m.volunteers {
		if k[0] != eventID || (status != nil && v.Status != *status) {
			continue
		}
		item := &entity.VolunteerWithUser{Volunteer: *v}
		if u, ok := r.m.users[v.ActorID]; ok {
			item.UserName, item.UserEmail = u.Name, u.Email
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ActorID < result[j].ActorID })
	return result, nil
}

func (r *memVolunteerRepo) ListByActor(_ context.Context, actorID string) ([]*entity.Volunteer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*entity.Volunteer, 0)
	for k, v := range r.m.volunteers {
		if k[1] == actorID {
			cp := *v
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memVolunteerRepo) CountByStatus(_ context.Context, eventID string, status entity.VolunteerStatus) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for k, v := range r.m.volunteers {
		if k[0] == eventID && v.Status == status {
			n++
		}
	}
	return n, nil
}

type memUserRepo struct{ m *memStore }

func (r *memUserRepo) Upsert(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if existing, ok := r.m.users[user.ID]; ok {
		user.Role = existing.Role
		user.Enabled = existing.Enabled
		user.CreatedAt = existing.CreatedAt
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) List(_ context.Context, role *entity.Role) ([]*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	result := make([]*entity.User, 0)
	for _, u := range r.m.users {
		if role == nil || u.Role == *role {
			cp := *u
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUserRepo) SetEnabled(_ context.Context, id string, enabled bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	u.Enabled = enabled
	return nil
}

func (r *memUserRepo) SetRole(_ context.Context, id string, role entity.Role) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *memUserRepo) CountByRole(_ context.Context) (map[entity.Role]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[entity.Role]int64{
		entity.RoleParticipant: 0,
		entity.RoleOrganizer:   0,
		entity.RoleAdmin:       0,
	}
	for _, u := range r.m.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *memUserRepo) DeleteWithRegistrations(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.events {
		if e.OrganizerID == id {
			return entity.ErrUserHasEvents
		}
	}
	if _, ok := r.m.users[id]; !ok {
		return entity.ErrUserNotFound
	}
	for k := range r.m.rsvps {
		if k[1] == id {
			delete(r.m.rsvps, k)
		}
	}
	for k := range r.m.volunteers {
		if k[1] == id {
			delete(r.m.volunteers, k)
		}
	}
	delete(r.m.users, id)
	return nil
}

// memCache is a map-backed EventCache with the same tombstone rule as Redis.
type memCache struct {
	mu     sync.Mutex
	events map[string]*entity.Event
	gone   map[string]bool
}

func newMemCache() *memCache {
	return &memCache{
		events: make(map[string]*entity.Event),
		gone:   make(map[string]bool),
	}
}

func (c *memCache) GetEvent(_ context.Context, id string) (*entity.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.events[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	cp := *e
	return &cp, nil
}

func (c *memCache) SetEvent(_ context.Context, event *entity.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gone[event.ID] {
		return nil
	}
	cp := *event
	c.events[event.ID] = &cp
	return nil
}

func (c *memCache) DeleteEvents(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.events, id)
		c.gone[id] = true
	}
	return nil
}

func (c *memCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.events[id]
	return ok
}

// recordingNotifier captures notifications sent by the dispatcher.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification *Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) kinds() []NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

type recordingAuditor struct {
	mu      sync.Mutex
	batches [][]*entity.Event
	err     error
}

func (a *recordingAuditor) RecordPurge(_ context.Context, _ time.Time, events []*entity.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batches = append(a.batches, events)
	return a.err
}

func (a *recordingAuditor) Close() error { return nil }

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/lib/pq"
)

const eventColumns = `id, title, description, category, location, start_time, end_time,
	registration_deadline, organizer_id, max_participants, participation_mode, group_size,
	requires_approval, active, created_at, updated_at`

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	var event entity.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Category,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&event.RegistrationDeadline,
		&event.OrganizerID,
		&event.MaxParticipants,
		&event.ParticipationMode,
		&event.GroupSize,
		&event.RequiresApproval,
		&event.Active,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Category,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.RegistrationDeadline,
		event.OrganizerID,
		event.MaxParticipants,
		event.ParticipationMode,
		event.GroupSize,
		event.RequiresApproval,
		event.Active,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return entity.Unavailable("create event", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, entity.Unavailable("get event", err)
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, category = $3, location = $4, start_time = $5,
			end_time = $6, registration_deadline = $7, max_participants = $8, group_size = $9,
			requires_approval = $10, updated_at = $11
		WHERE id = $12
	`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Category,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.RegistrationDeadline,
		event.MaxParticipants,
		event.GroupSize,
		event.RequiresApproval,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return entity.Unavailable("update event", err)
	}
	return expectAffected(result, entity.ErrEventNotFound)
}

func (r *eventRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE events SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return entity.Unavailable("set event active", err)
	}
	return expectAffected(result, entity.ErrEventNotFound)
}

func (r *eventRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return entity.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := deleteRegistrations(ctx, tx, []string{id}); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return entity.Unavailable("delete event", err)
	}
	if err := expectAffected(result, entity.ErrEventNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return entity.Unavailable("commit transaction", err)
	}
	return nil
}

func (r *eventRepository) PurgeCompletedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Event, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, entity.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE end_time IS NOT NULL AND end_time < $1
		ORDER BY end_time ASC
		FOR UPDATE
	`

	rows, err := tx.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, entity.Unavailable("select completed events", err)
	}

	var events []*entity.Event
	var ids []string
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, entity.Unavailable("scan event", err)
		}
		events = append(events, event)
		ids = append(ids, event.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate events", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	if err := deleteRegistrations(ctx, tx, ids); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, entity.Unavailable("delete events", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, entity.Unavailable("commit transaction", err)
	}
	return events, nil
}

func deleteRegistrations(ctx context.Context, tx *sql.Tx, eventIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = ANY($1)`, pq.Array(eventIDs)); err != nil {
		return entity.Unavailable("delete rsvps", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM volunteers WHERE event_id = ANY($1)`, pq.Array(eventIDs)); err != nil {
		return entity.Unavailable("delete volunteers", err)
	}
	return nil
}

func (r *eventRepository) List(ctx context.Context, filter entity.EventFilter) ([]*entity.Event, error) {
	where, args := buildEventWhere(filter)

	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY start_time %s`, eventColumns, where, order)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, entity.Unavailable("list events", err)
	}
	defer rows.Close()

	events := make([]*entity.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, entity.Unavailable("scan event", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate events", err)
	}
	return events, nil
}

func (r *eventRepository) Count(ctx context.Context, filter entity.EventFilter) (int64, error) {
	where, args := buildEventWhere(filter)

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&count); err != nil {
		return 0, entity.Unavailable("count events", err)
	}
	return count, nil
}

func (r *eventRepository) CountRegistrations(ctx context.Context, eventIDs []string) (map[string]entity.EventCounts, error) {
	counts := make(map[string]entity.EventCounts, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT event_id, 'rsvp', status, COUNT(*) FROM rsvps
		WHERE event_id = ANY($1) GROUP BY event_id, status
		UNION ALL
		SELECT event_id, 'volunteer', status, COUNT(*) FROM volunteers
		WHERE event_id = ANY($1) GROUP BY event_id, status
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, entity.Unavailable("count registrations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, source, status string
		var n int
		if err := rows.Scan(&eventID, &source, &status, &n); err != nil {
			return nil, entity.Unavailable("scan registration count", err)
		}

		c := counts[eventID]
		switch {
		case source == "rsvp" && status == string(entity.RSVPGoing):
			c.Going = n
		case source == "rsvp" && status == string(entity.RSVPInterested):
			c.Interested = n
		case source == "volunteer" && status == string(entity.VolunteerApproved):
			c.ApprovedVolunteers = n
		case source == "volunteer" && status == string(entity.VolunteerPending):
			c.PendingVolunteers = n
		}
		counts[eventID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate registration counts", err)
	}
	return counts, nil
}

func buildEventWhere(filter entity.EventFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if filter.Category != "" {
		add("category = ?", filter.Category)
	}
	if filter.OrganizerID != "" {
		add("organizer_id = ?", filter.OrganizerID)
	}
	if filter.Active != nil {
		add("active = ?", *filter.Active)
	}
	if filter.RequiresApproval != nil {
		add("requires_approval = ?", *filter.RequiresApproval)
	}
	if filter.StartsAfter != nil {
		add("start_time > ?", *filter.StartsAfter)
	}
	if filter.From != nil {
		add("start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		add("start_time <= ?", *filter.To)
	}
	if filter.OpenAt != nil {
		add("(end_time IS NULL OR end_time >= ?)", *filter.OpenAt)
	}
	if filter.Location != "" {
		add(`location ILIKE ? ESCAPE '\'`, containsPattern(filter.Location))
	}
	if filter.Keyword != "" {
		add(`(title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR location ILIKE ? ESCAPE '\')`,
			containsPattern(filter.Keyword))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally as a substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return entity.Unavailable("rows affected", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

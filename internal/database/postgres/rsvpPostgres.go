package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ds124wfegd/eventsphere/internal/entity"
)

const rsvpColumns = `r.id, r.event_id, r.actor_id, r.status, r.responded_at, r.notes, r.team_name, r.team_size`

type rsvpRepository struct {
	db *sql.DB
}

func NewRSVPRepository(db *sql.DB) RSVPRepository {
	return &rsvpRepository{db: db}
}

func scanRSVP(row rowScanner, extra ...interface{}) (*entity.RSVP, error) {
	var rsvp entity.RSVP
	dest := append([]interface{}{
		&rsvp.ID,
		&rsvp.EventID,
		&rsvp.ActorID,
		&rsvp.Status,
		&rsvp.RespondedAt,
		&rsvp.Notes,
		&rsvp.TeamName,
		&rsvp.TeamSize,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// Upsert relies on the (event_id, actor_id) unique constraint so concurrent
// submissions by the same actor converge on one row, last write wins.
func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *entity.RSVP) (*entity.RSVP, error) {
	query := `
		INSERT INTO rsvps AS r (id, event_id, actor_id, status, responded_at, notes, team_name, team_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id, actor_id) DO UPDATE
		SET status = EXCLUDED.status,
			responded_at = EXCLUDED.responded_at,
			notes = EXCLUDED.notes,
			team_name = EXCLUDED.team_name,
			team_size = EXCLUDED.team_size
		RETURNING ` + rsvpColumns

	saved, err := scanRSVP(r.db.QueryRowContext(ctx, query,
		rsvp.ID,
		rsvp.EventID,
		rsvp.ActorID,
		rsvp.Status,
		rsvp.RespondedAt,
		rsvp.Notes,
		rsvp.TeamName,
		rsvp.TeamSize,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, entity.ErrEventNotFound
		}
		return nil, entity.Unavailable("upsert rsvp", err)
	}
	return saved, nil
}

func (r *rsvpRepository) Get(ctx context.Context, eventID, actorID string) (*entity.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps r WHERE r.event_id = $1 AND r.actor_id = $2`

	rsvp, err := scanRSVP(r.db.QueryRowContext(ctx, query, eventID, actorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRSVPNotFound
	}
	if err != nil {
		return nil, entity.Unavailable("get rsvp", err)
	}
	return rsvp, nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID, actorID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = $1 AND actor_id = $2`, eventID, actorID)
	if err != nil {
		return entity.Unavailable("delete rsvp", err)
	}
	return expectAffected(result, entity.ErrRSVPNotFound)
}

func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID string, status *entity.RSVPStatus) ([]*entity.RSVPWithUser, error) {
	query := `
		SELECT ` + rsvpColumns + `, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM rsvps r
		LEFT JOIN users u ON u.id = r.actor_id
		WHERE r.event_id = $1 AND ($2::text IS NULL OR r.status = $2)
		ORDER BY r.responded_at ASC
	`

	var statusArg interface{}
	if status != nil {
		statusArg = string(*status)
	}

	rows, err := r.db.QueryContext(ctx, query, eventID, statusArg)
	if err != nil {
		return nil, entity.Unavailable("list event rsvps", err)
	}
	defer rows.Close()

	result := make([]*entity.RSVPWithUser, 0)
	for rows.Next() {
		var name, email string
		rsvp, err := scanRSVP(rows, &name, &email)
		if err != nil {
			return nil, entity.Unavailable("scan rsvp", err)
		}
		result = append(result, &entity.RSVPWithUser{RSVP: *rsvp, UserName: name, UserEmail: email})
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate rsvps", err)
	}
	return result, nil
}

func (r *rsvpRepository) ListByActor(ctx context.Context, actorID string) ([]*entity.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps r WHERE r.actor_id = $1 ORDER BY r.responded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, entity.Unavailable("list actor rsvps", err)
	}
	defer rows.Close()

	result := make([]*entity.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, entity.Unavailable("scan rsvp", err)
		}
		result = append(result, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate rsvps", err)
	}
	return result, nil
}

func (r *rsvpRepository) CountByStatus(ctx context.Context, eventID string, status entity.RSVPStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, eventID, status).Scan(&count); err != nil {
		return 0, entity.Unavailable("count rsvps", err)
	}
	return count, nil
}

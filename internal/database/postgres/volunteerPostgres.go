package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ds124wfegd/eventsphere/internal/entity"
)

const volunteerColumns = `v.id, v.event_id, v.actor_id, v.role_description, v.status, v.registered_at, v.notes`

type volunteerRepository struct {
	db *sql.DB
}

func NewVolunteerRepository(db *sql.DB) VolunteerRepository {
	return &volunteerRepository{db: db}
}

func scanVolunteer(row rowScanner, extra ...interface{}) (*entity.Volunteer, error) {
	var volunteer entity.Volunteer
	dest := append([]interface{}{
		&volunteer.ID,
		&volunteer.EventID,
		&volunteer.ActorID,
		&volunteer.RoleDescription,
		&volunteer.Status,
		&volunteer.RegisteredAt,
		&volunteer.Notes,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (r *volunteerRepository) Create(ctx context.Context, volunteer *entity.Volunteer) error {
	query := `
		INSERT INTO volunteers (id, event_id, actor_id, role_description, status, registered_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		volunteer.ID,
		volunteer.EventID,
		volunteer.ActorID,
		volunteer.RoleDescription,
		volunteer.Status,
		volunteer.RegisteredAt,
		volunteer.Notes,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return entity.ErrVolunteerExists
	case isForeignKeyViolation(err):
		return entity.ErrEventNotFound
	default:
		return entity.Unavailable("create volunteer", err)
	}
}

func (r *volunteerRepository) Get(ctx context.Context, eventID, actorID string) (*entity.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers v WHERE v.event_id = $1 AND v.actor_id = $2`

	volunteer, err := scanVolunteer(r.db.QueryRowContext(ctx, query, eventID, actorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrVolunteerNotFound
	}
	if err != nil {
		return nil, entity.Unavailable("get volunteer", err)
	}
	return volunteer, nil
}

func (r *volunteerRepository) SetStatus(ctx context.Context, eventID, actorID string, status entity.VolunteerStatus) (entity.VolunteerStatus, *entity.Volunteer, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return "", nil, entity.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	var previous entity.VolunteerStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM volunteers WHERE event_id = $1 AND actor_id = $2 FOR UPDATE`,
		eventID, actorID,
	).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, entity.ErrVolunteerNotFound
	}
	if err != nil {
		return "", nil, entity.Unavailable("lock volunteer", err)
	}

	query := `
		UPDATE volunteers v SET status = $3
		WHERE v.event_id = $1 AND v.actor_id = $2
		RETURNING ` + volunteerColumns

	updated, err := scanVolunteer(tx.QueryRowContext(ctx, query, eventID, actorID, status))
	if err != nil {
		return "", nil, entity.Unavailable("update volunteer status", err)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, entity.Unavailable("commit transaction", err)
	}
	return previous, updated, nil
}

func (r *volunteerRepository) UpdateRole(ctx context.Context, eventID, actorID, role string) (*entity.Volunteer, error) {
	query := `
		UPDATE volunteers v SET role_description = $3
		WHERE v.event_id = $1 AND v.actor_id = $2
		RETURNING ` + volunteerColumns

	volunteer, err := scanVolunteer(r.db.QueryRowContext(ctx, query, eventID, actorID, role))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrVolunteerNotFound
	}
	if err != nil {
		return nil, entity.Unavailable("update volunteer role", err)
	}
	return volunteer, nil
}

func (r *volunteerRepository) Delete(ctx context.Context, eventID, actorID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM volunteers WHERE event_id = $1 AND actor_id = $2`, eventID, actorID)
	if err != nil {
		return entity.Unavailable("delete volunteer", err)
	}
	return expectAffected(result, entity.ErrVolunteerNotFound)
}

func (r *volunteerRepository) ListByEvent(ctx context.Context, eventID string, status *entity.VolunteerStatus) ([]*entity.VolunteerWithUser, error) {
	query := `
		SELECT ` + volunteerColumns + `, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM volunteers v
		LEFT JOIN users u ON u.id = v.actor_id
		WHERE v.event_id = $1 AND ($2::text IS NULL OR v.status = $2)
		ORDER BY v.registered_at ASC
	`

	var statusArg interface{}
	if status != nil {
		statusArg = string(*status)
	}

	rows, err := r.db.QueryContext(ctx, query, eventID, statusArg)
	if err != nil {
		return nil, entity.Unavailable("list event volunteers", err)
	}
	defer rows.Close()

	result := make([]*entity.VolunteerWithUser, 0)
	for rows.Next() {
		var name, email string
		volunteer, err := scanVolunteer(rows, &name, &email)
		if err != nil {
			return nil, entity.Unavailable("scan volunteer", err)
		}
		result = append(result, &entity.VolunteerWithUser{Volunteer: *volunteer, UserName: name, UserEmail: email})
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate volunteers", err)
	}
	return result, nil
}

func (r *volunteerRepository) ListByActor(ctx context.Context, actorID string) ([]*entity.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers v WHERE v.actor_id = $1 ORDER BY v.registered_at DESC`

	rows, err := r.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, entity.Unavailable("list actor volunteering", err)
	}
	defer rows.Close()

	result := make([]*entity.Volunteer, 0)
	for rows.Next() {
		volunteer, err := scanVolunteer(rows)
		if err != nil {
			return nil, entity.Unavailable("scan volunteer", err)
		}
		result = append(result, volunteer)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate volunteers", err)
	}
	return result, nil
}

func (r *volunteerRepository) CountByStatus(ctx context.Context, eventID string, status entity.VolunteerStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM volunteers WHERE event_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, eventID, status).Scan(&count); err != nil {
		return 0, entity.Unavailable("count volunteers", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ds124wfegd/eventsphere/internal/entity"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Enabled,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert only refreshes email and name of an existing row; role, enabled
// and created_at stay as moderation left them.
func (r *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, name, role, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name
		RETURNING role, enabled, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.Enabled,
		user.CreatedAt,
	).Scan(&user.Role, &user.Enabled, &user.CreatedAt)
	if isUniqueViolation(err) {
		return entity.Conflictf("email %s is already in use", user.Email)
	}
	if err != nil {
		return entity.Unavailable("upsert user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, email, name, role, enabled, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, entity.Unavailable("get user", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, role *entity.Role) ([]*entity.User, error) {
	query := `
		SELECT id, email, name, role, enabled, created_at
		FROM users
		WHERE ($1::text IS NULL OR role = $1)
		ORDER BY created_at DESC
	`

	var roleArg interface{}
	if role != nil {
		roleArg = string(*role)
	}

	rows, err := r.db.QueryContext(ctx, query, roleArg)
	if err != nil {
		return nil, entity.Unavailable("list users", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, entity.Unavailable("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate users", err)
	}
	return users, nil
}

func (r *userRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return entity.Unavailable("set user enabled", err)
	}
	return expectAffected(result, entity.ErrUserNotFound)
}

func (r *userRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return entity.Unavailable("set user role", err)
	}
	return expectAffected(result, entity.ErrUserNotFound)
}

func (r *userRepository) CountByRole(ctx context.Context) (map[entity.Role]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, entity.Unavailable("count users", err)
	}
	defer rows.Close()

	counts := map[entity.Role]int64{
		entity.RoleParticipant: 0,
		entity.RoleOrganizer:   0,
		entity.RoleAdmin:       0,
	}
	for rows.Next() {
		var role entity.Role
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, entity.Unavailable("scan user count", err)
		}
		counts[role] = count
	}
	if err := rows.Err(); err != nil {
		return nil, entity.Unavailable("iterate user counts", err)
	}
	return counts, nil
}

func (r *userRepository) DeleteWithRegistrations(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return entity.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	var organized int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE organizer_id = $1`, id).Scan(&organized)
	if err != nil {
		return entity.Unavailable("check user events", err)
	}
	if organized > 0 {
		return entity.ErrUserHasEvents
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps WHERE actor_id = $1`, id); err != nil {
		return entity.Unavailable("delete user rsvps", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM volunteers WHERE actor_id = $1`, id); err != nil {
		return entity.Unavailable("delete user volunteering", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return entity.Unavailable("delete user", err)
	}
	if err := expectAffected(result, entity.ErrUserNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return entity.Unavailable("commit transaction", err)
	}
	return nil
}

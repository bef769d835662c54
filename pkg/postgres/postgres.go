package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/eventsphere/config"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host": cfg.Host,
		"db":   cfg.DBName,
	}).Info("Successfully connected to PostgreSQL")
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'PARTICIPANT',
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category VARCHAR(32) NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		registration_deadline TIMESTAMPTZ,
		organizer_id TEXT NOT NULL,
		max_participants INTEGER,
		participation_mode VARCHAR(20) NOT NULL DEFAULT 'INDIVIDUAL',
		group_size INTEGER,
		requires_approval BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS rsvps (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL REFERENCES events(id),
		actor_id TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		responded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		notes TEXT NOT NULL DEFAULT '',
		team_name VARCHAR(255),
		team_size INTEGER,
		UNIQUE (event_id, actor_id)
	)`,

	`CREATE TABLE IF NOT EXISTS volunteers (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL REFERENCES events(id),
		actor_id TEXT NOT NULL,
		role_description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE (event_id, actor_id)
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_events_end_time ON events(end_time)`,
	`CREATE INDEX IF NOT EXISTS idx_events_organizer_id ON events(organizer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvps_event_status ON rsvps(event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvps_actor_id ON rsvps(actor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_volunteers_event_status ON volunteers(event_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_volunteers_actor_id ON volunteers(actor_id)`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pauljones0/rental-board/internal/models"
)

const pgUniqueViolation = "23505"

// Postgres keeps the transition log in a single table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := &Postgres{pool: pool}
	if err := store.ensureSchema(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transitions (
			id TEXT PRIMARY KEY,
			listing_id TEXT NOT NULL,
			action TEXT NOT NULL,
			manager_email TEXT NOT NULL DEFAULT '',
			endpoint TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			requested_at TIMESTAMPTZ NOT NULL,
			duration_nanos BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_manager ON transitions(manager_email, requested_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) RecordTransition(ctx context.Context, t models.Transition) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO transitions (id, listing_id, action, manager_email, endpoint, outcome, error, requested_at, duration_nanos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.ListingID, string(t.Action), t.ManagerEmail, t.Endpoint, t.Outcome, t.Error,
		t.RequestedAt, int64(t.Duration))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.ErrTransitionExists
		}
		return fmt.Errorf("insert transition %s: %w", t.ID, err)
	}
	return nil
}

func (p *Postgres) RecentTransitions(ctx context.Context, email string, limit int) ([]models.Transition, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, listing_id, action, manager_email, endpoint, outcome, error, requested_at, duration_nanos
		FROM transitions
		WHERE manager_email = $1
		ORDER BY requested_at DESC
		LIMIT $2`, email, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanTransition)
	if err != nil {
		return nil, fmt.Errorf("scan transitions: %w", err)
	}
	return out, nil
}

func (p *Postgres) TrimOldTransitions(ctx context.Context, maxTransitions int) error {
	_, err := p.pool.Exec(ctx, `
		DELETE FROM transitions
		WHERE id IN (
			SELECT id FROM transitions
			ORDER BY requested_at DESC
			OFFSET $1
		)`, maxTransitions)
	if err != nil {
		return fmt.Errorf("trim transitions: %w", err)
	}
	return nil
}

func scanTransition(row pgx.CollectableRow) (models.Transition, error) {
	var (
		t        models.Transition
		action   string
		duration int64
	)
	err := row.Scan(&t.ID, &t.ListingID, &action, &t.ManagerEmail, &t.Endpoint, &t.Outcome, &t.Error,
		&t.RequestedAt, &duration)
	t.Action = models.Status(action)
	t.Duration = time.Duration(duration)
	return t, err
}

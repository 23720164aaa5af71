package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mdhub/pkg/metrics"
)

type Repository interface {
	Latest(ctx context.Context) (*Status, error)
	Insert(ctx context.Context, status *Status) error
	History(ctx context.Context, limit int) ([]Status, error)
	MasterdataPaused(ctx context.Context) (bool, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

// Latest returns the newest status row. When the table is empty the hub has
// never been paused, so the zero-value status (everything running) applies.
func (r *PostgresRepository) Latest(ctx context.Context) (*Status, error) {
	query := `
		SELECT id, paused_events, paused_masterdata, updated_by, created_at
		FROM queue_status
		ORDER BY id DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query)

	var status Status
	err := row.Scan(
		&status.ID, &status.PausedEvents, &status.PausedMasterdata,
		&status.UpdatedBy, &status.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return &Status{}, nil
	}
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("queue_status_latest", "error").Inc()
		return nil, fmt.Errorf("failed to get queue status: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("queue_status_latest", "ok").Inc()
	return &status, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, status *Status) error {
	query := `
		INSERT INTO queue_status (paused_events, paused_masterdata, updated_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		status.PausedEvents, status.PausedMasterdata, status.UpdatedBy,
	).Scan(&status.ID, &status.CreatedAt)
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("queue_status_insert", "error").Inc()
		return fmt.Errorf("failed to insert queue status: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("queue_status_insert", "ok").Inc()
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, limit int) ([]Status, error) {
	query := `
		SELECT id, paused_events, paused_masterdata, updated_by, created_at
		FROM queue_status
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("queue_status_history", "error").Inc()
		return nil, fmt.Errorf("failed to list queue status history: %w", err)
	}
	defer rows.Close()

	history := make([]Status, 0)
	for rows.Next() {
		var status Status
		if err := rows.Scan(
			&status.ID, &status.PausedEvents, &status.PausedMasterdata,
			&status.UpdatedBy, &status.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan queue status: %w", err)
		}
		history = append(history, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue status history: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("queue_status_history", "ok").Inc()
	return history, nil
}

func (r *PostgresRepository) MasterdataPaused(ctx context.Context) (bool, error) {
	status, err := r.Latest(ctx)
	if err != nil {
		return false, err
	}
	return status.PausedMasterdata, nil
}

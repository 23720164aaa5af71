package ingestion

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "mdhub/pkg/errors"
	"mdhub/pkg/metrics"
)

type Repository interface {
	Insert(ctx context.Context, record *MasterdataRecord) error
	GetByID(ctx context.Context, id string) (*MasterdataRecord, error)
	MarkStatus(ctx context.Context, masterdataID, status string) error
	InsertDestination(ctx context.Context, dest *Destination) error
	ListDestinations(ctx context.Context, masterdataID string) ([]Destination, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, record *MasterdataRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	flat, err := json.Marshal(record.FlatDocument)
	if err != nil {
		return fmt.Errorf("failed to encode flat document: %w", err)
	}

	query := `
		INSERT INTO masterdata_records
			(id, received_at, client_id, organization_id, source, status, tree_document, flat_document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.ReceivedAt, record.ClientID, record.OrganizationID,
		record.Source, record.Status, record.TreeDocument, flat,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("record_insert", "error").Inc()
		return fmt.Errorf("failed to insert record: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("record_insert", "ok").Inc()
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*MasterdataRecord, error) {
	query := `
		SELECT id, received_at, client_id, organization_id, source, status, tree_document, flat_document, created_at, updated_at
		FROM masterdata_records
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var record MasterdataRecord
	var flat []byte
	err := row.Scan(
		&record.ID, &record.ReceivedAt, &record.ClientID, &record.OrganizationID,
		&record.Source, &record.Status, &record.TreeDocument, &flat,
		&record.CreatedAt, &record.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("masterdata record %s not found", id))
	}
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("record_get", "error").Inc()
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal(flat, &record.FlatDocument); err != nil {
		return nil, fmt.Errorf("failed to decode flat document: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("record_get", "ok").Inc()
	return &record, nil
}

func (r *PostgresRepository) MarkStatus(ctx context.Context, masterdataID, status string) error {
	query := `
		UPDATE masterdata_records
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, masterdataID, status)
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("record_mark_status", "error").Inc()
		return fmt.Errorf("failed to update record status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("masterdata record %s not found", masterdataID))
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("record_mark_status", "ok").Inc()
	return nil
}

func (r *PostgresRepository) InsertDestination(ctx context.Context, dest *Destination) error {
	query := `
		INSERT INTO masterdata_destinations (masterdata_id, name, status, response)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		dest.MasterdataID, dest.Name, dest.Status, dest.Response,
	).Scan(&dest.ID, &dest.CreatedAt)
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("destination_insert", "error").Inc()
		return fmt.Errorf("failed to insert destination: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("destination_insert", "ok").Inc()
	return nil
}

func (r *PostgresRepository) ListDestinations(ctx context.Context, masterdataID string) ([]Destination, error) {
	query := `
		SELECT id, masterdata_id, name, status, response, created_at
		FROM masterdata_destinations
		WHERE masterdata_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, masterdataID)
	if err != nil {
		metrics.DatabaseQueriesTotal.WithLabelValues("destination_list", "error").Inc()
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}
	defer rows.Close()

	destinations := make([]Destination, 0)
	for rows.Next() {
		var dest Destination
		if err := rows.Scan(
			&dest.ID, &dest.MasterdataID, &dest.Name, &dest.Status,
			&dest.Response, &dest.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan destination: %w", err)
		}
		destinations = append(destinations, dest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate destinations: %w", err)
	}

	metrics.DatabaseQueriesTotal.WithLabelValues("destination_list", "ok").Inc()
	return destinations, nil
}

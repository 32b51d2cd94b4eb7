package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingestion_store.go -package=mocks nexlify-ingest/internal/storage IngestionStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// IngestionStore defines the interface for ingestion history operations.
type IngestionStore interface {
	// Record persists one completed ingestion run.
	Record(ctx context.Context, run *IngestionRun) error
	// ListRecent returns the most recent runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]IngestionRun, error)
}

// HistoryRepo provides methods for ingestion history operations.
// It implements the IngestionStore interface.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Record persists one completed ingestion run. A missing ID is filled in
// with a fresh UUID.
func (r *HistoryRepo) Record(ctx context.Context, run *IngestionRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingestion_runs (id, source, label, collection, points, created_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		run.ID, run.Source, run.Label, run.Collection, run.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}

	return nil
}

// ListRecent returns the most recent ingestion runs, newest first.
func (r *HistoryRepo) ListRecent(ctx context.Context, limit int) ([]IngestionRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, label, collection, points, created_at
		 FROM ingestion_runs ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingestion runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []IngestionRun
	for rows.Next() {
		var run IngestionRun
		var createdAtStr string
		if err := rows.Scan(&run.ID, &run.Source, &run.Label, &run.Collection, &run.Points, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", err)
		}

		run.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			// SQLite may store the timestamp in RFC3339 form instead.
			run.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
			}
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingestion runs: %w", err)
	}

	return runs, nil
}

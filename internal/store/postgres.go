package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"surveypulse/api/internal/survey"
)

// PostgresStore keeps bundle and snapshot history in Postgres. Every save is
// an insert; reads return the newest row for the key.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveBundle(ctx context.Context, collectorID string, bundle survey.RawDataBundle) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO raw_bundles (collector_id, bundle)
		VALUES ($1, $2)
	`, collectorID, payload)
	if err != nil {
		return fmt.Errorf("insert bundle: %w", err)
	}
	return nil
}

// LatestBundle returns the newest cached bundle for the collector, or nil
// when none has been persisted yet.
func (s *PostgresStore) LatestBundle(ctx context.Context, collectorID string) (*survey.RawDataBundle, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT bundle FROM raw_bundles
		WHERE collector_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, collectorID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var bundle survey.RawDataBundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return &bundle, nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, surveyID string, snapshot survey.DashboardData) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_snapshots (survey_id, snapshot)
		VALUES ($1, $2)
	`, surveyID, payload)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest dashboard snapshot for the survey, or
// nil when none exists.
func (s *PostgresStore) LatestSnapshot(ctx context.Context, surveyID string) (*survey.DashboardData, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT snapshot FROM dashboard_snapshots
		WHERE survey_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, surveyID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot survey.DashboardData
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

package tracks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/WarrenDz/scrolly-story-animations/pkg/model"
)

// ErrNotFound is returned when a track does not exist.
var ErrNotFound = errors.New("track not found")

// Track is the metadata for one stored track.
type Track struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Source  string    `json:"source,omitempty"`
	Created time.Time `json:"created"`
}

// Store is the track repository interface.
type Store interface {
	SaveTrack(ctx context.Context, t Track) error
	Track(ctx context.Context, id string) (*Track, error)
	ListTracks(ctx context.Context) ([]Track, error)
	AddObservations(ctx context.Context, obs []model.Observation) error
	// ObservationsInWindow returns observations in [start, end] ascending by
	// time. Zero bounds are open; limit <= 0 means no limit.
	ObservationsInWindow(ctx context.Context, trackID string, start, end time.Time, limit int) ([]model.Observation, error)
	// Density summarizes observations into H3 cells at the given resolution.
	Density(ctx context.Context, trackID string, start, end time.Time, resolution int) ([]CellCount, error)

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTrack inserts or replaces track metadata.
func (s *SQLiteStore) SaveTrack(ctx context.Context, t Track) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracks (id, title, source) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, source = excluded.source`,
		t.ID, t.Title, t.Source)
	if err != nil {
		return fmt.Errorf("failed to save track %s: %w", t.ID, err)
	}
	return nil
}

// Track returns a single track's metadata.
func (s *SQLiteStore) Track(ctx context.Context, id string) (*Track, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, source, created_at FROM tracks WHERE id = ?`, id)

	var t Track
	if err := row.Scan(&t.ID, &t.Title, &t.Source, &t.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load track %s: %w", id, err)
	}
	return &t, nil
}

// ListTracks returns all track metadata ordered by id.
func (s *SQLiteStore) ListTracks(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source, created_at FROM tracks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Source, &t.Created); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AddObservations appends observations in one transaction.
func (s *SQLiteStore) AddObservations(ctx context.Context, obs []model.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (track_id, ts, lat, lon, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.TrackID, o.Time.UTC().UnixMilli(), o.Lat, o.Lon, o.Value); err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}
	return tx.Commit()
}

// ObservationsInWindow implements Store.
func (s *SQLiteStore) ObservationsInWindow(ctx context.Context, trackID string, start, end time.Time, limit int) ([]model.Observation, error) {
	q := `SELECT track_id, ts, lat, lon, value FROM observations WHERE track_id = ?`
	args := []any{trackID}

	if !start.IsZero() {
		q += ` AND ts >= ?`
		args = append(args, start.UTC().UnixMilli())
	}
	if !end.IsZero() {
		q += ` AND ts <= ?`
		args = append(args, end.UTC().UnixMilli())
	}
	q += ` ORDER BY ts ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		var ms int64
		var value sql.NullFloat64
		if err := rows.Scan(&o.TrackID, &ms, &o.Lat, &o.Lon, &value); err != nil {
			return nil, err
		}
		o.Time = time.UnixMilli(ms).UTC()
		o.Value = value.Float64
		out = append(out, o)
	}
	return out, rows.Err()
}

// Density implements Store.
func (s *SQLiteStore) Density(ctx context.Context, trackID string, start, end time.Time, resolution int) ([]CellCount, error) {
	obs, err := s.ObservationsInWindow(ctx, trackID, start, end, 0)
	if err != nil {
		return nil, err
	}
	return DensityCells(obs, resolution)
}

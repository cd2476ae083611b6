package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrSnapshotNotFound = errors.New("storage: snapshot not found")

// SnapshotRecord is a stored snapshot; Payload is the JSON document.
type SnapshotRecord struct {
	ID        string
	RunID     string
	Label     string
	Tick      uint64
	SimTime   float64
	CreatedAt time.Time
	Payload   json.RawMessage
}

type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Save stores v as JSON and returns the new snapshot id.
func (r *SnapshotRepository) Save(ctx context.Context, runID, label string, tick uint64, simTime float64, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("storage: marshal snapshot: %w", err)
	}
	id := uuid.NewString()
	query := `
		INSERT INTO snapshots (id, run_id, label, tick, sim_time, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, id, runID, label, int64(tick), simTime, r.now().UnixNano(), string(payload)); err != nil {
		return "", fmt.Errorf("storage: save snapshot: %w", err)
	}
	return id, nil
}

const snapshotColumns = `id, run_id, label, tick, sim_time, created_at, payload`

func (r *SnapshotRepository) Get(ctx context.Context, id string) (SnapshotRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	return scanSnapshot(row)
}

// Latest returns the snapshot with the highest tick for runID.
func (r *SnapshotRepository) Latest(ctx context.Context, runID string) (SnapshotRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE run_id = ? ORDER BY tick DESC, created_at DESC LIMIT 1`, runID)
	return scanSnapshot(row)
}

// Load decodes the snapshot id into dst.
func (r *SnapshotRepository) Load(ctx context.Context, id string, dst any) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(rec.Payload, dst); err != nil {
		return fmt.Errorf("storage: decode snapshot %s: %w", id, err)
	}
	return nil
}

// List returns the snapshots of runID oldest first, without payloads.
func (r *SnapshotRepository) List(ctx context.Context, runID string) ([]SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, label, tick, sim_time, created_at, '' FROM snapshots WHERE run_id = ? ORDER BY tick ASC, created_at ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		rec.Payload = nil
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (SnapshotRecord, error) {
	var (
		rec     SnapshotRecord
		tick    int64
		created int64
		payload string
	)
	err := s.Scan(&rec.ID, &rec.RunID, &rec.Label, &tick, &rec.SimTime, &created, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotRecord{}, ErrSnapshotNotFound
	}
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("storage: scan snapshot: %w", err)
	}
	rec.Tick = uint64(tick)
	rec.CreatedAt = time.Unix(0, created)
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

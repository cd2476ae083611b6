package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/milk9111/nightwatch/ecs/system"
)

// JournalRepository appends encounter journal entries per run.
type JournalRepository struct {
	db  *sql.DB
	seq map[string]int64
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db, seq: make(map[string]int64)}
}

// Append writes entries in one transaction, keeping their order.
func (r *JournalRepository) Append(ctx context.Context, runID string, entries ...system.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	seq, err := r.nextSeq(ctx, runID)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin journal append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal (id, run_id, seq, tick, sim_time, source, kind, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage: prepare journal append: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		payload, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("storage: marshal journal entry: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), runID, seq, int64(e.Tick), e.Time, int64(e.Source), e.Kind, string(payload)); err != nil {
			return fmt.Errorf("storage: append journal entry: %w", err)
		}
		seq++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit journal append: %w", err)
	}
	r.seq[runID] = seq
	return nil
}

func (r *JournalRepository) nextSeq(ctx context.Context, runID string) (int64, error) {
	if seq, ok := r.seq[runID]; ok {
		return seq, nil
	}
	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM journal WHERE run_id = ?`, runID).Scan(&max); err != nil {
		return 0, fmt.Errorf("storage: journal sequence: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64 + 1, nil
}

func (r *JournalRepository) ByRun(ctx context.Context, runID string) ([]system.Entry, error) {
	return r.getMany(ctx, `SELECT tick, sim_time, source, kind, payload FROM journal WHERE run_id = ? ORDER BY seq ASC`, runID)
}

func (r *JournalRepository) ByKind(ctx context.Context, runID, kind string) ([]system.Entry, error) {
	return r.getMany(ctx, `SELECT tick, sim_time, source, kind, payload FROM journal WHERE run_id = ? AND kind = ? ORDER BY seq ASC`, runID, kind)
}

// CountByKind tallies entries of runID per kind.
func (r *JournalRepository) CountByKind(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM journal WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage: count journal: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

func (r *JournalRepository) getMany(ctx context.Context, query string, args ...any) ([]system.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query journal: %w", err)
	}
	defer rows.Close()

	var out []system.Entry
	for rows.Next() {
		var (
			e       system.Entry
			tick    int64
			source  int64
			payload string
		)
		if err := rows.Scan(&tick, &e.Time, &source, &e.Kind, &payload); err != nil {
			return nil, err
		}
		e.Tick, e.Source = uint64(tick), uint64(source)
		if payload != "null" {
			if err := json.Unmarshal([]byte(payload), &e.Data); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Package draft is the local draft store: rows the user is composing for a
// job that the backend has not confirmed yet. Drafts live in memory and are
// written through to the desk database wholesale on every mutation, so a
// restart does not lose in-progress work. Storage trouble is never fatal;
// the store silently degrades to memory-only for the session.
package draft

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
)

// Store holds draft rows per (jobKey, kind).
type Store struct {
	db *sqlite.DB

	mu    sync.RWMutex
	cache map[storeKey][]models.WorkItemRow
}

type storeKey struct {
	jobKey string
	kind   models.RowKind
}

// NewStore creates a draft store backed by the desk database. db may be nil,
// in which case drafts are memory-only.
func NewStore(db *sqlite.DB) *Store {
	return &Store{db: db, cache: make(map[storeKey][]models.WorkItemRow)}
}

// Load returns the draft rows for a job. Missing or unreadable persisted
// state counts as "no drafts yet", never as an error.
func (s *Store) Load(ctx context.Context, jobKey string, kind models.RowKind) []models.WorkItemRow {
	key := storeKey{jobKey: jobKey, kind: kind}

	s.mu.RLock()
	rows, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return copyRows(rows)
	}

	rows = s.loadPersisted(ctx, key)
	s.mu.Lock()
	s.cache[key] = rows
	s.mu.Unlock()
	return copyRows(rows)
}

// Save replaces the draft rows for a job and persists them wholesale.
// Persistence failures are logged and swallowed.
func (s *Store) Save(ctx context.Context, jobKey string, kind models.RowKind, rows []models.WorkItemRow) {
	key := storeKey{jobKey: jobKey, kind: kind}

	s.mu.Lock()
	s.cache[key] = copyRows(rows)
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		slog.Error("marshal drafts failed", slog.String("job_key", jobKey), slog.Any("err", err))
		return
	}
	err = s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		rec := &models.DraftRecord{
			JobKey:    jobKey,
			Kind:      string(kind),
			Rows:      string(data),
			UpdatedAt: time.Now(),
		}
		_, err := tx.NewInsert().Model(rec).
			On("CONFLICT (job_key, kind) DO UPDATE").
			Set("rows = EXCLUDED.rows").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		slog.Error("persist drafts failed", slog.String("job_key", jobKey), slog.Any("err", err))
	}
}

// Replace swaps the in-memory rows without touching persisted state. The
// submit flow uses it to hold the server-returned authoritative rows while
// the persisted drafts are cleared.
func (s *Store) Replace(jobKey string, kind models.RowKind, rows []models.WorkItemRow) {
	s.mu.Lock()
	s.cache[storeKey{jobKey: jobKey, kind: kind}] = copyRows(rows)
	s.mu.Unlock()
}

// Clear drops the drafts for a job, in memory and on disk. Called after a
// successful submit.
func (s *Store) Clear(ctx context.Context, jobKey string, kind models.RowKind) {
	key := storeKey{jobKey: jobKey, kind: kind}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.DraftRecord)(nil)).
			Where("job_key = ?", jobKey).
			Where("kind = ?", string(kind)).
			Exec(ctx)
		return err
	})
	if err != nil {
		slog.Error("clear persisted drafts failed", slog.String("job_key", jobKey), slog.Any("err", err))
	}
}

func (s *Store) loadPersisted(ctx context.Context, key storeKey) []models.WorkItemRow {
	if s.db == nil {
		return nil
	}
	var rec models.DraftRecord
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rec).
			Where("job_key = ?", key.jobKey).
			Where("kind = ?", string(key.kind)).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		// sql.ErrNoRows and real storage errors alike mean "no drafts yet".
		return nil
	}
	var rows []models.WorkItemRow
	if err := json.Unmarshal([]byte(rec.Rows), &rows); err != nil {
		slog.Warn("corrupt persisted drafts treated as empty", slog.String("job_key", key.jobKey), slog.Any("err", err))
		return nil
	}
	return rows
}

// AddRow appends a draft row. The caller must already have assigned the id
// via reconcile.NextID.
func AddRow(rows []models.WorkItemRow, newRow models.WorkItemRow) []models.WorkItemRow {
	out := copyRows(rows)
	return append(out, newRow)
}

// RemoveRow filters out the row with the given id.
func RemoveRow(rows []models.WorkItemRow, id int64) []models.WorkItemRow {
	out := make([]models.WorkItemRow, 0, len(rows))
	for _, r := range rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// UpdateRow replaces the matching row immutably via apply. An unmatched id
// is a no-op, not an error.
func UpdateRow(rows []models.WorkItemRow, id int64, apply func(models.WorkItemRow) models.WorkItemRow) []models.WorkItemRow {
	out := copyRows(rows)
	for i, r := range out {
		if r.ID == id {
			out[i] = apply(r)
			break
		}
	}
	return out
}

func copyRows(rows []models.WorkItemRow) []models.WorkItemRow {
	out := make([]models.WorkItemRow, len(rows))
	copy(out, rows)
	return out
}

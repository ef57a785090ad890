// Package worksession ties one job's two row sources together: the remote
// row cache of server-confirmed rows and the local draft store. It owns the
// guarded add-row precheck, the submit/reconcile flow and the derived parent
// status push.
package worksession

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"garagedesk/infrastructure/audit"
	"garagedesk/infrastructure/draft"
	"garagedesk/infrastructure/rowcache"
	"garagedesk/models"
	"garagedesk/reconcile"
)

var (
	// ErrAddInProgress signals that an add-row precheck is still in flight;
	// the caller should tell the user to wait rather than queue the action.
	ErrAddInProgress = errors.New("still adding a row, please wait")

	// ErrSubmitInFlight rejects a second submit for the same job while one
	// is outstanding.
	ErrSubmitInFlight = errors.New("a submit for this job is already in flight")

	// ErrNoDrafts rejects a submit with nothing to send.
	ErrNoDrafts = errors.New("no draft rows to submit")
)

// Backend is the slice of the garage API one session needs. The work order
// and spare screens plug in different endpoint sets behind it.
type Backend interface {
	// Precheck fetches the authoritative confirmed rows before a new draft
	// id is assigned, so rows added by another desk are seen.
	Precheck(ctx context.Context, jobKey string) ([]models.WorkItemRow, error)
	// Fetch reads the confirmed rows for the polling refresh. Work orders
	// serve it from the lighter per-job endpoint; Precheck stays on the
	// search endpoint.
	Fetch(ctx context.Context, jobKey string) ([]models.WorkItemRow, error)
	Submit(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error)
	Update(ctx context.Context, id int64, row models.WorkItemRow) error
	Delete(ctx context.Context, id int64) error
	PushStatus(ctx context.Context, repairID int64, status string) error
}

// Session coordinates drafts, cache and backend for one job card and row
// kind.
type Session struct {
	jobKey string
	kind   models.RowKind
	be     Backend
	cache  *rowcache.Cache
	drafts *draft.Store
	audit  *audit.Service
	notify func(jobKey, kind string)

	mu         sync.Mutex
	card       models.JobCard
	addingRow  bool
	submitting bool
	submitGen  uint64
	editingID  int64
	lastPushed string
}

// New creates a session. audit and notify may be nil.
func New(card models.JobCard, kind models.RowKind, be Backend, cache *rowcache.Cache, drafts *draft.Store, auditSvc *audit.Service, notify func(jobKey, kind string)) *Session {
	return &Session{
		jobKey: card.JobCardNo,
		card:   card,
		kind:   kind,
		be:     be,
		cache:  cache,
		drafts: drafts,
		audit:  auditSvc,
		notify: notify,
	}
}

// JobKey returns the job card number the session is scoped to. It never
// changes after creation.
func (s *Session) JobKey() string { return s.jobKey }

// Card returns the parent job card fields sent with every submit.
func (s *Session) Card() models.JobCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card
}

// setCard refreshes the parent card fields. The job card number is the
// session's identity and stays fixed.
func (s *Session) setCard(card models.JobCard) {
	s.mu.Lock()
	card.JobCardNo = s.jobKey
	s.card = card
	s.mu.Unlock()
}

// Rows returns the current merge view: confirmed rows first, drafts after.
func (s *Session) Rows(ctx context.Context) []reconcile.MergedRow {
	remote := s.cache.Rows(s.jobKey)
	local := s.drafts.Load(ctx, s.jobKey, s.kind)
	return reconcile.Merge(remote, local)
}

// Summary carries the derived aggregates rendered under the table.
type Summary struct {
	Histogram       map[string]int
	AverageProgress int
	ParentStatus    string
	Total           int
}

// Summarize recomputes the aggregates from the merge view.
func (s *Session) Summarize(ctx context.Context) Summary {
	rows := s.Rows(ctx)
	hist := reconcile.StatusHistogram(rows)
	return Summary{
		Histogram:       hist,
		AverageProgress: reconcile.AverageProgress(rows),
		ParentStatus:    reconcile.DeriveParentStatus(hist, len(rows)),
		Total:           len(rows),
	}
}

// RefreshRemote fetches the confirmed rows and applies them unless a submit
// is in flight or completed while the fetch was out; a poll response that
// raced a submit is stale and must not overwrite the reconciled state. The
// cache keeps its previous value on fetch failure.
func (s *Session) RefreshRemote(ctx context.Context) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil
	}
	gen := s.submitGen
	s.mu.Unlock()

	rows, err := s.be.Fetch(ctx, s.jobKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	stale := s.submitting || gen != s.submitGen
	s.mu.Unlock()
	if stale {
		return nil
	}

	s.cache.Replace(s.jobKey, rows)
	s.pushParentStatus(ctx)
	s.notifyChanged()
	return nil
}

// AddRow assigns a collision-free id to newRow and appends it to the
// drafts. The backend precheck is authoritative; when it fails the cached
// rows serve as the offline fallback. Concurrent adds and adds during a
// submit are rejected with ErrAddInProgress.
func (s *Session) AddRow(ctx context.Context, newRow models.WorkItemRow) (models.WorkItemRow, error) {
	s.mu.Lock()
	if s.addingRow || s.submitting {
		s.mu.Unlock()
		return models.WorkItemRow{}, ErrAddInProgress
	}
	s.addingRow = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.addingRow = false
		s.mu.Unlock()
	}()

	remote, err := s.be.Precheck(ctx, s.jobKey)
	if err != nil {
		slog.Warn("add-row precheck failed, using cached rows",
			slog.String("job_key", s.jobKey), slog.Any("err", err))
		remote = s.cache.Rows(s.jobKey)
	} else {
		s.cache.Replace(s.jobKey, remote)
	}

	local := s.drafts.Load(ctx, s.jobKey, s.kind)
	newRow.ID = reconcile.NextID(remote, local)
	newRow.JobCardNo = s.jobKey

	s.drafts.Save(ctx, s.jobKey, s.kind, draft.AddRow(local, newRow))
	s.notifyChanged()
	return newRow, nil
}

// UpdateDraft applies an edit to one draft row. An unmatched id is a no-op.
func (s *Session) UpdateDraft(ctx context.Context, id int64, apply func(models.WorkItemRow) models.WorkItemRow) {
	local := s.drafts.Load(ctx, s.jobKey, s.kind)
	s.drafts.Save(ctx, s.jobKey, s.kind, draft.UpdateRow(local, id, apply))
	s.notifyChanged()
}

// RemoveDraft discards one draft row locally. No network call is involved.
func (s *Session) RemoveDraft(ctx context.Context, id int64) {
	local := s.drafts.Load(ctx, s.jobKey, s.kind)
	s.drafts.Save(ctx, s.jobKey, s.kind, draft.RemoveRow(local, id))
	s.notifyChanged()
}

// Drafts returns the current draft rows.
func (s *Session) Drafts(ctx context.Context) []models.WorkItemRow {
	return s.drafts.Load(ctx, s.jobKey, s.kind)
}

// SetEditing selects the single confirmed row allowed in edit mode; id 0
// leaves edit mode.
func (s *Session) SetEditing(id int64) {
	s.mu.Lock()
	s.editingID = id
	s.mu.Unlock()
}

// Editing returns the active edit-mode row id.
func (s *Session) Editing() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// Submit posts the full draft sequence to the backend. On success the
// server-returned authoritative rows are appended to the cache, the draft
// store holds those same rows in memory, and the persisted drafts are
// cleared. On failure the drafts are left untouched so no work is lost.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	s.submitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	drafts := s.drafts.Load(ctx, s.jobKey, s.kind)
	if len(drafts) == 0 {
		return ErrNoDrafts
	}

	returned, err := s.be.Submit(ctx, s.Card(), drafts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.submitGen++
	s.mu.Unlock()

	s.cache.Append(s.jobKey, returned)
	s.drafts.Clear(ctx, s.jobKey, s.kind)
	s.drafts.Replace(s.jobKey, s.kind, returned)

	if s.audit != nil {
		s.audit.Record(ctx, "submit", string(s.kind), s.jobKey, drafts, returned)
	}
	s.pushParentStatus(ctx)
	s.notifyChanged()
	return nil
}

// UpdateConfirmed edits one confirmed row, confirm-then-apply: the cache is
// only touched after the backend accepts the update.
func (s *Session) UpdateConfirmed(ctx context.Context, row models.WorkItemRow) error {
	if err := s.be.Update(ctx, row.ID, row); err != nil {
		return err
	}

	remote := s.cache.Rows(s.jobKey)
	for i := range remote {
		if remote[i].ID == row.ID {
			remote[i] = row
		}
	}
	s.cache.Replace(s.jobKey, remote)

	s.SetEditing(0)
	s.pushParentStatus(ctx)
	s.notifyChanged()
	return nil
}

// DeleteConfirmed removes one confirmed row, confirm-then-apply: the row
// stays visible until the backend acknowledges the delete.
func (s *Session) DeleteConfirmed(ctx context.Context, id int64) error {
	if err := s.be.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Remove(s.jobKey, id)
	if s.audit != nil {
		s.audit.Record(ctx, "delete", string(s.kind), s.jobKey, id, nil)
	}
	s.pushParentStatus(ctx)
	s.notifyChanged()
	return nil
}

// pushParentStatus sends the derived parent status upstream when it changed
// since the last push. A job with no rows yet pushes nothing; opening the
// screen must not overwrite the status the backend already holds. Push
// failures are logged; the next cache change tries again.
func (s *Session) pushParentStatus(ctx context.Context) {
	card := s.Card()
	if card.ID <= 0 || s.kind != models.KindWorkDetail {
		return
	}

	sum := s.Summarize(ctx)
	if sum.Total == 0 {
		return
	}

	s.mu.Lock()
	unchanged := sum.ParentStatus == s.lastPushed
	s.mu.Unlock()
	if unchanged {
		return
	}

	if err := s.be.PushStatus(ctx, card.ID, sum.ParentStatus); err != nil {
		slog.Error("push parent status failed",
			slog.String("job_key", s.jobKey),
			slog.String("status", sum.ParentStatus),
			slog.Any("err", err))
		return
	}

	s.mu.Lock()
	s.lastPushed = sum.ParentStatus
	s.mu.Unlock()
	if s.audit != nil {
		s.audit.Record(ctx, "status_push", "repair", s.jobKey, nil, sum.ParentStatus)
	}
}

func (s *Session) notifyChanged() {
	if s.notify != nil {
		s.notify(s.jobKey, string(s.kind))
	}
}

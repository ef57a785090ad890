package worksession

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"garagedesk/infrastructure/draft"
	"garagedesk/infrastructure/rowcache"
	"garagedesk/infrastructure/sqlite"
	"garagedesk/models"
	"garagedesk/reconcile"
)

type fakeBackend struct {
	mu sync.Mutex

	precheckFn func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error)
	fetchFn    func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error)
	submitFn   func(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error)
	updateFn   func(ctx context.Context, id int64, row models.WorkItemRow) error
	deleteFn   func(ctx context.Context, id int64) error

	pushedStatuses []string
	pushErr        error
}

func (f *fakeBackend) Precheck(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
	if f.precheckFn != nil {
		return f.precheckFn(ctx, jobKey)
	}
	return nil, nil
}

func (f *fakeBackend) Fetch(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, jobKey)
	}
	return nil, nil
}

func (f *fakeBackend) Submit(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, card, rows)
	}
	return rows, nil
}

func (f *fakeBackend) Update(ctx context.Context, id int64, row models.WorkItemRow) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, row)
	}
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeBackend) PushStatus(ctx context.Context, repairID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushedStatuses = append(f.pushedStatuses, status)
	return nil
}

func (f *fakeBackend) pushed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.pushedStatuses))
	copy(out, f.pushedStatuses)
	return out
}

func testCard() models.JobCard {
	return models.JobCard{
		ID:           5,
		JobCardNo:    "JC-1001",
		PlateNumber:  "AA-12345",
		CustomerName: "T. Bekele",
	}
}

func newTestSession(be Backend) *Session {
	return New(testCard(), models.KindWorkDetail, be, rowcache.New(), draft.NewStore(nil), nil, nil)
}

func progressPtr(v int) *int { return &v }

func TestAddRowUsesAuthoritativePrecheck(t *testing.T) {
	be := &fakeBackend{
		precheckFn: func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
			return []models.WorkItemRow{{ID: 1}, {ID: 2}}, nil
		},
	}
	s := newTestSession(be)

	row, err := s.AddRow(context.Background(), models.WorkItemRow{Description: "oil change"})
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if row.ID != 3 {
		t.Fatalf("expected id 3 from precheck, got %d", row.ID)
	}
	if row.JobCardNo != "JC-1001" {
		t.Fatalf("row not bound to job card: %q", row.JobCardNo)
	}
	// The precheck response doubles as a cache refresh.
	if got := len(s.cache.Rows("JC-1001")); got != 2 {
		t.Fatalf("precheck should refresh cache, got %d rows", got)
	}
}

func TestAddRowFallsBackToCacheOffline(t *testing.T) {
	be := &fakeBackend{
		precheckFn: func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
			return nil, errors.New("backend unreachable")
		},
	}
	s := newTestSession(be)
	s.cache.Replace("JC-1001", []models.WorkItemRow{{ID: 7}})

	row, err := s.AddRow(context.Background(), models.WorkItemRow{})
	if err != nil {
		t.Fatalf("add row offline: %v", err)
	}
	if row.ID != 8 {
		t.Fatalf("expected fallback id 8, got %d", row.ID)
	}
}

func TestAddRowRejectedWhileAdding(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	be := &fakeBackend{
		precheckFn: func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	s := newTestSession(be)

	done := make(chan error, 1)
	go func() {
		_, err := s.AddRow(context.Background(), models.WorkItemRow{})
		done <- err
	}()

	<-started
	if _, err := s.AddRow(context.Background(), models.WorkItemRow{}); !errors.Is(err, ErrAddInProgress) {
		t.Fatalf("expected ErrAddInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first add row: %v", err)
	}
}

func TestSubmitReconcilesAndClearsPersistedDrafts(t *testing.T) {
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "session-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	returned := []models.WorkItemRow{{ID: 3, JobCardNo: "JC-1001", Status: "started", Progress: progressPtr(40)}}
	be := &fakeBackend{
		submitFn: func(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
			if card.JobCardNo != "JC-1001" || len(rows) != 1 {
				t.Errorf("unexpected submit payload: %+v %+v", card, rows)
			}
			return returned, nil
		},
	}
	drafts := draft.NewStore(db)
	s := New(testCard(), models.KindWorkDetail, be, rowcache.New(), drafts, nil, nil)

	ctx := context.Background()
	drafts.Save(ctx, "JC-1001", models.KindWorkDetail, []models.WorkItemRow{{ID: 3, Status: "started", Progress: progressPtr(40)}})

	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The draft store now holds exactly the server-returned sequence.
	if got := s.Drafts(ctx); !reflect.DeepEqual(got, returned) {
		t.Fatalf("drafts after submit:\n got %+v\nwant %+v", got, returned)
	}
	// The cache gained the confirmed rows.
	if got := s.cache.Rows("JC-1001"); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("cache after submit: %+v", got)
	}
	// Persisted drafts are gone; a reload starts clean.
	var count int64
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM draft_rows WHERE job_key = 'JC-1001'`).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count persisted drafts: %v", err)
	}
	if count != 0 {
		t.Fatalf("persisted drafts not cleared, found %d", count)
	}
	// The merge view shows each id exactly once.
	rows := s.Rows(ctx)
	if len(rows) != 1 || rows[0].Origin != reconcile.OriginRemote {
		t.Fatalf("merge view after submit: %+v", rows)
	}
}

func TestSubmitFailureRetainsDrafts(t *testing.T) {
	be := &fakeBackend{
		submitFn: func(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
			return nil, errors.New("server rejected")
		},
	}
	s := newTestSession(be)
	ctx := context.Background()

	before := []models.WorkItemRow{{ID: 1, Description: "brakes"}}
	s.drafts.Save(ctx, "JC-1001", models.KindWorkDetail, before)

	if err := s.Submit(ctx); err == nil {
		t.Fatal("expected submit error")
	}
	if got := s.Drafts(ctx); !reflect.DeepEqual(got, before) {
		t.Fatalf("drafts changed on failed submit: %+v", got)
	}
}

func TestSubmitWithNoDrafts(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	if err := s.Submit(context.Background()); !errors.Is(err, ErrNoDrafts) {
		t.Fatalf("expected ErrNoDrafts, got %v", err)
	}
}

func TestConcurrentSubmitRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	be := &fakeBackend{
		submitFn: func(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
			close(started)
			<-release
			return rows, nil
		},
	}
	s := newTestSession(be)
	ctx := context.Background()
	s.drafts.Save(ctx, "JC-1001", models.KindWorkDetail, []models.WorkItemRow{{ID: 1}})

	done := make(chan error, 1)
	go func() { done <- s.Submit(ctx) }()

	<-started
	if err := s.Submit(ctx); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	// An add during the submit is rejected too.
	if _, err := s.AddRow(ctx, models.WorkItemRow{}); !errors.Is(err, ErrAddInProgress) {
		t.Fatalf("expected ErrAddInProgress during submit, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestStalePollResponseDiscardedAfterSubmit(t *testing.T) {
	fetchStarted := make(chan struct{})
	releaseFetch := make(chan struct{})
	be := &fakeBackend{
		fetchFn: func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
			close(fetchStarted)
			<-releaseFetch
			// Pre-submit server state: the new row is missing.
			return []models.WorkItemRow{{ID: 1}}, nil
		},
	}
	s := newTestSession(be)
	ctx := context.Background()
	s.cache.Replace("JC-1001", []models.WorkItemRow{{ID: 1}})

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- s.RefreshRemote(ctx) }()
	<-fetchStarted

	// A submit completes while the poll fetch is still out.
	s.drafts.Save(ctx, "JC-1001", models.KindWorkDetail, []models.WorkItemRow{{ID: 2}})
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	close(releaseFetch)
	if err := <-refreshDone; err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// The stale poll must not have erased the submitted row.
	rows := s.cache.Rows("JC-1001")
	if len(rows) != 2 {
		t.Fatalf("stale poll overwrote reconciled cache: %+v", rows)
	}
}

func TestRefreshFailureLeavesCacheUntouched(t *testing.T) {
	fetchErr := errors.New("backend unreachable")
	failing := true
	be := &fakeBackend{
		fetchFn: func(context.Context, string) ([]models.WorkItemRow, error) {
			if failing {
				return nil, fetchErr
			}
			return []models.WorkItemRow{{ID: 1}, {ID: 2}}, nil
		},
	}
	s := newTestSession(be)
	ctx := context.Background()

	before := []models.WorkItemRow{{ID: 1, Status: models.StatusStarted, Progress: progressPtr(30)}}
	s.cache.Replace("JC-1001", before)

	if err := s.RefreshRemote(ctx); !errors.Is(err, fetchErr) {
		t.Fatalf("refresh error = %v, want %v", err, fetchErr)
	}
	if got := s.cache.Rows("JC-1001"); !reflect.DeepEqual(got, before) {
		t.Fatalf("failed refresh changed cache:\n got %+v\nwant %+v", got, before)
	}

	// The next successful poll recovers.
	failing = false
	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("refresh after recovery: %v", err)
	}
	if got := s.cache.Rows("JC-1001"); len(got) != 2 {
		t.Fatalf("cache not updated after recovery: %+v", got)
	}
}

func TestDeleteIsConfirmThenApply(t *testing.T) {
	be := &fakeBackend{
		deleteFn: func(ctx context.Context, id int64) error {
			return errors.New("backend down")
		},
	}
	s := newTestSession(be)
	s.cache.Replace("JC-1001", []models.WorkItemRow{{ID: 1}, {ID: 2}})

	if err := s.DeleteConfirmed(context.Background(), 2); err == nil {
		t.Fatal("expected delete error")
	}
	if got := s.cache.Rows("JC-1001"); len(got) != 2 {
		t.Fatalf("row removed before server confirmation: %+v", got)
	}

	be.deleteFn = nil
	if err := s.DeleteConfirmed(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.cache.Rows("JC-1001"); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("row not removed after confirmation: %+v", got)
	}
}

func TestParentStatusPushedOnlyOnChange(t *testing.T) {
	be := &fakeBackend{}
	s := newTestSession(be)
	ctx := context.Background()

	be.fetchFn = func(context.Context, string) ([]models.WorkItemRow, error) {
		return []models.WorkItemRow{{ID: 1, Status: models.StatusStarted}}, nil
	}
	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := be.pushed(); len(got) != 1 || got[0] != models.StatusStarted {
		t.Fatalf("pushed statuses = %v", got)
	}

	// Same derived status again: no duplicate push.
	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if got := be.pushed(); len(got) != 1 {
		t.Fatalf("duplicate status push: %v", got)
	}

	be.fetchFn = func(context.Context, string) ([]models.WorkItemRow, error) {
		return []models.WorkItemRow{{ID: 1, Status: models.StatusCompleted}}, nil
	}
	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("third refresh: %v", err)
	}
	if got := be.pushed(); len(got) != 2 || got[1] != models.StatusCompleted {
		t.Fatalf("pushed statuses = %v", got)
	}
}

func TestEmptyJobPushesNoStatus(t *testing.T) {
	be := &fakeBackend{}
	s := newTestSession(be)
	ctx := context.Background()

	// Opening a job that has no rows yet must not overwrite the status
	// the backend already holds.
	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := be.pushed(); len(got) != 0 {
		t.Fatalf("empty job pushed a status: %v", got)
	}

	// The first refresh that actually returns rows pushes normally.
	be.fetchFn = func(context.Context, string) ([]models.WorkItemRow, error) {
		return []models.WorkItemRow{{ID: 1, Status: models.StatusStarted}}, nil
	}
	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("refresh with rows: %v", err)
	}
	if got := be.pushed(); len(got) != 1 || got[0] != models.StatusStarted {
		t.Fatalf("pushed statuses = %v", got)
	}
}

func TestUpdateConfirmedAppliesAfterServerAck(t *testing.T) {
	var updated models.WorkItemRow
	be := &fakeBackend{
		updateFn: func(ctx context.Context, id int64, row models.WorkItemRow) error {
			updated = row
			return nil
		},
	}
	s := newTestSession(be)
	s.cache.Replace("JC-1001", []models.WorkItemRow{{ID: 1, Status: models.StatusNotStarted}})
	s.SetEditing(1)

	row := models.WorkItemRow{ID: 1, Status: models.StatusStarted}
	if err := s.UpdateConfirmed(context.Background(), row); err != nil {
		t.Fatalf("update confirmed: %v", err)
	}
	if updated.ID != 1 {
		t.Fatalf("backend update not called: %+v", updated)
	}
	if got := s.cache.Rows("JC-1001"); got[0].Status != models.StatusStarted {
		t.Fatalf("cache not updated: %+v", got)
	}
	if s.Editing() != 0 {
		t.Fatalf("edit mode not cleared, editing=%d", s.Editing())
	}
}

// A full desk pass over one job card: two confirmed rows, a drafted third,
// a submit, and the aggregates land on 47% average with a "started" parent.
func TestWorkedScenario(t *testing.T) {
	confirmed := []models.WorkItemRow{
		{ID: 1, Status: models.StatusCompleted, Progress: progressPtr(100)},
		{ID: 2, Status: models.StatusPending, Progress: progressPtr(0)},
	}
	be := &fakeBackend{
		precheckFn: func(context.Context, string) ([]models.WorkItemRow, error) {
			return confirmed, nil
		},
		fetchFn: func(context.Context, string) ([]models.WorkItemRow, error) {
			return confirmed, nil
		},
		submitFn: func(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
			return rows, nil
		},
	}
	s := newTestSession(be)
	ctx := context.Background()

	if err := s.RefreshRemote(ctx); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	row, err := s.AddRow(ctx, models.WorkItemRow{Description: "timing belt"})
	if err != nil {
		t.Fatalf("add row: %v", err)
	}
	if row.ID != 3 {
		t.Fatalf("next id = %d, want 3", row.ID)
	}

	s.UpdateDraft(ctx, row.ID, func(r models.WorkItemRow) models.WorkItemRow {
		r.Status = models.StatusStarted
		r.Progress = progressPtr(40)
		return r
	})
	if err := s.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rows := s.Rows(ctx)
	if len(rows) != 3 {
		t.Fatalf("merge view rows = %d, want 3", len(rows))
	}
	sum := s.Summarize(ctx)
	if sum.AverageProgress != 47 {
		t.Fatalf("average progress = %d, want 47", sum.AverageProgress)
	}
	if sum.ParentStatus != models.StatusStarted {
		t.Fatalf("parent status = %q, want started", sum.ParentStatus)
	}
}

func TestManagerReusesSessionsAndPolls(t *testing.T) {
	var fetches sync.Map
	be := &fakeBackend{
		fetchFn: func(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
			fetches.Store(jobKey, true)
			return nil, nil
		},
	}
	m := NewManager(models.KindWorkDetail, be, rowcache.New(), draft.NewStore(nil), nil, nil)

	s1 := m.Session(models.JobCard{JobCardNo: "JC-1"})
	s2 := m.Session(models.JobCard{JobCardNo: "JC-1", CustomerName: "renamed"})
	if s1 != s2 {
		t.Fatal("manager created a second session for the same job")
	}
	if s2.Card().CustomerName != "renamed" {
		t.Fatalf("card fields not refreshed: %+v", s2.Card())
	}
	m.Session(models.JobCard{JobCardNo: "JC-2"})

	m.RefreshAll(context.Background())
	for _, key := range []string{"JC-1", "JC-2"} {
		if _, ok := fetches.Load(key); !ok {
			t.Fatalf("job %s not refreshed", key)
		}
	}

	if _, ok := m.Lookup("JC-1"); !ok {
		t.Fatal("lookup missed existing session")
	}
	if _, ok := m.Lookup("JC-none"); ok {
		t.Fatal("lookup invented a session")
	}

	// Run stops when the context does.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx, rowcache.IntervalDriver{Every: 5 * time.Millisecond})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager poll loop did not stop")
	}
}

// Card refreshes from list handlers run concurrently with the poll loop
// and with read paths. Exercised under the race detector.
func TestConcurrentCardRefreshAndReads(t *testing.T) {
	be := &fakeBackend{
		fetchFn: func(context.Context, string) ([]models.WorkItemRow, error) {
			return []models.WorkItemRow{{ID: 1, Status: models.StatusStarted}}, nil
		},
	}
	m := NewManager(models.KindWorkDetail, be, rowcache.New(), draft.NewStore(nil), nil, nil)
	s := m.Session(testCard())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				card := testCard()
				card.CustomerName = "visitor"
				card.RepairCategory = "engine"
				m.Session(card)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			if err := s.RefreshRemote(ctx); err != nil {
				t.Errorf("refresh: %v", err)
				return
			}
			_ = s.Rows(ctx)
			_ = s.Summarize(ctx)
			if got := s.Card().JobCardNo; got != "JC-1001" {
				t.Errorf("card lost its job key: %q", got)
				return
			}
		}
	}()
	wg.Wait()

	if s.JobKey() != "JC-1001" {
		t.Fatalf("job key drifted: %q", s.JobKey())
	}
}

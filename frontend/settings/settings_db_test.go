package settings

import (
	"context"
	"path/filepath"
	"testing"

	"garagedesk/infrastructure/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "settings-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	defaults := DeskSettings{WorkOrderPollSeconds: 5, SparePollSeconds: 10, PushEnabled: true}

	got, err := Load(context.Background(), db, defaults)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != defaults {
		t.Fatalf("settings = %+v, want defaults %+v", got, defaults)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	saved := DeskSettings{WorkOrderPollSeconds: 15, SparePollSeconds: 30, PushEnabled: false}
	if err := Save(ctx, db, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(ctx, db, DeskSettings{WorkOrderPollSeconds: 5, SparePollSeconds: 10, PushEnabled: true})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != saved {
		t.Fatalf("settings = %+v, want %+v", got, saved)
	}

	// Overwrite wins.
	saved.WorkOrderPollSeconds = 20
	if err := Save(ctx, db, saved); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	got, err = Load(ctx, db, DeskSettings{})
	if err != nil || got.WorkOrderPollSeconds != 20 {
		t.Fatalf("after overwrite: %+v err %v", got, err)
	}
}

func TestLoadNilDBFallsBackToDefaults(t *testing.T) {
	defaults := DeskSettings{WorkOrderPollSeconds: 5, SparePollSeconds: 10}
	got, err := Load(context.Background(), nil, defaults)
	if err != nil || got != defaults {
		t.Fatalf("nil db: %+v err %v", got, err)
	}
}

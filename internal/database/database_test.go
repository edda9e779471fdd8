package database

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertRun(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertRun(&Run{
		RunDate:            "2016-10-20",
		Lang:               "nl",
		UpdatedDays:        []string{"2016-10-20", "2016-10-21"},
		Summary:            "Robot: bijwerken (20-21 okt)",
		DescriptionChanged: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero run ID")
	}
}

func TestGetLastRun(t *testing.T) {
	db := openTestDB(t)

	run, err := db.GetLastRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run on empty db, got %+v", run)
	}

	db.InsertRun(&Run{RunDate: "2016-10-20", Lang: "nl"})
	db.InsertRun(&Run{
		RunDate:       "2016-10-21",
		Lang:          "pap",
		UpdatedDays:   []string{"2016-11-18"},
		Summary:       "Bot: aktualisá (18 nov)",
		ImagesChanged: true,
		Purged:        true,
	})

	run, err = db.GetLastRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run == nil {
		t.Fatal("expected a run")
	}
	if run.Lang != "pap" || run.RunDate != "2016-10-21" {
		t.Errorf("expected the pap run of 2016-10-21, got %s %s", run.Lang, run.RunDate)
	}
	if diff := cmp.Diff([]string{"2016-11-18"}, run.UpdatedDays); diff != "" {
		t.Errorf("UpdatedDays mismatch (-want +got):\n%s", diff)
	}
	if !run.Saved() || !run.Purged || run.DescriptionChanged {
		t.Errorf("unexpected flags: %+v", run)
	}
	if run.CreatedAt == nil {
		t.Error("expected created_at to be set")
	}
}

func TestGetRecentRuns(t *testing.T) {
	db := openTestDB(t)
	for _, d := range []string{"2016-10-18", "2016-10-19", "2016-10-20"} {
		if _, err := db.InsertRun(&Run{RunDate: d, Lang: "nl"}); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}

	runs, err := db.GetRecentRuns(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunDate != "2016-10-20" || runs[1].RunDate != "2016-10-19" {
		t.Errorf("expected newest first, got %s, %s", runs[0].RunDate, runs[1].RunDate)
	}
	if runs[0].UpdatedDays == nil || len(runs[0].UpdatedDays) != 0 {
		t.Errorf("expected empty UpdatedDays, got %#v", runs[0].UpdatedDays)
	}
	if runs[0].Saved() {
		t.Error("expected run without changes to report Saved() = false")
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalRuns != 0 || stats.LastRunDate != "" {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	db.InsertRun(&Run{RunDate: "2016-10-20", Lang: "nl"})
	db.InsertRun(&Run{
		RunDate:            "2016-10-21",
		Lang:               "nl",
		UpdatedDays:        []string{"2016-10-21", "2016-10-22", "2016-11-19"},
		DescriptionChanged: true,
		ImagesChanged:      true,
		Purged:             true,
	})

	stats, err = db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Stats{
		TotalRuns:   2,
		SavedRuns:   1,
		DaysUpdated: 3,
		Purges:      1,
		LastRunDate: "2016-10-21",
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("GetStats mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "potdrotate.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}

	var mode string
	if err := db.conn.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

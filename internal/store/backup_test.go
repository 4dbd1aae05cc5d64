package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/steveyegge/stickies/internal/schema"
)

func TestBackupDaily(t *testing.T) {
	s := newTestStore(t)
	seedNote(t, s, "Groceries", schema.ColorYellow, "milk")

	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	path, err := s.BackupDaily(day, 5)
	if err != nil {
		t.Fatalf("BackupDaily() error: %v", err)
	}
	if filepath.Base(path) != "stickies-2026-03-14.json" {
		t.Errorf("backup name = %q", filepath.Base(path))
	}

	// The backup is a readable board file.
	board, err := schema.ReadBoardFile(path)
	if err != nil {
		t.Fatalf("backup not readable: %v", err)
	}
	if len(board.Notes) != 1 || board.Notes[0].Title != "Groceries" {
		t.Errorf("backup contents = %+v", board.Notes)
	}

	// Same day again: no new backup.
	path, err = s.BackupDaily(day.Add(2*time.Hour), 5)
	if err != nil {
		t.Fatalf("BackupDaily() error: %v", err)
	}
	if path != "" {
		t.Errorf("second backup on the same day wrote %q", path)
	}

	// Next day: a new backup.
	path, err = s.BackupDaily(day.AddDate(0, 0, 1), 5)
	if err != nil {
		t.Fatalf("BackupDaily() error: %v", err)
	}
	if filepath.Base(path) != "stickies-2026-03-15.json" {
		t.Errorf("next-day backup name = %q", filepath.Base(path))
	}
}

func TestBackupNow_Overwrites(t *testing.T) {
	s := newTestStore(t)
	seedNote(t, s, "First", schema.ColorYellow)

	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if _, err := s.BackupNow(day, 5); err != nil {
		t.Fatalf("BackupNow() error: %v", err)
	}

	if err := s.RenameNote(0, "Second"); err != nil {
		t.Fatalf("RenameNote() error: %v", err)
	}
	path, err := s.BackupNow(day, 5)
	if err != nil {
		t.Fatalf("BackupNow() error: %v", err)
	}
	if path == "" {
		t.Fatal("BackupNow() should always write")
	}

	board, err := schema.ReadBoardFile(path)
	if err != nil {
		t.Fatalf("backup not readable: %v", err)
	}
	if board.Notes[0].Title != "Second" {
		t.Errorf("backup not overwritten: %q", board.Notes[0].Title)
	}
}

func TestBackupRetention(t *testing.T) {
	s := newTestStore(t)
	seedNote(t, s, "Note", schema.ColorYellow)

	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		if _, err := s.BackupDaily(day.AddDate(0, 0, i), 3); err != nil {
			t.Fatalf("BackupDaily() day %d error: %v", i, err)
		}
	}

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups() error: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("got %d backups after pruning, want 3", len(backups))
	}

	// Newest first, and the survivors are the three most recent days.
	want := []string{
		"stickies-2026-03-06.json",
		"stickies-2026-03-05.json",
		"stickies-2026-03-04.json",
	}
	for i, path := range backups {
		if filepath.Base(path) != want[i] {
			t.Errorf("backup %d = %q, want %q", i, filepath.Base(path), want[i])
		}
	}
}

func TestBackups_NoFolder(t *testing.T) {
	s := newTestStore(t)

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups() error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("got %d backups from a missing folder", len(backups))
	}
}

func TestBackups_IgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)
	seedNote(t, s, "Note", schema.ColorYellow)

	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if _, err := s.BackupDaily(day, 5); err != nil {
		t.Fatalf("BackupDaily() error: %v", err)
	}

	// Drop an unrelated file into the backup folder.
	foreign := filepath.Join(s.BackupDir(), "readme.txt")
	if err := os.WriteFile(foreign, []byte("not a backup"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	backups, err := s.Backups()
	if err != nil {
		t.Fatalf("Backups() error: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("got %d backups, want 1 (foreign file listed)", len(backups))
	}
}

package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/steveyegge/stickies/internal/schema"
)

const (
	backupDirName = "backups"
	backupPrefix  = "stickies-"
	backupSuffix  = ".json"
	backupDate    = "2006-01-02"
)

// DefaultBackupKeep is the default backup retention count.
const DefaultBackupKeep = 14

// BackupDir returns the folder where backups are written.
func (s *Store) BackupDir() string {
	return filepath.Join(filepath.Dir(s.config.Path), backupDirName)
}

// backupPath returns the backup file name for a given day.
func (s *Store) backupPath(day time.Time) string {
	return filepath.Join(s.BackupDir(), backupPrefix+day.Format(backupDate)+backupSuffix)
}

// BackupDaily writes today's backup if it does not already exist, then
// prunes old backups down to keep files. It returns the path of the
// backup it wrote, or "" when today's backup was already present.
func (s *Store) BackupDaily(now time.Time, keep int) (string, error) {
	path := s.backupPath(now)
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}
	if err := s.writeBackup(path); err != nil {
		return "", err
	}
	if err := s.pruneBackups(keep); err != nil {
		return "", err
	}
	return path, nil
}

// BackupNow force-writes a backup for the given day, overwriting any
// existing backup for that day.
func (s *Store) BackupNow(now time.Time, keep int) (string, error) {
	path := s.backupPath(now)
	if err := s.writeBackup(path); err != nil {
		return "", err
	}
	if err := s.pruneBackups(keep); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) writeBackup(path string) error {
	if err := os.MkdirAll(s.BackupDir(), 0755); err != nil {
		return fmt.Errorf("failed to create backup folder: %w", err)
	}

	s.mu.Lock()
	data, err := schema.MarshalBoard(s.board)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", path, err)
	}

	s.config.Logger.Printf("Backup written: %s", path)
	return nil
}

// Backups lists backup files, newest first. The date-stamped file names
// sort lexically, so no timestamps need to be parsed.
func (s *Store) Backups() ([]string, error) {
	entries, err := os.ReadDir(s.BackupDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup folder: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		names = append(names, name)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.BackupDir(), name)
	}
	return paths, nil
}

// pruneBackups removes all but the newest keep backups.
func (s *Store) pruneBackups(keep int) error {
	if keep <= 0 {
		keep = DefaultBackupKeep
	}

	backups, err := s.Backups()
	if err != nil {
		return err
	}

	for _, path := range backups[min(keep, len(backups)):] {
		if err := os.Remove(path); err != nil {
			s.config.Logger.Printf("Warning: failed to prune backup %s: %v", path, err)
			continue
		}
		s.config.Logger.Printf("Pruned backup: %s", path)
	}
	return nil
}

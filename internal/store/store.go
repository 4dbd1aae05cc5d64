// Package store manages the in-memory note board and its JSON file on
// disk: debounced autosave out, external-change detection and reload in.
//
// The store is the single writer for the board file. Writes are atomic
// (temp file + rename) so a crash or a cloud sync client mid-upload never
// observes a half-written file. After every save the store records the
// file's modification time; ExternallyModified compares the current
// modification time against that record, with a tolerance window, to
// infer that another process (usually the same app on another machine,
// via a sync folder) wrote the file.
package store

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/steveyegge/stickies/internal/schema"
)

// Config holds store configuration.
type Config struct {
	// Path is the board file location.
	Path string

	// Debounce is how long the board must be quiet after the last
	// mutation before autosave writes it out.
	Debounce time.Duration

	// ModTolerance is the slack allowed between the recorded own-write
	// modification time and the observed one before a change counts as
	// external. Cloud sync clients and FAT filesystems coarsen
	// timestamps, so exact comparison misfires.
	ModTolerance time.Duration

	// Logger for store activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults for the given board path.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		Debounce:     3 * time.Second,
		ModTolerance: 2 * time.Second,
		Logger:       log.New(os.Stderr, "[store] ", log.LstdFlags),
	}
}

// NoteRef identifies an open note by title and color. Notes have no
// stable identifiers, so this pair is all a client can hold across an
// external reload.
type NoteRef struct {
	Title string
	Color schema.Color
}

// Stats summarizes the board for display surfaces.
type Stats struct {
	Notes    int `json:"notes"`
	Items    int `json:"items"`
	Checked  int `json:"checked"`
	Critical int `json:"critical"`
}

// Mutation describes one applied board change. Note-level mutations
// carry Item == -1 and the note's title; item-level mutations carry the
// item's text.
type Mutation struct {
	Action string
	Note   int
	Item   int
	Title  string
	Text   string
	Color  schema.Color
}

// Store owns the board and serializes all access to it.
type Store struct {
	mu     sync.Mutex
	board  *schema.Board
	config *Config

	dirty     bool
	dirtyAt   time.Time // last mutation
	fileStamp time.Time // board file mtime at our last read or write

	observer func(Mutation)
}

// Open loads the board from cfg.Path, creating an empty board if the
// file does not exist yet.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 3 * time.Second
	}
	if cfg.ModTolerance <= 0 {
		cfg.ModTolerance = 2 * time.Second
	}

	s := &Store{config: cfg}

	board, stamp, err := readBoard(cfg.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		board = schema.NewBoard()
		cfg.Logger.Printf("No board file at %s, starting empty", cfg.Path)
	}
	s.board = board
	s.fileStamp = stamp

	return s, nil
}

func readBoard(path string) (*schema.Board, time.Time, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	board, err := schema.ReadBoardFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	return board, st.ModTime(), nil
}

// Path returns the board file location.
func (s *Store) Path() string {
	return s.config.Path
}

// Observe registers fn to be called after every applied mutation. The
// callback runs with the store lock held and must not call back into
// the store. A nil fn removes the observer.
func (s *Store) Observe(fn func(Mutation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// notifyLocked reports a mutation to the observer. Caller must hold s.mu.
func (s *Store) notifyLocked(m Mutation) {
	if s.observer != nil {
		s.observer(m)
	}
}

// Snapshot returns a deep copy of the current board.
func (s *Store) Snapshot() *schema.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Stats returns board-level counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Notes: len(s.board.Notes)}
	for i := range s.board.Notes {
		for _, it := range s.board.Notes[i].Items {
			stats.Items++
			if it.Checked && !it.Heading {
				stats.Checked++
			}
			if it.Critical && !it.Heading {
				stats.Critical++
			}
		}
	}
	return stats
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// markDirty records a mutation. Caller must hold s.mu.
func (s *Store) markDirty() {
	s.dirty = true
	s.dirtyAt = time.Now()
}

// Flush writes the board to disk if there are unsaved changes.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	return s.saveLocked()
}

// FlushIfQuiet writes the board only if it is dirty and the debounce
// interval has elapsed since the last mutation. It reports whether a
// save happened. The daemon calls this on a short ticker to implement
// throttled autosave.
func (s *Store) FlushIfQuiet() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return false, nil
	}
	if time.Since(s.dirtyAt) < s.config.Debounce {
		return false, nil
	}
	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// saveLocked writes the board atomically. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	s.board.SavedAt = time.Now().UTC()

	data, err := schema.MarshalBoard(s.board)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(s.config.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write board file %s: %w", s.config.Path, err)
	}

	st, err := os.Stat(s.config.Path)
	if err != nil {
		return fmt.Errorf("failed to stat board file after save: %w", err)
	}
	s.fileStamp = st.ModTime()
	s.dirty = false

	s.config.Logger.Printf("Saved %d notes to %s", len(s.board.Notes), s.config.Path)
	return nil
}

// ExternallyModified reports whether the board file on disk was written
// by someone other than this store. A missing file counts as modified
// only if we have seen the file before (it was deleted under us).
func (s *Store) ExternallyModified() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := os.Stat(s.config.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return !s.fileStamp.IsZero(), nil
		}
		return false, fmt.Errorf("failed to stat board file: %w", err)
	}

	diff := st.ModTime().Sub(s.fileStamp)
	if diff < 0 {
		diff = -diff
	}
	return diff > s.config.ModTolerance, nil
}

// Reload replaces the in-memory board with the file's contents.
// Unsaved local changes are discarded: reconciliation is last-writer-wins
// by design, there is no merging. A missing file reloads as an empty
// board.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, stamp, err := readBoard(s.config.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		board = schema.NewBoard()
		stamp = time.Time{}
	}

	if s.dirty {
		s.config.Logger.Printf("Warning: reload discarding unsaved local changes")
	}

	s.board = board
	s.fileStamp = stamp
	s.dirty = false

	s.config.Logger.Printf("Reloaded %d notes from %s", len(board.Notes), s.config.Path)
	return nil
}

// Rebind re-attaches open note references to the current board by
// title+color equality. Each board note satisfies at most one reference;
// ties go to the first unclaimed note in board order. The result holds,
// for each input reference, its new board index or -1 if no note matched.
func (s *Store) Rebind(refs []NoteRef) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	claimed := make([]bool, len(s.board.Notes))
	result := make([]int, len(refs))

	for i, ref := range refs {
		result[i] = -1
		for j := range s.board.Notes {
			if claimed[j] {
				continue
			}
			if s.board.Notes[j].Matches(ref.Title, ref.Color) {
				claimed[j] = true
				result[i] = j
				break
			}
		}
	}
	return result
}

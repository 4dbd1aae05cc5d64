// Package daemon keeps the note store and its file on disk in agreement.
//
// The daemon:
// 1. Flushes debounced autosaves from the store to disk
// 2. Watches the board file for external writes (fsnotify + polling fallback)
// 3. Reloads and rebinds open note references when an external write lands
// 4. Writes the daily backup and prunes old ones
// 5. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/steveyegge/stickies/internal/store"
)

// Config holds configuration for the daemon.
type Config struct {
	// FlushInterval is how often the store is offered a chance to
	// autosave. The store's own debounce decides whether it writes.
	FlushInterval time.Duration

	// DebounceInterval is how long to wait before acting on file
	// watcher events. Cloud sync clients write in bursts.
	DebounceInterval time.Duration

	// PollInterval is the stat-based fallback cadence for external
	// change detection. fsnotify misses events on network shares and
	// inside some cloud sync folders.
	PollInterval time.Duration

	// BackupInterval is how often the daily backup condition is checked.
	BackupInterval time.Duration

	// BackupKeep is how many backups to retain.
	BackupKeep int

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		FlushInterval:    500 * time.Millisecond,
		DebounceInterval: 1 * time.Second,
		PollInterval:     30 * time.Second,
		BackupInterval:   1 * time.Hour,
		BackupKeep:       store.DefaultBackupKeep,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates autosave, external change detection, and backups.
type Daemon struct {
	store  *store.Store
	config *Config
	events Events

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // filepath -> timestamp
	changeQueueMu sync.Mutex

	refsMu sync.Mutex
	refs   []store.NoteRef

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon for the given store.
//
// If events is nil, events are discarded. Use Start() to begin watching.
func New(st *store.Store, events Events) (*Daemon, error) {
	return NewWithConfig(st, events, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(st *store.Store, events Events, config *Config) (*Daemon, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if events == nil {
		events = NullEvents{}
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		store:       st,
		config:      config,
		events:      events,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// SetOpenRefs records which notes clients currently hold open. After an
// external reload the daemon rebinds them by title+color and reports the
// outcome through the Events sink.
func (d *Daemon) SetOpenRefs(refs []store.NoteRef) {
	d.refsMu.Lock()
	defer d.refsMu.Unlock()
	d.refs = append([]store.NoteRef(nil), refs...)
}

func (d *Daemon) openRefs() []store.NoteRef {
	d.refsMu.Lock()
	defer d.refsMu.Unlock()
	return append([]store.NoteRef(nil), d.refs...)
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Flush any pending local changes so watching starts from a clean file
// 2. Watch the board file's directory for changes
// 3. Poll the file as a fallback
// 4. Autosave and write daily backups on their schedules
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	// Pending local changes would be silently lost to the first
	// external reload; write them out before watching.
	if err := d.store.Flush(); err != nil {
		return fmt.Errorf("initial flush failed: %w", err)
	}

	watchDir := filepath.Dir(d.store.Path())
	if err := d.watcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch storage folder: %w", err)
	}
	d.config.Logger.Printf("Watching: %s", d.store.Path())

	d.wg.Add(5)
	go d.watchFileEvents()
	go d.processChangeQueue()
	go d.pollFile()
	go d.flushLoop()
	go d.backupLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon, flushing unsaved changes.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	if err := d.store.Flush(); err != nil {
		d.config.Logger.Printf("Error flushing on shutdown: %v", err)
		return err
	}

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	boardFile := filepath.Base(d.store.Path())

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			// Atomic replacement shows up as Create or Rename.
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			// Only the board file matters; backups and temp files share the folder.
			if filepath.Base(event.Name) != boardFile {
				continue
			}

			d.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

// processChangeQueue drains queued file changes once they settle.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	now := time.Now()
	settled := false
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		delete(d.changeQueue, path)
		settled = true
	}
	d.changeQueueMu.Unlock()

	if settled {
		d.checkExternal()
	}
}

// pollFile is the fallback detector for environments where fsnotify
// never fires.
func (d *Daemon) pollFile() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.checkExternal()
		}
	}
}

// checkExternal reloads the board if the file was modified by another
// process, then rebinds open note references.
func (d *Daemon) checkExternal() {
	modified, err := d.store.ExternallyModified()
	if err != nil {
		d.config.Logger.Printf("Error checking board file: %v", err)
		return
	}
	if !modified {
		return
	}

	d.config.Logger.Println("External modification detected, reloading")
	if err := d.store.Reload(); err != nil {
		d.config.Logger.Printf("Error reloading board: %v", err)
		return
	}

	d.events.BoardReloaded(d.store.Stats())

	refs := d.openRefs()
	if len(refs) == 0 {
		return
	}
	indexes := d.store.Rebind(refs)
	for i, idx := range indexes {
		if idx == -1 {
			d.config.Logger.Printf("Open note %q/%s has no match after reload", refs[i].Title, refs[i].Color)
		}
	}
	d.events.RefsRebound(refs, indexes)
}

// flushLoop offers the store a chance to autosave on a short cadence.
func (d *Daemon) flushLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			saved, err := d.store.FlushIfQuiet()
			if err != nil {
				d.config.Logger.Printf("Error autosaving: %v", err)
				continue
			}
			if saved {
				d.events.SaveComplete(d.store.Stats())
			}
		}
	}
}

// backupLoop writes the daily backup, once at startup and then on the
// backup check interval.
func (d *Daemon) backupLoop() {
	defer d.wg.Done()

	d.runBackup()

	ticker := time.NewTicker(d.config.BackupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.runBackup()
		}
	}
}

func (d *Daemon) runBackup() {
	path, err := d.store.BackupDaily(time.Now(), d.config.BackupKeep)
	if err != nil {
		d.config.Logger.Printf("Error writing backup: %v", err)
		return
	}
	if path != "" {
		d.events.BackupComplete(path)
	}
}

package daemon

import "github.com/steveyegge/stickies/internal/store"

// Events receives notifications about daemon activity. Implementations
// must not block; the daemon calls them from its worker goroutines.
type Events interface {
	// BoardReloaded fires after an external modification replaced the
	// in-memory board.
	BoardReloaded(stats store.Stats)

	// RefsRebound fires after open note references were re-matched
	// against a reloaded board. indexes[i] is the new board index of
	// refs[i], or -1 when the note could not be matched.
	RefsRebound(refs []store.NoteRef, indexes []int)

	// SaveComplete fires after a debounced autosave wrote the board.
	SaveComplete(stats store.Stats)

	// BackupComplete fires after a daily backup was written.
	BackupComplete(path string)
}

// NullEvents discards all events.
type NullEvents struct{}

func (NullEvents) BoardReloaded(store.Stats)          {}
func (NullEvents) RefsRebound([]store.NoteRef, []int) {}
func (NullEvents) SaveComplete(store.Stats)           {}
func (NullEvents) BackupComplete(string)              {}

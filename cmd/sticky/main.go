// Command sticky manages a board of sticky notes with checklists,
// stored as a JSON file in a cloud-synced folder.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/config"
	"github.com/steveyegge/stickies/internal/storage"
	"github.com/steveyegge/stickies/internal/store"
)

// version is set at build time via -ldflags.
var version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "sticky",
	Short: "Sticky notes with checklists, synced through your cloud folder",
	Long: `sticky manages a board of sticky notes, each holding a checklist.

The board is a single JSON file. Its folder is resolved automatically:
a custom folder from config wins, then Dropbox, then OneDrive, then the
local user config directory. Putting the board in a cloud-synced folder
syncs it between machines; the watch daemon picks up writes that arrive
from elsewhere.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddGroup(
		&cobra.Group{ID: "notes", Title: "Note commands:"},
		&cobra.Group{ID: "sync", Title: "Sync commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced commands:"},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads settings, resolves the storage folder, and opens the
// board.
func openStore() (*store.Store, *config.Settings, storage.Location) {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	loc, err := storage.Resolve(settings.StorageFolder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving storage folder: %v\n", err)
		os.Exit(1)
	}

	cfg := store.DefaultConfig(loc.StorePath())
	cfg.Debounce = settings.AutosaveDebounce
	cfg.ModTolerance = settings.ModTolerance
	cfg.Logger = config.NewLogger("store")

	st, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening board: %v\n", err)
		os.Exit(1)
	}
	return st, settings, loc
}

// flushOrDie writes pending changes. CLI commands are short-lived, so
// every mutation is followed by an explicit flush.
func flushOrDie(st *store.Store) {
	if err := st.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving board: %v\n", err)
		os.Exit(1)
	}
}

// resolveNote turns a note argument (index or title) into a board index.
func resolveNote(st *store.Store, arg string) (int, error) {
	board := st.Snapshot()

	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 0 || idx >= len(board.Notes) {
			return 0, fmt.Errorf("no note at index %d (board has %d)", idx, len(board.Notes))
		}
		return idx, nil
	}

	for i := range board.Notes {
		if board.Notes[i].Title == arg {
			return i, nil
		}
	}
	for i := range board.Notes {
		if strings.EqualFold(board.Notes[i].Title, arg) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no note titled %q", arg)
}

// parseIndex parses a numeric argument with a friendly error.
func parseIndex(arg, what string) (int, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", what, arg)
	}
	return idx, nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/config"
	"github.com/steveyegge/stickies/internal/daemon"
)

var watchLogFile bool

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "sync",
	Short:   "Watch the board for external changes and autosave",
	Long: `watch runs the sync daemon in the foreground. It autosaves the board
after mutations settle, picks up writes made from other machines through
the cloud-synced folder, and rotates a daily backup. Stop it with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, settings, loc := openStore()

		logger := config.NewLogger("daemon")
		if watchLogFile {
			var err error
			logger, err = config.NewFileLogger("daemon")
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
		}

		cfg := daemon.DefaultConfig()
		cfg.PollInterval = settings.PollInterval
		cfg.BackupKeep = settings.BackupKeep
		cfg.Logger = logger

		d, err := daemon.NewWithConfig(st, daemon.NullEvents{}, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (%s)\n", st.Path(), loc.Provider)
		fmt.Println("Press Ctrl-C to stop.")

		// Blocks until interrupted; the daemon flushes pending changes
		// on the way out.
		return d.Start(ctx)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchLogFile, "log-file", false, "log to the rotating app log instead of stderr")
	rootCmd.AddCommand(watchCmd)
}

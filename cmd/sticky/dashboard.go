package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/config"
	"github.com/steveyegge/stickies/internal/daemon"
	"github.com/steveyegge/stickies/internal/dashboard"
)

var dashboardPort int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "sync",
	Short:   "Serve live board events over WebSocket",
	Long: `dashboard runs the sync daemon and a WebSocket server side by side.
Connected clients receive board reloads, note and item updates, save and
backup notifications, and lost-note warnings as JSON messages on /ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, settings, _ := openStore()

		port := dashboardPort
		if port == 0 {
			port = settings.DashboardPort
		}

		srv := dashboard.NewServer(&dashboard.Config{
			Port:   port,
			Logger: config.NewLogger("dashboard"),
		})
		if err := srv.Start(); err != nil {
			return fmt.Errorf("starting dashboard: %w", err)
		}

		handler := dashboard.NewHandler(srv, config.NewLogger("dashboard"))
		handler.ObserveStore(st)

		cfg := daemon.DefaultConfig()
		cfg.PollInterval = settings.PollInterval
		cfg.BackupKeep = settings.BackupKeep
		cfg.Logger = config.NewLogger("daemon")

		d, err := daemon.NewWithConfig(st, handler, cfg)
		if err != nil {
			_ = srv.Stop()
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Dashboard listening on http://%s\n", srv.GetAddr())
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", srv.GetAddr())
		fmt.Println("Press Ctrl-C to stop.")

		// Blocks until interrupted; the daemon shuts down gracefully
		// before the server is torn down.
		err = d.Start(ctx)
		if stopErr := srv.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
		return err
	},
}

func init() {
	dashboardCmd.Flags().IntVarP(&dashboardPort, "port", "p", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(dashboardCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/config"
	"github.com/steveyegge/stickies/internal/update"
)

var (
	updateCheckOnly bool
	updateForce     bool
)

var updateCmd = &cobra.Command{
	Use:     "update",
	GroupID: "advanced",
	Short:   "Update sticky to the latest release",
	Long: `update checks GitHub for a newer release and replaces the running
binary with it. Check results are cached for a day; --force asks GitHub
again regardless. Running a prerelease build keeps you on the prerelease
channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		if settings.UpdateDisabled {
			return fmt.Errorf("updates are disabled in config (update.disabled)")
		}

		cacheDir, err := config.Dir()
		if err != nil {
			return err
		}

		cfg := update.DefaultConfig()
		cfg.Repo = settings.UpdateRepo
		cfg.CacheDir = cacheDir
		cfg.Logger = config.NewLogger("update")

		mgr := update.NewManager(cfg)
		info, err := mgr.Check(cmd.Context(), version, updateForce)
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}

		if !info.HasUpdate {
			fmt.Printf("sticky %s is up to date.\n", info.Current)
			return nil
		}

		fmt.Printf("Update available: %s -> %s\n", info.Current, info.Latest)
		if updateCheckOnly {
			return nil
		}

		if err := mgr.Install(cmd.Context(), info, os.Stdout); err != nil {
			return fmt.Errorf("installing %s: %w", info.Latest, err)
		}
		fmt.Printf("Updated to %s. Restart sticky to use it.\n", info.Latest)
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check-only", false, "report whether an update exists, do not install")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "bypass the cached check result")
	rootCmd.AddCommand(updateCmd)
}

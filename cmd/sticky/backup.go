package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:     "backup",
	GroupID: "sync",
	Short:   "Manage daily board backups",
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Write today's backup immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, settings, _ := openStore()
		path, err := st.BackupNow(time.Now(), settings.BackupKeep)
		if err != nil {
			return err
		}
		fmt.Printf("Backed up board to %s\n", path)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show existing backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		backups, err := st.Backups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups yet.")
			return nil
		}
		fmt.Printf("Backups in %s:\n", st.BackupDir())
		for _, b := range backups {
			fmt.Printf("  %s\n", filepath.Base(b))
		}
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupNowCmd, backupListCmd)
	rootCmd.AddCommand(backupCmd)
}

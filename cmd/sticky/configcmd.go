package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sticky version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sticky %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	},
}

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "advanced",
	Short:   "Inspect sticky's configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		fmt.Println(filepath.Join(dir, "config.yaml"))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(versionCmd, configCmd)
}

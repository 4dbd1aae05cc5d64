package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "advanced",
	Short:   "Write the board to stdout or a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		board := st.Snapshot()

		var data []byte
		var err error
		switch exportFormat {
		case "json":
			data, err = json.MarshalIndent(board, "", "  ")
			if err == nil {
				data = append(data, '\n')
			}
		case "yaml":
			data, err = yaml.Marshal(board)
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("encoding board: %w", err)
		}

		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOut, err)
		}
		fmt.Printf("Exported board to %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json or yaml)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

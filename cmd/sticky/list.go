package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/schema"
)

var listVerbose bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: "notes",
	Short:   "Show every note and its items",
	Run: func(cmd *cobra.Command, args []string) {
		st, _, _ := openStore()
		board := st.Snapshot()

		if len(board.Notes) == 0 {
			fmt.Println("Board is empty. Add a note with: sticky note add <title>")
			return
		}

		colored := termenv.EnvColorProfile() != termenv.Ascii
		for i, note := range board.Notes {
			printNote(i, note, colored)
			if i < len(board.Notes)-1 {
				fmt.Println()
			}
		}
	},
}

func printNote(idx int, note schema.Note, colored bool) {
	title := fmt.Sprintf(" %d  %s ", idx, note.Title)
	if colored {
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(note.Color.Hex())).
			Foreground(lipgloss.Color("#1A1A1A")).
			Bold(true)
		title = style.Render(title)
	}
	fmt.Println(title)

	for j, item := range note.Items {
		fmt.Println(renderItem(j, item, colored))
	}

	if listVerbose {
		total := 0
		for _, it := range note.Items {
			if !it.Heading {
				total++
			}
		}
		if total > 0 {
			fmt.Printf("    %d/%d done\n", note.CountChecked(), total)
		}
	}
}

func renderItem(idx int, item schema.NoteItem, colored bool) string {
	var line string
	switch {
	case item.Heading:
		line = fmt.Sprintf("    %d  ## %s", idx, item.Text)
		if colored {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
	case item.Checked:
		line = fmt.Sprintf("    %d  [x] %s", idx, item.Text)
		if colored {
			line = lipgloss.NewStyle().Faint(true).Render(line)
		}
	default:
		line = fmt.Sprintf("    %d  [ ] %s", idx, item.Text)
	}

	if item.Critical {
		mark := "!"
		if colored {
			mark = lipgloss.NewStyle().Foreground(lipgloss.Color("#E3484D")).Bold(true).Render("!")
		}
		line += " " + mark
	}
	if item.Attachment != "" {
		line += fmt.Sprintf("  (%s)", item.Attachment)
	}
	return line
}

var colorsCmd = &cobra.Command{
	Use:     "colors",
	GroupID: "notes",
	Short:   "Show the available note colors",
	Run: func(cmd *cobra.Command, args []string) {
		colored := termenv.EnvColorProfile() != termenv.Ascii
		for _, c := range schema.Palette() {
			if colored {
				swatch := lipgloss.NewStyle().
					Background(lipgloss.Color(c.Hex())).
					Render("      ")
				fmt.Printf("%s  %-7s %s\n", swatch, c, c.Hex())
			} else {
				fmt.Printf("%-7s %s\n", c, c.Hex())
			}
		}
	},
}

var infoCmd = &cobra.Command{
	Use:     "info",
	GroupID: "sync",
	Short:   "Show where the board lives and what it holds",
	Run: func(cmd *cobra.Command, args []string) {
		st, settings, loc := openStore()
		stats := st.Stats()

		fmt.Printf("Board file:  %s\n", st.Path())
		fmt.Printf("Provider:    %s\n", loc.Provider)
		fmt.Printf("Notes:       %d\n", stats.Notes)
		fmt.Printf("Items:       %d (%d checked, %d critical)\n", stats.Items, stats.Checked, stats.Critical)
		fmt.Printf("Backups:     %s\n", st.BackupDir())
		if settings.StorageFolder != "" {
			fmt.Println("Folder:      configured explicitly")
		}
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "show per-note completion counts")
	rootCmd.AddCommand(listCmd, colorsCmd, infoCmd)
}

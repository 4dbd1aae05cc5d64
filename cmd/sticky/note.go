package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/schema"
)

var noteCmd = &cobra.Command{
	Use:     "note",
	GroupID: "notes",
	Short:   "Create, remove, and rearrange notes",
}

var noteAddColor string

var noteAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(noteAddColor)
		if err != nil {
			return err
		}

		st, _, _ := openStore()
		idx, err := st.AddNote(args[0], color)
		if err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Added note %d: %s (%s)\n", idx, args[0], color)
		return nil
	},
}

var noteRmCmd = &cobra.Command{
	Use:     "rm <note>",
	Aliases: []string{"remove"},
	Short:   "Delete a note and everything on it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		idx, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		title := st.Snapshot().Notes[idx].Title
		if err := st.RemoveNote(idx); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Removed note: %s\n", title)
		return nil
	},
}

var noteColorCmd = &cobra.Command{
	Use:   "color <note> <color>",
	Short: "Change a note's background color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(args[1])
		if err != nil {
			return err
		}

		st, _, _ := openStore()
		idx, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		if err := st.RecolorNote(idx, color); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Note %d is now %s\n", idx, color)
		return nil
	},
}

var noteRenameCmd = &cobra.Command{
	Use:   "rename <note> <title>",
	Short: "Change a note's title",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		idx, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		if err := st.RenameNote(idx, args[1]); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Note %d renamed to: %s\n", idx, args[1])
		return nil
	},
}

var noteMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Reorder a note on the board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		from, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		to, err := parseIndex(args[1], "destination")
		if err != nil {
			return err
		}
		if err := st.MoveNote(from, to); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Moved note %d to position %d\n", from, to)
		return nil
	},
}

var noteResizeCmd = &cobra.Command{
	Use:   "resize <note> <width> <height>",
	Short: "Set a note's stored size",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		idx, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		w, err := parseIndex(args[1], "width")
		if err != nil {
			return err
		}
		h, err := parseIndex(args[2], "height")
		if err != nil {
			return err
		}
		if err := st.ResizeNote(idx, w, h); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Note %d resized to %dx%d\n", idx, w, h)
		return nil
	},
}

// parseColor resolves a color argument strictly. Unknown colors are an
// error here rather than silently normalizing to the default.
func parseColor(arg string) (schema.Color, error) {
	trimmed := strings.TrimSpace(arg)
	c := schema.Color(strings.ToLower(trimmed))
	if c.Valid() {
		return c, nil
	}
	for _, p := range schema.Palette() {
		if strings.EqualFold(trimmed, p.Hex()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown color %q (run \"sticky colors\" for the palette)", arg)
}

func init() {
	noteAddCmd.Flags().StringVarP(&noteAddColor, "color", "c", string(schema.DefaultColor), "note background color")

	noteCmd.AddCommand(noteAddCmd, noteRmCmd, noteColorCmd, noteRenameCmd, noteMoveCmd, noteResizeCmd)
	rootCmd.AddCommand(noteCmd)
}

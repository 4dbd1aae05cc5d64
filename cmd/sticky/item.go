package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/steveyegge/stickies/internal/schema"
	"github.com/steveyegge/stickies/internal/store"
)

var (
	addInteractive bool
	addCritical    bool
	addHeading     bool
)

var addCmd = &cobra.Command{
	Use:     "add <note> [text...]",
	GroupID: "notes",
	Short:   "Append an item to a note",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		idx, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}

		item := schema.NoteItem{
			Text:     strings.Join(args[1:], " "),
			Critical: addCritical,
			Heading:  addHeading,
		}

		if addInteractive {
			item, err = promptItem(st, idx)
			if err != nil {
				return err
			}
		} else if item.Text == "" {
			return fmt.Errorf("item text is required (or use --interactive)")
		}

		pos, err := st.AddItem(idx, item)
		if err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Added item %d to note %d\n", pos, idx)
		return nil
	},
}

// promptItem collects a new item through a form.
func promptItem(st *store.Store, note int) (schema.NoteItem, error) {
	var item schema.NoteItem
	title := st.Snapshot().Notes[note].Title

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("New item on %q", title)).
				Prompt("> ").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("text is required")
					}
					return nil
				}).
				Value(&item.Text),
			huh.NewConfirm().
				Title("Critical?").
				Value(&item.Critical),
			huh.NewConfirm().
				Title("Heading?").
				Value(&item.Heading),
		),
	)
	if err := form.Run(); err != nil {
		return schema.NoteItem{}, fmt.Errorf("prompt canceled: %w", err)
	}
	return item, nil
}

var checkCmd = &cobra.Command{
	Use:     "check <note> <item>",
	GroupID: "notes",
	Short:   "Mark an item as done",
	Args:    cobra.ExactArgs(2),
	RunE:    flagRunner("Checked", func(st *store.Store, n, i int) error { return st.SetChecked(n, i, true) }),
}

var uncheckCmd = &cobra.Command{
	Use:     "uncheck <note> <item>",
	GroupID: "notes",
	Short:   "Mark an item as not done",
	Args:    cobra.ExactArgs(2),
	RunE:    flagRunner("Unchecked", func(st *store.Store, n, i int) error { return st.SetChecked(n, i, false) }),
}

var criticalOff bool

var criticalCmd = &cobra.Command{
	Use:     "critical <note> <item>",
	GroupID: "notes",
	Short:   "Flag an item as critical (--off to clear)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		verb := "Flagged"
		if criticalOff {
			verb = "Unflagged"
		}
		return flagRunner(verb, func(st *store.Store, n, i int) error {
			return st.SetCritical(n, i, !criticalOff)
		})(cmd, args)
	},
}

var headingOff bool

var headingCmd = &cobra.Command{
	Use:     "heading <note> <item>",
	GroupID: "notes",
	Short:   "Turn an item into a section heading (--off to clear)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		verb := "Promoted"
		if headingOff {
			verb = "Demoted"
		}
		return flagRunner(verb, func(st *store.Store, n, i int) error {
			return st.SetHeading(n, i, !headingOff)
		})(cmd, args)
	},
}

// flagRunner builds a RunE for commands of the form <note> <item> that
// toggle a single item property.
func flagRunner(verb string, apply func(*store.Store, int, int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		note, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		item, err := parseIndex(args[1], "item")
		if err != nil {
			return err
		}
		if err := apply(st, note, item); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("%s item %d on note %d\n", verb, item, note)
		return nil
	}
}

var editCmd = &cobra.Command{
	Use:     "edit <note> <item> <text...>",
	GroupID: "notes",
	Short:   "Replace an item's text",
	Args:    cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		note, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		item, err := parseIndex(args[1], "item")
		if err != nil {
			return err
		}
		if err := st.EditItem(note, item, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Edited item %d on note %d\n", item, note)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <note> <item>",
	GroupID: "notes",
	Short:   "Delete an item from a note",
	Args:    cobra.ExactArgs(2),
	RunE:    flagRunner("Removed", func(st *store.Store, n, i int) error { return st.RemoveItem(n, i) }),
}

var moveToNote string

var moveCmd = &cobra.Command{
	Use:     "move <note> <item> <to>",
	GroupID: "notes",
	Short:   "Move an item within a note, or to another note with --to-note",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		note, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		item, err := parseIndex(args[1], "item")
		if err != nil {
			return err
		}
		to, err := parseIndex(args[2], "destination")
		if err != nil {
			return err
		}

		destNote := note
		if moveToNote != "" {
			destNote, err = resolveNote(st, moveToNote)
			if err != nil {
				return err
			}
		}

		if err := st.MoveItem(note, item, destNote, to); err != nil {
			return err
		}
		flushOrDie(st)
		if destNote == note {
			fmt.Printf("Moved item %d to position %d on note %d\n", item, to, note)
		} else {
			fmt.Printf("Moved item %d from note %d to note %d\n", item, note, destNote)
		}
		return nil
	},
}

var attachCmd = &cobra.Command{
	Use:     "attach <note> <item> <ref...>",
	GroupID: "notes",
	Short:   "Attach a file path or link to an item",
	Args:    cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _ := openStore()
		note, err := resolveNote(st, args[0])
		if err != nil {
			return err
		}
		item, err := parseIndex(args[1], "item")
		if err != nil {
			return err
		}
		if err := st.SetAttachment(note, item, strings.Join(args[2:], " ")); err != nil {
			return err
		}
		flushOrDie(st)
		fmt.Printf("Attached to item %d on note %d\n", item, note)
		return nil
	},
}

var detachCmd = &cobra.Command{
	Use:     "detach <note> <item>",
	GroupID: "notes",
	Short:   "Remove an item's attachment",
	Args:    cobra.ExactArgs(2),
	RunE:    flagRunner("Detached", func(st *store.Store, n, i int) error { return st.SetAttachment(n, i, "") }),
}

func init() {
	addCmd.Flags().BoolVarP(&addInteractive, "interactive", "i", false, "prompt for the item in a form")
	addCmd.Flags().BoolVar(&addCritical, "critical", false, "flag the new item as critical")
	addCmd.Flags().BoolVar(&addHeading, "heading", false, "add the item as a section heading")

	criticalCmd.Flags().BoolVar(&criticalOff, "off", false, "clear the flag instead of setting it")
	headingCmd.Flags().BoolVar(&headingOff, "off", false, "clear the flag instead of setting it")

	moveCmd.Flags().StringVar(&moveToNote, "to-note", "", "destination note (index or title)")

	rootCmd.AddCommand(addCmd, checkCmd, uncheckCmd, criticalCmd, headingCmd,
		editCmd, rmCmd, moveCmd, attachCmd, detachCmd)
}

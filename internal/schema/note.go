// Package schema provides the persisted data model for the sticky-note
// board: notes, checklist items, colors, and the JSON board file format.
package schema

import (
	"fmt"
	"strings"
)

// MaxTitleLen is the longest allowed note title.
const MaxTitleLen = 200

// NoteItem is a single checklist entry on a note.
//
// A heading item renders as a section separator; its checked and
// critical flags are ignored by clients but preserved on disk.
type NoteItem struct {
	Text       string `json:"text"`
	Checked    bool   `json:"checked,omitempty"`
	Critical   bool   `json:"critical,omitempty"`
	Heading    bool   `json:"heading,omitempty"`
	Attachment string `json:"attachment,omitempty"`
}

// Note is one sticky note: a titled, colored, ordered checklist.
// Width and Height are the note window's last size, persisted so
// rendering clients can restore it.
type Note struct {
	Title  string     `json:"title"`
	Color  Color      `json:"color"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`
	Items  []NoteItem `json:"items"`
}

// Validate checks the note's field values.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(n.Title) > MaxTitleLen {
		return fmt.Errorf("title must be %d characters or less (got %d)", MaxTitleLen, len(n.Title))
	}
	if !n.Color.Valid() {
		return fmt.Errorf("unknown color %q", n.Color)
	}
	if n.Width < 0 || n.Height < 0 {
		return fmt.Errorf("window size cannot be negative (got %dx%d)", n.Width, n.Height)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (n *Note) SetDefaults() {
	if n.Color == "" || !n.Color.Valid() {
		n.Color = NormalizeColor(string(n.Color))
	}
	if n.Items == nil {
		n.Items = []NoteItem{}
	}
}

// Matches reports whether the note matches a title+color pair.
// This is the equality used to re-attach open note references after
// an external reload; notes have no stable identifiers.
func (n *Note) Matches(title string, color Color) bool {
	return n.Title == title && n.Color == color
}

// CountChecked returns the number of checked, non-heading items.
func (n *Note) CountChecked() int {
	count := 0
	for _, it := range n.Items {
		if it.Checked && !it.Heading {
			count++
		}
	}
	return count
}

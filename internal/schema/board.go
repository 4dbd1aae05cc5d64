package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// FormatVersion is the current board file format version.
//
// Version 0 (implicit) was a bare top-level array of notes with items
// stored as plain strings. Version 1 wraps the notes in a Board envelope
// and stores items as structured objects.
const FormatVersion = 1

// Board is the persisted document: every note, in display order.
type Board struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Notes   []Note    `json:"notes"`
}

// NewBoard returns an empty board at the current format version.
func NewBoard() *Board {
	return &Board{
		Version: FormatVersion,
		Notes:   []Note{},
	}
}

// Validate checks every note on the board.
func (b *Board) Validate() error {
	if b.Version < 0 || b.Version > FormatVersion {
		return fmt.Errorf("unsupported format version %d", b.Version)
	}
	for i := range b.Notes {
		if err := b.Notes[i].Validate(); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}
	return nil
}

// SetDefaults applies defaults to the board and every note on it.
func (b *Board) SetDefaults() {
	if b.Notes == nil {
		b.Notes = []Note{}
	}
	for i := range b.Notes {
		b.Notes[i].SetDefaults()
	}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{
		Version: b.Version,
		SavedAt: b.SavedAt,
		Notes:   make([]Note, len(b.Notes)),
	}
	copy(out.Notes, b.Notes)
	for i := range out.Notes {
		items := make([]NoteItem, len(b.Notes[i].Items))
		copy(items, b.Notes[i].Items)
		out.Notes[i].Items = items
	}
	return out
}

// MarshalBoard encodes the board as pretty-printed JSON.
func MarshalBoard(b *Board) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadBoardFile reads and parses a board file from the given path.
//
// Legacy version-0 files (a bare JSON array of notes) are upgraded in
// memory; the caller's next save rewrites them in the current format.
func ReadBoardFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file %s: %w", path, err)
	}
	return ParseBoard(data, path)
}

// ParseBoard parses board file contents. The path is used only for
// error messages.
func ParseBoard(data []byte, path string) (*Board, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		board, err := parseLegacyBoard(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse legacy board file %s: %w", path, err)
		}
		return board, nil
	}

	var board Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("failed to parse board file %s: %w", path, err)
	}

	board.SetDefaults()
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board file %s: %w", path, err)
	}
	return &board, nil
}

// legacyNote is the version-0 on-disk note shape: hex color string and
// items as bare strings.
type legacyNote struct {
	Title  string   `json:"title"`
	Color  string   `json:"color"`
	Width  int      `json:"width,omitempty"`
	Height int      `json:"height,omitempty"`
	Items  []string `json:"items"`
}

func parseLegacyBoard(data []byte) (*Board, error) {
	var legacy []legacyNote
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}

	board := NewBoard()
	for _, ln := range legacy {
		title := ln.Title
		if strings.TrimSpace(title) == "" {
			// Version 0 allowed untitled notes.
			title = "Untitled"
		}
		note := Note{
			Title:  title,
			Color:  NormalizeColor(ln.Color),
			Width:  ln.Width,
			Height: ln.Height,
			Items:  make([]NoteItem, 0, len(ln.Items)),
		}
		for _, text := range ln.Items {
			note.Items = append(note.Items, NoteItem{Text: text})
		}
		board.Notes = append(board.Notes, note)
	}

	board.SetDefaults()
	if err := board.Validate(); err != nil {
		return nil, err
	}
	return board, nil
}

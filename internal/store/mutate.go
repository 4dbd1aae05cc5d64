package store

import (
	"fmt"

	"github.com/steveyegge/stickies/internal/schema"
)

// checkNote validates a note index. Caller must hold s.mu.
func (s *Store) checkNote(note int) error {
	if note < 0 || note >= len(s.board.Notes) {
		return fmt.Errorf("no note at index %d (board has %d)", note, len(s.board.Notes))
	}
	return nil
}

// checkItem validates a note+item index pair. Caller must hold s.mu.
func (s *Store) checkItem(note, item int) error {
	if err := s.checkNote(note); err != nil {
		return err
	}
	n := len(s.board.Notes[note].Items)
	if item < 0 || item >= n {
		return fmt.Errorf("no item at index %d on note %d (note has %d)", item, note, n)
	}
	return nil
}

// AddNote appends a new empty note and returns its index.
func (s *Store) AddNote(title string, color schema.Color) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note := schema.Note{Title: title, Color: color}
	note.SetDefaults()
	if err := note.Validate(); err != nil {
		return 0, err
	}

	s.board.Notes = append(s.board.Notes, note)
	s.markDirty()
	idx := len(s.board.Notes) - 1
	s.notifyLocked(Mutation{Action: "add", Note: idx, Item: -1, Title: note.Title, Color: note.Color})
	return idx, nil
}

// RemoveNote deletes the note at the given index.
func (s *Store) RemoveNote(note int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNote(note); err != nil {
		return err
	}
	removed := s.board.Notes[note]
	s.board.Notes = append(s.board.Notes[:note], s.board.Notes[note+1:]...)
	s.markDirty()
	s.notifyLocked(Mutation{Action: "remove", Note: note, Item: -1, Title: removed.Title, Color: removed.Color})
	return nil
}

// RenameNote changes a note's title.
func (s *Store) RenameNote(note int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNote(note); err != nil {
		return err
	}
	updated := s.board.Notes[note]
	updated.Title = title
	if err := updated.Validate(); err != nil {
		return err
	}
	s.board.Notes[note] = updated
	s.markDirty()
	s.notifyLocked(Mutation{Action: "rename", Note: note, Item: -1, Title: title, Color: updated.Color})
	return nil
}

// RecolorNote changes a note's background color.
func (s *Store) RecolorNote(note int, color schema.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNote(note); err != nil {
		return err
	}
	if !color.Valid() {
		return fmt.Errorf("unknown color %q", color)
	}
	s.board.Notes[note].Color = color
	s.markDirty()
	s.notifyLocked(Mutation{Action: "recolor", Note: note, Item: -1, Title: s.board.Notes[note].Title, Color: color})
	return nil
}

// ResizeNote records a note window's size.
func (s *Store) ResizeNote(note, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNote(note); err != nil {
		return err
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("window size cannot be negative (got %dx%d)", width, height)
	}
	s.board.Notes[note].Width = width
	s.board.Notes[note].Height = height
	s.markDirty()
	s.notifyLocked(Mutation{Action: "resize", Note: note, Item: -1, Title: s.board.Notes[note].Title, Color: s.board.Notes[note].Color})
	return nil
}

// MoveNote moves a note to a new position in board order.
func (s *Store) MoveNote(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNote(from); err != nil {
		return err
	}
	if err := s.checkNote(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	moved := s.board.Notes[from]
	s.board.Notes = append(s.board.Notes[:from], s.board.Notes[from+1:]...)
	rest := append(s.board.Notes[:to:to], moved)
	s.board.Notes = append(rest, s.board.Notes[to:]...)
	s.markDirty()
	s.notifyLocked(Mutation{Action: "move", Note: to, Item: -1, Title: moved.Title, Color: moved.Color})
	return nil
}

// AddItem appends an item to a note and returns its index.
func (s *Store) AddItem(note int, item schema.NoteItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNote(note); err != nil {
		return 0, err
	}
	s.board.Notes[note].Items = append(s.board.Notes[note].Items, item)
	s.markDirty()
	idx := len(s.board.Notes[note].Items) - 1
	s.notifyLocked(Mutation{Action: "add", Note: note, Item: idx, Text: item.Text})
	return idx, nil
}

// RemoveItem deletes an item from a note.
func (s *Store) RemoveItem(note, item int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkItem(note, item); err != nil {
		return err
	}
	items := s.board.Notes[note].Items
	removed := items[item]
	s.board.Notes[note].Items = append(items[:item], items[item+1:]...)
	s.markDirty()
	s.notifyLocked(Mutation{Action: "remove", Note: note, Item: item, Text: removed.Text})
	return nil
}

// EditItem replaces an item's text.
func (s *Store) EditItem(note, item int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkItem(note, item); err != nil {
		return err
	}
	s.board.Notes[note].Items[item].Text = text
	s.markDirty()
	s.notifyLocked(Mutation{Action: "edit", Note: note, Item: item, Text: text})
	return nil
}

// SetChecked sets an item's checked flag.
func (s *Store) SetChecked(note, item int, checked bool) error {
	action := "check"
	if !checked {
		action = "uncheck"
	}
	return s.setFlag(note, item, action, func(it *schema.NoteItem) { it.Checked = checked })
}

// SetCritical sets an item's critical flag.
func (s *Store) SetCritical(note, item int, critical bool) error {
	return s.setFlag(note, item, "critical", func(it *schema.NoteItem) { it.Critical = critical })
}

// SetHeading sets an item's heading flag.
func (s *Store) SetHeading(note, item int, heading bool) error {
	return s.setFlag(note, item, "heading", func(it *schema.NoteItem) { it.Heading = heading })
}

// SetAttachment sets an item's text attachment. An empty string clears it.
func (s *Store) SetAttachment(note, item int, attachment string) error {
	action := "attach"
	if attachment == "" {
		action = "detach"
	}
	return s.setFlag(note, item, action, func(it *schema.NoteItem) { it.Attachment = attachment })
}

func (s *Store) setFlag(note, item int, action string, apply func(*schema.NoteItem)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkItem(note, item); err != nil {
		return err
	}
	it := &s.board.Notes[note].Items[item]
	apply(it)
	s.markDirty()
	s.notifyLocked(Mutation{Action: action, Note: note, Item: item, Text: it.Text})
	return nil
}

// MoveItem moves an item within a note or across notes: remove at the
// source index, insert at the destination index. This is the model-side
// half of drag-and-drop reordering.
func (s *Store) MoveItem(fromNote, fromItem, toNote, toItem int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkItem(fromNote, fromItem); err != nil {
		return err
	}
	if err := s.checkNote(toNote); err != nil {
		return err
	}

	// Destination index may be one past the end (drop below the last item).
	destLen := len(s.board.Notes[toNote].Items)
	if fromNote == toNote {
		destLen-- // the moved item is removed first
	}
	if toItem < 0 || toItem > destLen {
		return fmt.Errorf("no slot at index %d on note %d", toItem, toNote)
	}

	src := s.board.Notes[fromNote].Items
	moved := src[fromItem]
	s.board.Notes[fromNote].Items = append(src[:fromItem], src[fromItem+1:]...)

	dst := s.board.Notes[toNote].Items
	rest := append(dst[:toItem:toItem], moved)
	s.board.Notes[toNote].Items = append(rest, dst[toItem:]...)

	s.markDirty()
	s.notifyLocked(Mutation{Action: "move", Note: toNote, Item: toItem, Text: moved.Text})
	return nil
}

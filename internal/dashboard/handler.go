// Package dashboard: the Handler bridges daemon events and store
// mutations into WebSocket messages.
package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"github.com/steveyegge/stickies/internal/store"
)

// Handler formats daemon and store events as dashboard messages.
// It implements daemon.Events.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates a new event handler connected to a dashboard server
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		server: server,
		logger: logger,
	}
}

// BoardReloaded handles external-modification reloads
func (h *Handler) BoardReloaded(stats store.Stats) {
	h.logger.Printf("Board reloaded: %d notes", stats.Notes)
	h.send(MessageTypeBoardReloaded, nil)
	h.broadcastStats(stats)
}

// RefsRebound reports open notes that were lost in a reload
func (h *Handler) RefsRebound(refs []store.NoteRef, indexes []int) {
	for i, idx := range indexes {
		if idx != -1 {
			continue
		}
		h.logger.Printf("Open note lost in reload: %q/%s", refs[i].Title, refs[i].Color)
		h.send(MessageTypeRefLost, RefLostData{
			Title: refs[i].Title,
			Color: string(refs[i].Color),
		})
	}
}

// SaveComplete handles autosave completions
func (h *Handler) SaveComplete(stats store.Stats) {
	h.send(MessageTypeSaveComplete, nil)
	h.broadcastStats(stats)
}

// BackupComplete handles backup completions
func (h *Handler) BackupComplete(path string) {
	h.logger.Printf("Backup complete: %s", path)
	h.send(MessageTypeBackupComplete, BackupCompleteData{Path: path})
}

// ObserveStore subscribes the handler to the store's mutation
// notifications, so edits made in this process broadcast note and item
// updates to connected clients.
func (h *Handler) ObserveStore(st *store.Store) {
	st.Observe(func(m store.Mutation) {
		if m.Item < 0 {
			h.OnNoteChanged(m.Note, m.Action, m.Title, string(m.Color))
			return
		}
		h.OnItemChanged(m.Note, m.Item, m.Action, m.Text)
	})
}

// OnNoteChanged broadcasts a note-level mutation
func (h *Handler) OnNoteChanged(index int, action, title, color string) {
	h.send(MessageTypeNoteUpdate, NoteUpdateData{
		Index:  index,
		Action: action,
		Title:  title,
		Color:  color,
	})
}

// OnItemChanged broadcasts an item-level mutation
func (h *Handler) OnItemChanged(note, item int, action, text string) {
	h.send(MessageTypeItemUpdate, ItemUpdateData{
		Note:   note,
		Item:   item,
		Action: action,
		Text:   text,
	})
}

func (h *Handler) broadcastStats(stats store.Stats) {
	h.send(MessageTypeStats, StatsData{
		Notes:    stats.Notes,
		Items:    stats.Items,
		Checked:  stats.Checked,
		Critical: stats.Critical,
	})
}

// send marshals the payload and broadcasts it. A nil payload sends a
// bare message.
func (h *Handler) send(typ MessageType, payload interface{}) {
	msg := Message{
		Type:      typ,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Printf("Failed to marshal %s data: %v", typ, err)
			return
		}
		msg.Data = data
	}

	h.server.Broadcast(msg)
}

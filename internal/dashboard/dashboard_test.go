package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/steveyegge/stickies/internal/schema"
	"github.com/steveyegge/stickies/internal/store"
)

func httpGet(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	config := &Config{
		Port:   0, // Use random available port
		Logger: log.New(io.Discard, "", 0),
	}

	server := NewServer(config)
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() {
		if err := server.Stop(); err != nil {
			t.Errorf("Failed to stop server: %v", err)
		}
	})

	time.Sleep(100 * time.Millisecond)
	return server
}

func dialClient(t *testing.T, ctx context.Context, server *Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws://" + server.GetAddr() + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

func TestServerStartStop(t *testing.T) {
	server := newTestServer(t)

	if server.GetAddr() == "" {
		t.Fatal("Server address is empty")
	}
}

func TestWebSocketConnection(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)

	if count := server.ClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}

	// Welcome message arrives first.
	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeStats {
		t.Errorf("Expected welcome message type %s, got %s", MessageTypeStats, msg.Type)
	}
}

func TestBroadcast(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	numClients := 3
	conns := make([]*websocket.Conn, numClients)
	for i := 0; i < numClients; i++ {
		conns[i] = dialClient(t, ctx, server)
		readMessage(t, ctx, conns[i]) // drain welcome
	}

	data, err := json.Marshal(BackupCompleteData{Path: "/tmp/stickies-2026-03-14.json"})
	if err != nil {
		t.Fatalf("Failed to marshal data: %v", err)
	}
	server.Broadcast(Message{
		Type: MessageTypeBackupComplete,
		Data: data,
	})

	for i, conn := range conns {
		msg := readMessage(t, ctx, conn)
		if msg.Type != MessageTypeBackupComplete {
			t.Errorf("client %d: message type = %s, want %s", i, msg.Type, MessageTypeBackupComplete)
		}
		if msg.Timestamp.IsZero() {
			t.Errorf("client %d: broadcast did not stamp the message", i)
		}
		var payload BackupCompleteData
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			t.Fatalf("client %d: bad payload: %v", i, err)
		}
		if payload.Path == "" {
			t.Errorf("client %d: empty backup path", i)
		}
	}
}

func TestHandlerEvents(t *testing.T) {
	server := newTestServer(t)
	handler := NewHandler(server, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)
	readMessage(t, ctx, conn) // drain welcome

	stats := store.Stats{Notes: 2, Items: 5, Checked: 1, Critical: 1}
	handler.BoardReloaded(stats)

	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeBoardReloaded {
		t.Fatalf("first message type = %s, want %s", msg.Type, MessageTypeBoardReloaded)
	}

	// Reload is followed by a stats refresh.
	msg = readMessage(t, ctx, conn)
	if msg.Type != MessageTypeStats {
		t.Fatalf("second message type = %s, want %s", msg.Type, MessageTypeStats)
	}
	var got StatsData
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("bad stats payload: %v", err)
	}
	if got.Notes != 2 || got.Items != 5 {
		t.Errorf("stats = %+v", got)
	}
}

func TestHandlerRefLost(t *testing.T) {
	server := newTestServer(t)
	handler := NewHandler(server, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)
	readMessage(t, ctx, conn) // drain welcome

	refs := []store.NoteRef{
		{Title: "Kept", Color: "yellow"},
		{Title: "Gone", Color: "pink"},
	}
	handler.RefsRebound(refs, []int{0, -1})

	// Only the lost ref produces a message.
	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeRefLost {
		t.Fatalf("message type = %s, want %s", msg.Type, MessageTypeRefLost)
	}
	var payload RefLostData
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if payload.Title != "Gone" || payload.Color != "pink" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := httpGet("http://" + server.GetAddr() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp, &body); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestObserveStore(t *testing.T) {
	server := newTestServer(t)
	handler := NewHandler(server, log.New(io.Discard, "", 0))

	cfg := store.DefaultConfig(filepath.Join(t.TempDir(), "stickies.json"))
	cfg.Logger = log.New(io.Discard, "", 0)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	handler.ObserveStore(st)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)
	readMessage(t, ctx, conn) // drain welcome

	idx, err := st.AddNote("Groceries", schema.ColorYellow)
	if err != nil {
		t.Fatalf("AddNote() error: %v", err)
	}
	if _, err := st.AddItem(idx, schema.NoteItem{Text: "milk"}); err != nil {
		t.Fatalf("AddItem() error: %v", err)
	}

	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeNoteUpdate {
		t.Fatalf("first message type = %s, want %s", msg.Type, MessageTypeNoteUpdate)
	}
	var note NoteUpdateData
	if err := json.Unmarshal(msg.Data, &note); err != nil {
		t.Fatalf("bad note payload: %v", err)
	}
	if note.Index != 0 || note.Action != "add" || note.Title != "Groceries" || note.Color != "yellow" {
		t.Errorf("note update = %+v", note)
	}

	msg = readMessage(t, ctx, conn)
	if msg.Type != MessageTypeItemUpdate {
		t.Fatalf("second message type = %s, want %s", msg.Type, MessageTypeItemUpdate)
	}
	var item ItemUpdateData
	if err := json.Unmarshal(msg.Data, &item); err != nil {
		t.Fatalf("bad item payload: %v", err)
	}
	if item.Note != 0 || item.Item != 0 || item.Action != "add" || item.Text != "milk" {
		t.Errorf("item update = %+v", item)
	}
}

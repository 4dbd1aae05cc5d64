// Package dashboard provides a real-time WebSocket surface for the note
// board.
//
// The server broadcasts board reloads, saves, backups, and note changes
// to connected clients, so rendering frontends can stay current without
// polling the board file themselves.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// MessageType defines the type of dashboard message
type MessageType string

const (
	// MessageTypeBoardReloaded indicates the board was replaced after an
	// external modification.
	MessageTypeBoardReloaded MessageType = "board_reloaded"

	// MessageTypeNoteUpdate indicates a note was created, updated, or deleted
	MessageTypeNoteUpdate MessageType = "note_update"

	// MessageTypeItemUpdate indicates a checklist item changed
	MessageTypeItemUpdate MessageType = "item_update"

	// MessageTypeRefLost indicates an open note could not be re-matched
	// after a reload
	MessageTypeRefLost MessageType = "ref_lost"

	// MessageTypeSaveComplete indicates a debounced autosave finished
	MessageTypeSaveComplete MessageType = "save_complete"

	// MessageTypeBackupComplete indicates a daily backup was written
	MessageTypeBackupComplete MessageType = "backup_complete"

	// MessageTypeStats indicates updated board statistics
	MessageTypeStats MessageType = "stats"
)

// Message represents a dashboard broadcast message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NoteUpdateData contains note change information
type NoteUpdateData struct {
	Index  int    `json:"index"`
	Action string `json:"action"` // created, updated, deleted, moved
	Title  string `json:"title,omitempty"`
	Color  string `json:"color,omitempty"`
}

// ItemUpdateData contains checklist item change information
type ItemUpdateData struct {
	Note   int    `json:"note"`
	Item   int    `json:"item"`
	Action string `json:"action"` // added, edited, toggled, flagged, moved, removed
	Text   string `json:"text,omitempty"`
}

// RefLostData identifies an open note that vanished in a reload
type RefLostData struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

// BackupCompleteData contains backup information
type BackupCompleteData struct {
	Path string `json:"path"`
}

// StatsData contains board statistics
type StatsData struct {
	Notes    int `json:"notes"`
	Items    int `json:"items"`
	Checked  int `json:"checked"`
	Critical int `json:"critical"`
}

// Server manages WebSocket connections and broadcasts dashboard messages
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server

	// WebSocket client management; each connection gets a uuid identity
	clients   map[*websocket.Conn]string
	clientsMu sync.RWMutex

	// Message broadcasting
	broadcast chan Message

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Logging
	logger *log.Logger
}

// Config holds server configuration
type Config struct {
	// Port to listen on (default: 8080)
	Port int

	// Logger for server activity (default: stderr logger)
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Port:   8080,
		Logger: log.Default(),
	}
}

// NewServer creates a new dashboard WebSocket server
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:      fmt.Sprintf(":%d", config.Port),
		clients:   make(map[*websocket.Conn]string),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    config.Logger,
	}
}

// Start begins the HTTP server and WebSocket handler
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Dashboard server listening on %s", s.addr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// GetAddr returns the listener address, useful when Port 0 was requested.
func (s *Server) GetAddr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.logger.Println("Stopping dashboard server")

	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()

	s.logger.Println("Dashboard server stopped")
	return nil
}

// Broadcast sends a message to all connected clients
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
		return
	default:
		s.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// broadcastLoop handles message broadcasting to all clients
func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg := <-s.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				clients = append(clients, conn)
			}
			s.clientsMu.RUnlock()

			// Send to clients (outside read lock to avoid blocking broadcasts)
			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					s.logger.Printf("Failed to send to client: %v", err)
					s.removeClient(conn)
				}
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // local tool, clients are trusted
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	clientID := uuid.NewString()

	s.clientsMu.Lock()
	s.clients[conn] = clientID
	clientCount := len(s.clients)
	s.clientsMu.Unlock()

	s.logger.Printf("Client %s connected (total: %d)", clientID, clientCount)

	// Send initial welcome message
	welcome := Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
	}
	welcomeData, _ := json.Marshal(welcome)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = conn.Write(ctx, websocket.MessageText, welcomeData)
	cancel()

	go s.readLoop(conn, clientID)
}

// readLoop keeps the WebSocket connection alive and handles client disconnects
func (s *Server) readLoop(conn *websocket.Conn, clientID string) {
	defer s.removeClient(conn)

	for {
		_, _, err := conn.Read(s.ctx)
		if err != nil {
			s.logger.Printf("Client %s disconnected", clientID)
			return
		}
	}
}

// removeClient removes a client connection
func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[conn]; ok {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		delete(s.clients, conn)
	}
}

// handleHealth responds to health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := map[string]interface{}{
		"status":  "ok",
		"clients": s.ClientCount(),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleRoot serves a minimal index for humans poking at the port
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "stickies dashboard")
	fmt.Fprintln(w, "WebSocket endpoint: /ws")
	fmt.Fprintln(w, "Health check: /health")
}

package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// MockServer is an in-process WebSocket endpoint for tests. It records the
// handshake request for each connection, buffers every inbound text frame,
// and lets a test push frames to connected clients with Broadcast.
type MockServer struct {
	server *httptest.Server
	url    string

	mu          sync.RWMutex
	connections map[*websocket.Conn]bool
	handshakes  []*http.Request
	messages    [][]byte

	rejectConnections bool
}

// NewMockServer starts a mock WebSocket server. Callers own Close.
func NewMockServer() *MockServer {
	mock := &MockServer{
		connections: make(map[*websocket.Conn]bool),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handleConnection))
	mock.url = "ws" + strings.TrimPrefix(mock.server.URL, "http")
	return mock
}

// URL returns the ws:// base URL of the server.
func (m *MockServer) URL() string {
	return m.url
}

// Close shuts the server down.
func (m *MockServer) Close() {
	m.server.Close()
}

// SetRejectConnections makes the server refuse handshakes with 403.
func (m *MockServer) SetRejectConnections(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectConnections = reject
}

// Handshakes returns the recorded upgrade requests, oldest first.
func (m *MockServer) Handshakes() []*http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	requests := make([]*http.Request, len(m.handshakes))
	copy(requests, m.handshakes)
	return requests
}

// Messages returns a copy of all inbound text frames received so far.
func (m *MockServer) Messages() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	messages := make([][]byte, len(m.messages))
	copy(messages, m.messages)
	return messages
}

// ConnectionCount returns the number of open connections.
func (m *MockServer) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast sends one text frame to every connected client.
func (m *MockServer) Broadcast(message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for conn := range m.connections {
		_ = conn.WriteMessage(websocket.TextMessage, message)
	}
}

// DropAll closes every open connection from the server side.
func (m *MockServer) DropAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.connections {
		conn.Close()
		delete(m.connections, conn)
	}
}

func (m *MockServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	reject := m.rejectConnections
	m.handshakes = append(m.handshakes, r.Clone(r.Context()))
	m.mu.Unlock()

	if reject {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.connections[conn] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.connections, conn)
		m.mu.Unlock()
		conn.Close()
	}()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType == websocket.TextMessage {
			m.mu.Lock()
			m.messages = append(m.messages, message)
			m.mu.Unlock()
		}
	}
}

func setupMockServer(t *testing.T) *MockServer {
	t.Helper()
	mock := NewMockServer()
	t.Cleanup(mock.Close)
	return mock
}

package wsrouter

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Conn wraps a websocket connection with a write lock. gorilla/websocket
// allows at most one concurrent writer, and background pushes may race the
// read loop's replies, so every write must go through WriteJSON.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws.WriteJSON(v)
}

func (c *Conn) ReadJSON(v any) error {
	return c.ws.ReadJSON(v)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

type HandlerFunc func(ctx context.Context, conn *Conn, payload json.RawMessage) error

type WSRouter struct {
	routes map[string]HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// ServeConn reads messages from the connection and dispatches them by type
// until the connection is closed or a read fails. Handler errors are reported
// to the peer without closing the connection.
func (r *WSRouter) ServeConn(ctx context.Context, conn *Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			conn.WriteJSON(map[string]string{"error": "unknown message type"})
			continue
		}

		if err := handler(withMessageType(ctx, msg.Type), conn, msg.Payload); err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
		}
	}
}

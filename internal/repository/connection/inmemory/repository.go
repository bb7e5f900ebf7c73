package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wealthed/portal/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[sessionID] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = sessionID
	r.idList[sessionID] = conn

	return nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.connList[conn]
	if !ok {
		return connection.ErrNotFound
	}
	conn.Close()

	delete(r.connList, conn)
	delete(r.idList, sessionID)

	return nil
}

func (r *repo) RemoveBySessionID(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[sessionID]
	if !ok {
		return connection.ErrNotFound
	}
	conn.Close()

	delete(r.connList, conn)
	delete(r.idList, sessionID)

	return nil
}

func (r *repo) GetSessionID(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return sessionID, nil
}

func (r *repo) GetConn(sessionID string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[sessionID]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.connList)
}

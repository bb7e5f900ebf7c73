package inmemory

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthed/portal/internal/repository/connection"
)

// newWSConn dials a throwaway websocket server and returns the client side.
// The repo closes connections on removal, so the tests need real ones.
func newWSConn(t *testing.T) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestRepo_AddAndLookup(t *testing.T) {
	r := NewRepo()
	conn := newWSConn(t)

	require.NoError(t, r.Add(conn, "sess-1"))

	sessionID, err := r.GetSessionID(conn)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sessionID)

	got, err := r.GetConn("sess-1")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	assert.Equal(t, 1, r.Count())
}

func TestRepo_AddDuplicate(t *testing.T) {
	r := NewRepo()
	conn := newWSConn(t)
	other := newWSConn(t)

	require.NoError(t, r.Add(conn, "sess-1"))

	assert.ErrorIs(t, r.Add(conn, "sess-2"), connection.ErrAlreadyExists)
	assert.ErrorIs(t, r.Add(other, "sess-1"), connection.ErrAlreadyExists)
	assert.Equal(t, 1, r.Count())
}

func TestRepo_RemoveByConn(t *testing.T) {
	r := NewRepo()
	conn := newWSConn(t)

	require.NoError(t, r.Add(conn, "sess-1"))
	require.NoError(t, r.RemoveByConn(conn))

	assert.Equal(t, 0, r.Count())

	_, err := r.GetConn("sess-1")
	assert.ErrorIs(t, err, connection.ErrNotFound)

	assert.ErrorIs(t, r.RemoveByConn(conn), connection.ErrNotFound)
}

func TestRepo_RemoveBySessionID(t *testing.T) {
	r := NewRepo()
	conn := newWSConn(t)

	require.NoError(t, r.Add(conn, "sess-1"))
	require.NoError(t, r.RemoveBySessionID("sess-1"))

	_, err := r.GetSessionID(conn)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	assert.ErrorIs(t, r.RemoveBySessionID("sess-1"), connection.ErrNotFound)
}

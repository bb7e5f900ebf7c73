package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wealthed/portal/internal/repository/session"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	return NewRepo(rc, time.Hour), mr
}

func testSessionParams() *session.SetSessionParams {
	return &session.SetSessionParams{
		ID:                "sess-1",
		EventID:           300,
		EnrolmentID:       555,
		Email:             "member@example.com",
		MemberToken:       "tok-1",
		State:             "streaming",
		StreamURL:         "https://cdn.example.com/live.m3u8",
		FallbackStreamURL: "https://cdn.example.com/adaptive.m3u8",
	}
}

func TestRepo_SetAndGetSession(t *testing.T) {
	r, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetSession(ctx, testSessionParams()))

	sess, err := r.GetSession(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, 300, sess.EventID)
	assert.Equal(t, 555, sess.EnrolmentID)
	assert.Equal(t, "member@example.com", sess.Email)
	assert.Equal(t, "tok-1", sess.MemberToken)
	assert.Equal(t, "streaming", sess.State)
	assert.Equal(t, "https://cdn.example.com/live.m3u8", sess.StreamURL)
	assert.Equal(t, int64(0), sess.NotifiedAt)

	// Sessions expire on their own instead of leaking.
	ttl := mr.TTL("webinar:session:sess-1")
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRepo_GetSession_NotFound(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRepo_UpdateSessionState(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetSession(ctx, testSessionParams()))
	require.NoError(t, r.UpdateSessionState(ctx, "sess-1", "expired"))

	sess, err := r.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "expired", sess.State)

	assert.ErrorIs(t, r.UpdateSessionState(ctx, "missing", "expired"), session.ErrSessionNotFound)
}

func TestRepo_UpdateSessionStreams(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	params := testSessionParams()
	params.StreamURL = ""
	params.FallbackStreamURL = ""
	require.NoError(t, r.SetSession(ctx, params))

	require.NoError(t, r.UpdateSessionStreams(ctx, "sess-1",
		"https://cdn.example.com/live.m3u8",
		"https://cdn.example.com/adaptive.m3u8",
	))

	sess, err := r.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/live.m3u8", sess.StreamURL)
	assert.Equal(t, "https://cdn.example.com/adaptive.m3u8", sess.FallbackStreamURL)
}

func TestRepo_UpdateSessionNotifiedAt(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetSession(ctx, testSessionParams()))

	notifiedAt := time.Date(2026, 3, 10, 11, 55, 0, 0, time.UTC).Unix()
	require.NoError(t, r.UpdateSessionNotifiedAt(ctx, "sess-1", notifiedAt))

	sess, err := r.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, notifiedAt, sess.NotifiedAt)
}

func TestRepo_RemoveSession(t *testing.T) {
	r, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetSession(ctx, testSessionParams()))
	require.NoError(t, r.RemoveSession(ctx, "sess-1"))

	assert.False(t, mr.Exists("webinar:session:sess-1"))
	assert.ErrorIs(t, r.RemoveSession(ctx, "sess-1"), session.ErrSessionNotFound)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wealthed/portal/internal/repository/session"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getSessionKey(sessionID string) string {
	return "webinar:session:" + sessionID
}

func (r repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	sess := session.Session{
		ID:                params.ID,
		EventID:           params.EventID,
		EnrolmentID:       params.EnrolmentID,
		Email:             params.Email,
		MemberToken:       params.MemberToken,
		State:             params.State,
		StreamURL:         params.StreamURL,
		FallbackStreamURL: params.FallbackStreamURL,
	}

	sessionKey := r.getSessionKey(params.ID)
	if err := r.rc.HSet(ctx, sessionKey, sess).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	r.rc.Expire(ctx, sessionKey, r.expireDuration)

	return nil
}

func (r repo) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	sessionKey := r.getSessionKey(sessionID)

	if err := r.checkExists(ctx, sessionKey); err != nil {
		return session.Session{}, err
	}

	var sess session.Session
	if err := r.rc.HGetAll(ctx, sessionKey).Scan(&sess); err != nil {
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	r.rc.Expire(ctx, sessionKey, r.expireDuration)

	return sess, nil
}

func (r repo) UpdateSessionState(ctx context.Context, sessionID string, state string) error {
	return r.updateFields(ctx, sessionID, "state", state)
}

func (r repo) UpdateSessionStreams(ctx context.Context, sessionID string, streamURL, fallbackStreamURL string) error {
	return r.updateFields(ctx, sessionID,
		"stream_url", streamURL,
		"fallback_stream_url", fallbackStreamURL,
	)
}

func (r repo) UpdateSessionNotifiedAt(ctx context.Context, sessionID string, notifiedAt int64) error {
	return r.updateFields(ctx, sessionID, "notified_at", notifiedAt)
}

func (r repo) RemoveSession(ctx context.Context, sessionID string) error {
	res, err := r.rc.Del(ctx, r.getSessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	if res == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}

func (r repo) updateFields(ctx context.Context, sessionID string, fields ...any) error {
	sessionKey := r.getSessionKey(sessionID)

	if err := r.checkExists(ctx, sessionKey); err != nil {
		return err
	}

	if err := r.rc.HSet(ctx, sessionKey, fields...).Err(); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	r.rc.Expire(ctx, sessionKey, r.expireDuration)

	return nil
}

func (r repo) checkExists(ctx context.Context, sessionKey string) error {
	cmd := r.rc.Exists(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to check if session exists: %w", err)
	}

	if cmd.Val() == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}

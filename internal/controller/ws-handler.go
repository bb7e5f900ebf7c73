package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wealthed/portal/internal/service/webinar"
	"github.com/wealthed/portal/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// watchWebinar upgrades the connection for an existing watch session. The
// state at connect time is refreshed from the backend (a page reload always
// sees a fresh access record), pushed to the client, and the not-started
// refresh poll is armed when needed. All timers and the connection itself are
// torn down when the viewer disconnects.
func (c *controller) watchWebinar(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session-id")
	if sessionID == "" {
		c.logger.DebugContext(r.Context(), "empty session id")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	accessResponse, err := c.webinarService.RefreshAccess(r.Context(), sessionID)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to refresh access", "error", err)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	if err := c.connRepo.Add(conn, sessionID); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}
	defer c.connRepo.RemoveByConn(conn)

	// The refresh poll pushes from its own goroutine while the read loop
	// replies to the client, so all writes go through the locked wrapper.
	wsConn := wsrouter.NewConn(conn)

	if err := wsConn.WriteJSON(&Output{
		Type:    "STATE_UPDATED",
		Payload: accessResponse,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	ctx := context.WithValue(r.Context(), sessionIDCtxKey, sessionID)

	if accessResponse.State == webinar.StateNotStarted {
		cancelPoll := c.webinarService.StartRefreshLoop(ctx, sessionID, func(update webinar.AccessResponse) {
			if err := wsConn.WriteJSON(&Output{
				Type:    "STATE_UPDATED",
				Payload: update,
			}); err != nil {
				c.logger.WarnContext(ctx, "failed to push state update", "error", err)
			}
		})
		defer cancelPoll()
	}

	if err := c.wsmux.ServeConn(ctx, wsConn); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "session_id", sessionID, "error", err)
	}
}

type PlayerProgressInput struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

func (c *controller) handlePlayerProgress(ctx context.Context, _ *wsrouter.Conn, input PlayerProgressInput) error {
	sessionID := c.getSessionIDFromCtx(ctx)

	if err := c.webinarService.HandleProgress(ctx, &webinar.ProgressParams{
		SessionID: sessionID,
		Position:  input.Position,
		Duration:  input.Duration,
	}); err != nil {
		return fmt.Errorf("failed to handle progress: %w", err)
	}

	return nil
}

type PlaybackErrorInput struct {
	Code string `json:"code"`
}

func (c *controller) handlePlaybackError(ctx context.Context, conn *wsrouter.Conn, input PlaybackErrorInput) error {
	sessionID := c.getSessionIDFromCtx(ctx)

	c.logger.DebugContext(ctx, "playback error", "session_id", sessionID, "code", input.Code)

	recovery, err := c.webinarService.HandlePlaybackError(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to handle playback error: %w", err)
	}

	if err := conn.WriteJSON(&Output{
		Type:    "PLAYBACK_FALLBACK",
		Payload: recovery,
	}); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}

	return nil
}

type EmptyInput struct{}

func (c *controller) handleAlive(_ context.Context, _ *wsrouter.Conn, _ EmptyInput) error {
	return nil
}

// handle adapts a typed handler to the wsrouter signature.
func handle[T any](fn func(ctx context.Context, conn *wsrouter.Conn, input T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *wsrouter.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}
		}

		return fn(ctx, conn, input)
	}
}

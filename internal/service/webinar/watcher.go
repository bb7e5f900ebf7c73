package webinar

import (
	"context"
	"time"
)

// StartRefreshLoop polls RefreshAccess on the service's poll interval while
// the session remains not-started and delivers each result through onUpdate.
// The loop disarms itself as soon as a refresh leaves the not-started state.
// The returned cancel func must be called on teardown so no refresh acts on
// a stale session after the viewer navigates away.
func (s service) StartRefreshLoop(ctx context.Context, sessionID string, onUpdate func(AccessResponse)) context.CancelFunc {
	loopCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				resp, err := s.RefreshAccess(loopCtx, sessionID)
				if err != nil {
					s.logger.WarnContext(loopCtx, "refresh poll failed",
						"session_id", sessionID,
						"error", err,
					)
					continue
				}

				onUpdate(resp)

				if resp.State != StateNotStarted {
					return
				}
			}
		}
	}()

	return cancel
}

package controller

import (
	"github.com/wealthed/portal/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle("ALIVE", handle(c.handleAlive))

	// player
	mux.Handle("PLAYER_PROGRESS", handle(c.handlePlayerProgress))
	mux.Handle("PLAYBACK_ERROR", handle(c.handlePlaybackError))

	return mux
}

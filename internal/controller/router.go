package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	if c.metrics != nil {
		r.Handle("/metrics", c.metrics.Handler(func() {
			c.metrics.SetActiveWatchSessions(c.connRepo.Count())
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/rating", c.submitRating)
		r.Post("/webinar/{event-id}/access", c.requestWebinarAccess)
		r.Delete("/webinar/session/{session-id}", c.endWebinarSession)
	})

	r.HandleFunc("/ws/webinar/{session-id}", c.watchWebinar)

	return r
}

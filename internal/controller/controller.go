package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wealthed/portal/internal/metrics"
	"github.com/wealthed/portal/internal/service/rating"
	"github.com/wealthed/portal/internal/service/webinar"
	"github.com/wealthed/portal/pkg/validator"
	"github.com/wealthed/portal/pkg/wsrouter"
)

type iRatingService interface {
	Submit(context.Context, *rating.SubmitParams) (rating.Payload, error)
}

type iWebinarService interface {
	RequestAccess(context.Context, *webinar.RequestAccessParams) (webinar.AccessResponse, error)
	RefreshAccess(ctx context.Context, sessionID string) (webinar.AccessResponse, error)
	HandleProgress(context.Context, *webinar.ProgressParams) error
	HandlePlaybackError(ctx context.Context, sessionID string) (webinar.PlaybackRecovery, error)
	EndSession(ctx context.Context, sessionID string) error
	StartRefreshLoop(ctx context.Context, sessionID string, onUpdate func(webinar.AccessResponse)) context.CancelFunc
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveByConn(*websocket.Conn) error
	RemoveBySessionID(string) error
	Count() int
}

type controller struct {
	ratingService  iRatingService
	webinarService iWebinarService
	connRepo       iConnRepo
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	wsmux          *wsrouter.WSRouter
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewController wires the HTTP and websocket surface. Metrics may be nil to
// disable the /metrics endpoint and metric recording (e.g. in tests).
func NewController(
	ratingService iRatingService,
	webinarService iWebinarService,
	connRepo iConnRepo,
	m *metrics.Metrics,
	logger *slog.Logger,
) *controller {
	c := controller{
		ratingService:  ratingService,
		webinarService: webinarService,
		connRepo:       connRepo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		metrics:  m,
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}

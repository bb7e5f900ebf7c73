package rating

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wealthed/portal/internal/backend"
)

type iBackend interface {
	SubmitRating(context.Context, *backend.SubmitRatingParams) error
}

type service struct {
	backend iBackend
	logger  *slog.Logger
}

func NewService(backendClient iBackend, logger *slog.Logger) *service {
	return &service{
		backend: backendClient,
		logger:  logger,
	}
}

type SubmitParams struct {
	Link        string
	Comment     string
	MemberCode  string
	MemberEmail string
}

// Submit decodes the rating deep link and forwards the result to the backend.
// The returned payload is what was actually submitted.
func (s service) Submit(ctx context.Context, params *SubmitParams) (Payload, error) {
	payload := Extract(params.Link)

	if err := s.backend.SubmitRating(ctx, &backend.SubmitRatingParams{
		RequestID:   payload.RequestID,
		RatingValue: string(payload.Rating),
		Comment:     params.Comment,
		MemberCode:  params.MemberCode,
		MemberEmail: params.MemberEmail,
	}); err != nil {
		return Payload{}, fmt.Errorf("failed to submit rating: %w", err)
	}

	s.logger.DebugContext(ctx, "rating submitted",
		"rating", payload.Rating,
		"request_id", payload.RequestID,
	)

	return payload, nil
}

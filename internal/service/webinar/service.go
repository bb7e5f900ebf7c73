package webinar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wealthed/portal/internal/backend"
	"github.com/wealthed/portal/internal/repository/session"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	// NearEndThreshold is how close to the end of the recording a progress
	// report must be before the post-webinar notice fires.
	NearEndThreshold = 300 * time.Second
	// NotifyDebounce suppresses repeat notices. A viewer seeking backward past
	// the threshold and forward again after the debounce will trigger another
	// notice; the call is at-least-once by design.
	NotifyDebounce = 60 * time.Second

	defaultPollInterval = 60 * time.Second
)

type iSessionRepo interface {
	SetSession(context.Context, *session.SetSessionParams) error
	GetSession(context.Context, string) (session.Session, error)
	UpdateSessionState(ctx context.Context, sessionID string, state string) error
	UpdateSessionStreams(ctx context.Context, sessionID string, streamURL, fallbackStreamURL string) error
	UpdateSessionNotifiedAt(ctx context.Context, sessionID string, notifiedAt int64) error
	RemoveSession(ctx context.Context, sessionID string) error
}

type iBackend interface {
	RequestAccess(context.Context, *backend.RequestAccessParams) (backend.AccessGrant, error)
	MarkAttended(ctx context.Context, enrolmentID int, memberToken string) error
	SendPostWebinarNotice(ctx context.Context, enrolmentID int, memberToken string) error
}

type iMetrics interface {
	IncAccessRequests()
	IncPostWebinarNotices()
	IncPlaybackErrors()
}

type Config struct {
	// Now is the clock used for all window checks; defaults to time.Now.
	// Injected so classification is deterministic in tests.
	Now          func() time.Time
	Classifier   *Classifier
	PollInterval time.Duration
}

type service struct {
	sessions     iSessionRepo
	backend      iBackend
	classifier   *Classifier
	metrics      iMetrics
	now          func() time.Time
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewService returns the webinar watch-session service. Metrics may be nil
// to disable metric recording (e.g. in tests).
func NewService(sessions iSessionRepo, backendClient iBackend, m iMetrics, cfg *Config, logger *slog.Logger) *service {
	s := service{
		sessions:     sessions,
		backend:      backendClient,
		classifier:   cfg.Classifier,
		metrics:      m,
		now:          cfg.Now,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}

	if s.classifier == nil {
		s.classifier = NewClassifier()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}

	return &s
}

// RequestAccess asks the backend for an access grant and opens a watch
// session for it. A failed grant leaves the viewer where they were: no
// session is created and the backend's own message is returned to the caller.
func (s service) RequestAccess(ctx context.Context, params *RequestAccessParams) (AccessResponse, error) {
	if s.metrics != nil {
		s.metrics.IncAccessRequests()
	}

	grant, err := s.backend.RequestAccess(ctx, &backend.RequestAccessParams{
		EventID:     params.EventID,
		Email:       params.Email,
		MemberToken: params.MemberToken,
	})
	if err != nil {
		return AccessResponse{}, fmt.Errorf("failed to request access: %w", err)
	}

	record, err := recordFromGrant(&grant)
	if err != nil {
		return AccessResponse{}, fmt.Errorf("failed to build access record: %w", err)
	}

	state := s.classifier.Classify(&record, s.now())
	sessionID := uuid.NewString()

	if err := s.sessions.SetSession(ctx, &session.SetSessionParams{
		ID:                sessionID,
		EventID:           params.EventID,
		EnrolmentID:       grant.EnrolmentID,
		Email:             params.Email,
		MemberToken:       params.MemberToken,
		State:             string(state),
		StreamURL:         record.StreamURL,
		FallbackStreamURL: record.FallbackStreamURL,
	}); err != nil {
		return AccessResponse{}, fmt.Errorf("failed to set session: %w", err)
	}

	if state == StateStreaming {
		s.markAttended(ctx, grant.EnrolmentID, params.MemberToken)
	}

	s.logger.InfoContext(ctx, "watch session opened",
		"session_id", sessionID,
		"event_id", params.EventID,
		"state", state,
	)

	return s.response(sessionID, &record, state), nil
}

// RefreshAccess re-fetches the access record for an existing session and
// reclassifies it. Used on page reload and by the not-started refresh poll.
func (s service) RefreshAccess(ctx context.Context, sessionID string) (AccessResponse, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return AccessResponse{}, err
	}

	grant, err := s.backend.RequestAccess(ctx, &backend.RequestAccessParams{
		EventID:     sess.EventID,
		Email:       sess.Email,
		MemberToken: sess.MemberToken,
	})
	if err != nil {
		return AccessResponse{}, fmt.Errorf("failed to refresh access: %w", err)
	}

	record, err := recordFromGrant(&grant)
	if err != nil {
		return AccessResponse{}, fmt.Errorf("failed to build access record: %w", err)
	}

	state := s.classifier.Classify(&record, s.now())

	if err := s.sessions.UpdateSessionState(ctx, sessionID, string(state)); err != nil {
		return AccessResponse{}, fmt.Errorf("failed to update session state: %w", err)
	}
	if err := s.sessions.UpdateSessionStreams(ctx, sessionID, record.StreamURL, record.FallbackStreamURL); err != nil {
		return AccessResponse{}, fmt.Errorf("failed to update session streams: %w", err)
	}

	if state == StateStreaming && ViewState(sess.State) != StateStreaming {
		s.markAttended(ctx, grant.EnrolmentID, sess.MemberToken)
	}

	return s.response(sessionID, &record, state), nil
}

// HandleProgress checks a playback progress report against the near-end
// threshold and fires the post-webinar notice at most once per debounce
// window. A failed notice is logged and swallowed; it must never degrade
// playback.
func (s service) HandleProgress(ctx context.Context, params *ProgressParams) error {
	sess, err := s.getSession(ctx, params.SessionID)
	if err != nil {
		return err
	}

	if ViewState(sess.State) != StateStreaming {
		return nil
	}

	if params.Duration <= 0 || params.Duration-params.Position > NearEndThreshold.Seconds() {
		return nil
	}

	now := s.now()
	if sess.NotifiedAt > 0 && now.Unix()-sess.NotifiedAt < int64(NotifyDebounce.Seconds()) {
		return nil
	}

	if err := s.sessions.UpdateSessionNotifiedAt(ctx, params.SessionID, now.Unix()); err != nil {
		return fmt.Errorf("failed to update notified at: %w", err)
	}

	if err := s.backend.SendPostWebinarNotice(ctx, sess.EnrolmentID, sess.MemberToken); err != nil {
		s.logger.WarnContext(ctx, "failed to send post-webinar notice",
			"session_id", params.SessionID,
			"enrolment_id", sess.EnrolmentID,
			"error", err,
		)
		return nil
	}

	if s.metrics != nil {
		s.metrics.IncPostWebinarNotices()
	}

	return nil
}

// HandlePlaybackError records a media failure and hands the client the
// fallback stream. The session stays in streaming state.
func (s service) HandlePlaybackError(ctx context.Context, sessionID string) (PlaybackRecovery, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return PlaybackRecovery{}, err
	}

	if s.metrics != nil {
		s.metrics.IncPlaybackErrors()
	}

	s.logger.WarnContext(ctx, "playback error reported",
		"session_id", sessionID,
		"has_fallback", sess.FallbackStreamURL != "",
	)

	return PlaybackRecovery{
		FallbackStreamURL: sess.FallbackStreamURL,
		Notice:            playbackErrorNotice(),
	}, nil
}

func (s service) EndSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.RemoveSession(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to remove session: %w", err)
	}

	s.logger.InfoContext(ctx, "watch session ended", "session_id", sessionID)

	return nil
}

func (s service) getSession(ctx context.Context, sessionID string) (session.Session, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return session.Session{}, ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}

func (s service) markAttended(ctx context.Context, enrolmentID int, memberToken string) {
	if err := s.backend.MarkAttended(ctx, enrolmentID, memberToken); err != nil {
		s.logger.WarnContext(ctx, "failed to mark attendance",
			"enrolment_id", enrolmentID,
			"error", err,
		)
	}
}

func (s service) response(sessionID string, record *AccessRecord, state ViewState) AccessResponse {
	startsAt, endsAt := s.classifier.Window(record)

	resp := AccessResponse{
		SessionID: sessionID,
		State:     state,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
	}

	switch state {
	case StateStreaming:
		resp.StreamURL = record.StreamURL
		resp.FallbackStreamURL = record.FallbackStreamURL
	case StateExpired:
		resp.Notice = expiredNotice()
	case StateNoMedia:
		resp.Notice = noMediaNotice()
	}

	return resp
}

func recordFromGrant(grant *backend.AccessGrant) (AccessRecord, error) {
	eventDate, err := time.ParseInLocation("2006-01-02", grant.EventDate, time.Local)
	if err != nil {
		return AccessRecord{}, fmt.Errorf("failed to parse event date %q: %w", grant.EventDate, err)
	}

	startTime, err := parseClock(grant.StartTime)
	if err != nil {
		return AccessRecord{}, fmt.Errorf("failed to parse start time %q: %w", grant.StartTime, err)
	}

	code := DurationSessions
	if grant.DurationCode == string(DurationHours) {
		code = DurationHours
	}

	return AccessRecord{
		SeminarID:         grant.SeminarID,
		ClientID:          grant.ClientID,
		EnrolmentID:       grant.EnrolmentID,
		EventDate:         eventDate,
		StartTime:         startTime,
		DurationCode:      code,
		DurationQuantity:  grant.DurationQuantity,
		Streamable:        grant.Streamable,
		StreamingEnabled:  grant.Streaming,
		StreamURL:         grant.StreamURL,
		FallbackStreamURL: grant.AdaptiveStreamURL,
	}, nil
}

func parseClock(value string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}

	return 0, fmt.Errorf("unrecognized clock value %q", value)
}

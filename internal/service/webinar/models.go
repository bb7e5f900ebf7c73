package webinar

import "time"

// ViewState is the derived viewing state of a watch session. It is never
// persisted as authority: it is recomputed from the access record and the
// clock on every relevant change.
type ViewState string

const (
	StateAwaitingEmail ViewState = "awaiting_email"
	StateNotStarted    ViewState = "not_started"
	StateNoMedia       ViewState = "no_media"
	StateStreaming     ViewState = "streaming"
	StateExpired       ViewState = "expired"
)

type DurationCode string

const (
	// DurationHours means DurationQuantity is a plain hour count.
	DurationHours DurationCode = "hours"
	// DurationSessions is the legacy "session units" convention; see
	// Classifier for how units convert to hours.
	DurationSessions DurationCode = "sessions"
)

// AccessRecord is the server-computed summary of whether and how a viewer may
// stream a given webinar. StreamURL is only set when StreamingEnabled is true.
type AccessRecord struct {
	SeminarID         int
	ClientID          int
	EnrolmentID       int
	EventDate         time.Time
	StartTime         time.Duration
	DurationCode      DurationCode
	DurationQuantity  float64
	Streamable        bool
	StreamingEnabled  bool
	StreamURL         string
	FallbackStreamURL string
}

type RequestAccessParams struct {
	EventID     int
	Email       string
	MemberToken string
}

// AccessResponse is what the viewer's client receives after an access request
// or a refresh.
type AccessResponse struct {
	SessionID         string    `json:"session_id"`
	State             ViewState `json:"state"`
	StreamURL         string    `json:"stream_url,omitempty"`
	FallbackStreamURL string    `json:"fallback_stream_url,omitempty"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	Notice            *Notice   `json:"notice,omitempty"`
}

type ProgressParams struct {
	SessionID string
	// Position and Duration are playback seconds as reported by the player.
	Position float64
	Duration float64
}

// PlaybackRecovery tells the client how to continue after a media error.
type PlaybackRecovery struct {
	FallbackStreamURL string  `json:"fallback_stream_url,omitempty"`
	Notice            *Notice `json:"notice"`
}

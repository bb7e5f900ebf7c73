package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	methodRatingSubmission = "rating_submission"
	methodLoginAccess      = "login_access"
	methodAttended         = "attended"
	methodPostWebinarEmail = "email"

	defaultErrorText = "something went wrong, please try again"
	defaultTimeout   = 15 * time.Second
)

// Error carries the backend's human-readable rejection so callers can show it
// to the member verbatim.
type Error struct {
	Text      string
	AlertType string
}

func (e *Error) Error() string {
	return e.Text
}

type Config struct {
	BaseURL    string
	SiteKey    string
	RootDomain string
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	siteKey    string
	rootDomain string
	logger     *slog.Logger
}

func NewClient(cfg *Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		siteKey:    cfg.SiteKey,
		rootDomain: cfg.RootDomain,
		logger:     logger,
	}
}

type SubmitRatingParams struct {
	RequestID   string `json:"request_id,omitempty"`
	RatingValue string `json:"rating_value"`
	Comment     string `json:"rating_comment,omitempty"`
	MemberCode  string `json:"member_code,omitempty"`
	MemberEmail string `json:"member_email,omitempty"`
}

func (c *Client) SubmitRating(ctx context.Context, params *SubmitRatingParams) error {
	body := struct {
		Method  string `json:"method"`
		SiteKey string `json:"site_key"`
		*SubmitRatingParams
	}{methodRatingSubmission, c.siteKey, params}

	if _, err := c.postJSON(ctx, "organisation/rating", body); err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}

	return nil
}

type RequestAccessParams struct {
	EventID     int
	Email       string
	MemberToken string
}

// AccessGrant is the server-computed access record for a viewing session.
// StreamURL is only populated when Streaming is true.
type AccessGrant struct {
	SeminarID         int     `json:"seminar_id"`
	ClientID          int     `json:"client_id"`
	EnrolmentID       int     `json:"enrolment_id"`
	EventDate         string  `json:"event_date"`
	StartTime         string  `json:"start_time"`
	DurationCode      string  `json:"duration_code"`
	DurationQuantity  float64 `json:"duration_quantity"`
	Streamable        bool    `json:"streamable"`
	Streaming         bool    `json:"streaming"`
	StreamURL         string  `json:"stream_url"`
	AdaptiveStreamURL string  `json:"adaptive_stream_url"`
}

func (c *Client) RequestAccess(ctx context.Context, params *RequestAccessParams) (AccessGrant, error) {
	body := struct {
		Method      string `json:"method"`
		SiteKey     string `json:"site_key"`
		EventID     int    `json:"event_id"`
		Email       string `json:"event_delegate_email,omitempty"`
		MemberToken string `json:"session_member_token,omitempty"`
	}{methodLoginAccess, c.siteKey, params.EventID, params.Email, params.MemberToken}

	env, err := c.postJSON(ctx, "education/webinar-view", body)
	if err != nil {
		return AccessGrant{}, fmt.Errorf("failed to request webinar access: %w", err)
	}

	var grant AccessGrant
	if err := env.DecodeObject(&grant); err != nil {
		return AccessGrant{}, fmt.Errorf("failed to decode access grant: %w", err)
	}

	return grant, nil
}

func (c *Client) MarkAttended(ctx context.Context, enrolmentID int, memberToken string) error {
	return c.webinarAction(ctx, methodAttended, enrolmentID, memberToken)
}

func (c *Client) SendPostWebinarNotice(ctx context.Context, enrolmentID int, memberToken string) error {
	return c.webinarAction(ctx, methodPostWebinarEmail, enrolmentID, memberToken)
}

func (c *Client) webinarAction(ctx context.Context, method string, enrolmentID int, memberToken string) error {
	query := url.Values{}
	query.Set("method", method)
	query.Set("enrolment_id", strconv.Itoa(enrolmentID))
	query.Set("site_key", c.siteKey)
	query.Set("session_member_token", memberToken)

	endpoint := c.baseURL + "/education/webinar?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("failed to call webinar action %q: %w", method, err)
	}

	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*Envelope, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	return c.do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Root-Domain", c.rootDomain)
}

func (c *Client) do(req *http.Request) (*Envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// The legacy API answers some action calls with an empty body. That is an
	// implicit success.
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Envelope{Success: true}, nil
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if !env.Success {
		c.logger.DebugContext(req.Context(), "backend rejected request",
			"path", req.URL.Path,
			"alert_type", env.AlertType,
		)
		return &env, &Error{Text: env.ErrorText(defaultErrorText), AlertType: env.AlertType}
	}

	return &env, nil
}

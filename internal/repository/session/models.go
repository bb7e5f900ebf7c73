package session

// Session is the per-viewer watch session. It lets a page reload resume the
// same session and carries the debounce timestamp for the near-end notice.
type Session struct {
	ID                string `redis:"id"`
	EventID           int    `redis:"event_id"`
	EnrolmentID       int    `redis:"enrolment_id"`
	Email             string `redis:"email"`
	MemberToken       string `redis:"member_token"`
	State             string `redis:"state"`
	StreamURL         string `redis:"stream_url"`
	FallbackStreamURL string `redis:"fallback_stream_url"`
	NotifiedAt        int64  `redis:"notified_at"`
}

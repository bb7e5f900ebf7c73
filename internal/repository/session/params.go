package session

type SetSessionParams struct {
	ID                string
	EventID           int
	EnrolmentID       int
	Email             string
	MemberToken       string
	State             string
	StreamURL         string
	FallbackStreamURL string
}

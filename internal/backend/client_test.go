package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		BaseURL:    srv.URL,
		SiteKey:    "site-key-1",
		RootDomain: "portal.example.com",
	}, slog.Default())
}

func TestClient_SubmitRating(t *testing.T) {
	var gotBody map[string]any
	var gotRootDomain string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/organisation/rating", r.URL.Path)
		gotRootDomain = r.Header.Get("X-Root-Domain")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Write([]byte(`{"Success":true,"Msg":"thank you for your feedback"}`))
	})

	err := client.SubmitRating(context.Background(), &SubmitRatingParams{
		RequestID:   "42",
		RatingValue: "good",
		Comment:     "great session",
	})
	require.NoError(t, err)

	assert.Equal(t, "portal.example.com", gotRootDomain)
	assert.Equal(t, "rating_submission", gotBody["method"])
	assert.Equal(t, "site-key-1", gotBody["site_key"])
	assert.Equal(t, "good", gotBody["rating_value"])
	assert.Equal(t, "42", gotBody["request_id"])
}

func TestClient_SubmitRating_Rejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Success":false,"Msg":["rating already submitted"],"AlertType":"warning"}`))
	})

	err := client.SubmitRating(context.Background(), &SubmitRatingParams{RatingValue: "good"})
	require.Error(t, err)

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "rating already submitted", backendErr.Text)
	assert.Equal(t, "warning", backendErr.AlertType)
}

func TestClient_RequestAccess(t *testing.T) {
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/education/webinar-view", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Write([]byte(`{"Success":true,"Msg":{
			"seminar_id":200,"client_id":41808,"enrolment_id":555,
			"event_date":"2026-03-10","start_time":"10:00:00",
			"duration_code":"hours","duration_quantity":2,
			"streamable":true,"streaming":true,
			"stream_url":"https://cdn.example.com/live.m3u8"
		}}`))
	})

	grant, err := client.RequestAccess(context.Background(), &RequestAccessParams{
		EventID: 300,
		Email:   "member@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "login_access", gotBody["method"])
	assert.Equal(t, float64(300), gotBody["event_id"])
	assert.Equal(t, "member@example.com", gotBody["event_delegate_email"])

	assert.Equal(t, 200, grant.SeminarID)
	assert.Equal(t, 41808, grant.ClientID)
	assert.Equal(t, "2026-03-10", grant.EventDate)
	assert.True(t, grant.Streaming)
	assert.Equal(t, "https://cdn.example.com/live.m3u8", grant.StreamURL)
}

func TestClient_WebinarAction_EmptyBodyIsSuccess(t *testing.T) {
	var gotQuery map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/education/webinar", r.URL.Path)
		gotQuery = map[string]string{
			"method":               r.URL.Query().Get("method"),
			"enrolment_id":         r.URL.Query().Get("enrolment_id"),
			"site_key":             r.URL.Query().Get("site_key"),
			"session_member_token": r.URL.Query().Get("session_member_token"),
		}
		// The legacy API answers action calls with a bare 200.
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.MarkAttended(context.Background(), 555, "tok-1"))

	assert.Equal(t, "attended", gotQuery["method"])
	assert.Equal(t, "555", gotQuery["enrolment_id"])
	assert.Equal(t, "site-key-1", gotQuery["site_key"])
	assert.Equal(t, "tok-1", gotQuery["session_member_token"])
}

func TestClient_SendPostWebinarNotice_Rejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "email", r.URL.Query().Get("method"))
		w.Write([]byte(`{"Success":false,"Msg":"enrolment not found"}`))
	})

	err := client.SendPostWebinarNotice(context.Background(), 555, "tok-1")
	require.Error(t, err)

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "enrolment not found", backendErr.Text)
}

func TestClient_FallbackErrorText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Success":false,"Msg":{}}`))
	})

	err := client.SubmitRating(context.Background(), &SubmitRatingParams{RatingValue: "good"})
	require.Error(t, err)

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "something went wrong, please try again", backendErr.Text)
}

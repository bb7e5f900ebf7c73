package rating

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// encodeTdm reproduces the legacy link encoding chain: query string inside
// base64 inside percent-encoding.
func encodeTdm(requestID, ratingValue string) string {
	values := url.Values{}
	values.Set("request_id", requestID)
	values.Set("rating_value", ratingValue)

	encoded := base64.StdEncoding.EncodeToString([]byte(values.Encode()))

	return url.QueryEscape(encoded)
}

func TestExtract_TdmRoundTrip(t *testing.T) {
	expected := map[string]Rating{
		"1": RatingVeryBad,
		"2": RatingBad,
		"3": RatingAverage,
		"4": RatingGood,
		"5": RatingExcellent,
	}

	for digit, want := range expected {
		t.Run(digit, func(t *testing.T) {
			input := "/services/rating/tdm=" + encodeTdm("42", digit)

			payload := Extract(input)

			assert.Equal(t, want, payload.Rating)
			assert.Equal(t, "42", payload.RequestID)
		})
	}
}

func TestExtract_TdmBeatsTopLevelQuery(t *testing.T) {
	input := "/services/rating/tdm=" + encodeTdm("42", "5") + "?rating=bad&request_id=99"

	payload := Extract(input)

	assert.Equal(t, RatingExcellent, payload.Rating)
	assert.Equal(t, "42", payload.RequestID)
}

func TestExtract_TdmAsQueryParam(t *testing.T) {
	// base64 of "rating_value=4" has no '+' so the value survives the query
	// parser's own unescaping.
	encoded := base64.StdEncoding.EncodeToString([]byte("rating_value=4"))
	input := "/services/rating?tdm=" + encoded

	payload := Extract(input)

	assert.Equal(t, RatingGood, payload.Rating)
	assert.Empty(t, payload.RequestID)
}

func TestExtract_TdmUnknownValueDefaultsToAverage(t *testing.T) {
	input := "/services/rating/tdm=" + encodeTdm("7", "9")

	payload := Extract(input)

	assert.Equal(t, RatingAverage, payload.Rating)
	assert.Equal(t, "7", payload.RequestID)
}

func TestExtract_MalformedTdmDegradesGracefully(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid base64", "/services/rating/tdm=!!!not-base64!!!"},
		{"invalid percent encoding", "/services/rating/tdm=%zz"},
		{"base64 of garbage", "/services/rating/tdm=" + url.QueryEscape(base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, ';', ';'}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Extract(tt.input)

			assert.Equal(t, DefaultRating, payload.Rating)
			assert.Empty(t, payload.RequestID)
		})
	}
}

func TestExtract_Fallbacks(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantRating    Rating
		wantRequestID string
	}{
		{"bare keyword", "good", RatingGood, ""},
		{"bare digit", "3", RatingAverage, ""},
		{"bare digit excellent", "5", RatingExcellent, ""},
		{"garbage token", "unknown_garbage", RatingAverage, ""},
		{"empty input", "", RatingAverage, ""},
		{"whitespace only", "   ", RatingAverage, ""},
		{"rating query param", "/services/rating?rating=bad&request_id=7", RatingBad, "7"},
		{"digit query param", "/services/rating?rating=2", RatingBad, ""},
		{"unbalanced question mark", "?", RatingAverage, ""},
		{"path without token", "/services/rating/feedback", RatingAverage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Extract(tt.input)

			assert.Equal(t, tt.wantRating, payload.Rating)
			assert.Equal(t, tt.wantRequestID, payload.RequestID)
		})
	}
}

func FuzzExtract(f *testing.F) {
	f.Add("")
	f.Add("good")
	f.Add("/services/rating/tdm=AAAA?rating=1")
	f.Add("?tdm=%%%&rating=5")
	f.Add("/services/rating/tdm=" + encodeTdm("42", "5"))

	valid := map[Rating]bool{
		RatingVeryBad:   true,
		RatingBad:       true,
		RatingAverage:   true,
		RatingGood:      true,
		RatingExcellent: true,
	}

	f.Fuzz(func(t *testing.T, input string) {
		payload := Extract(input)

		if !valid[payload.Rating] {
			t.Errorf("Extract(%q) returned rating %q outside the enum", input, payload.Rating)
		}
	})
}

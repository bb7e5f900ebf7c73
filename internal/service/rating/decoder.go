package rating

import (
	"encoding/base64"
	"net/url"
	"strings"
)

type Rating string

const (
	RatingVeryBad   Rating = "very_bad"
	RatingBad       Rating = "bad"
	RatingAverage   Rating = "average"
	RatingGood      Rating = "good"
	RatingExcellent Rating = "excellent"
)

// DefaultRating is what a broken or tampered link dilutes to. A malformed
// emailed link must never break the rating flow.
const DefaultRating = RatingAverage

var ratingByDigit = map[string]Rating{
	"1": RatingVeryBad,
	"2": RatingBad,
	"3": RatingAverage,
	"4": RatingGood,
	"5": RatingExcellent,
}

var ratingByKeyword = map[string]Rating{
	string(RatingVeryBad):   RatingVeryBad,
	string(RatingBad):       RatingBad,
	string(RatingAverage):   RatingAverage,
	string(RatingGood):      RatingGood,
	string(RatingExcellent): RatingExcellent,
}

const tdmSegmentPrefix = "tdm="

// Payload is the decoded content of a rating deep link.
type Payload struct {
	Rating    Rating `json:"rating"`
	RequestID string `json:"request_id,omitempty"`
}

// Extract decodes a rating deep link into a Payload. The input may be a path
// ("/services/rating/<token>"), a path with a query string, or a bare rating
// keyword or digit. Extract is total: every input produces a valid Payload
// and decoding failures degrade to DefaultRating with no request id.
//
// The "tdm" parameter carries the legacy PHP-era payload: a query string,
// base64-encoded, then percent-encoded. Values embedded in it take priority
// over top-level "rating"/"request_id" query parameters.
func Extract(input string) Payload {
	trimmed := strings.TrimSpace(input)

	path := trimmed
	params := url.Values{}
	if i := strings.Index(trimmed, "?"); i >= 0 {
		path = trimmed[:i]
		// ParseQuery fills in whatever pairs it managed to read before an
		// error; a half-broken query string still yields its good pairs.
		parsed, _ := url.ParseQuery(trimmed[i+1:])
		params = parsed
	}

	tdm := params.Get("tdm")
	if tdm != "" {
		params.Del("tdm")
	} else {
		for _, segment := range strings.Split(path, "/") {
			if strings.HasPrefix(segment, tdmSegmentPrefix) {
				tdm = strings.TrimPrefix(segment, tdmSegmentPrefix)
				break
			}
		}
	}

	if tdm != "" {
		if payload, ok := decodeTdm(tdm); ok {
			return payload
		}
		return Payload{Rating: DefaultRating}
	}

	token := params.Get("rating")
	if token == "" {
		token = trimmed
	}

	rating, ok := ratingByKeyword[token]
	if !ok {
		rating, ok = ratingByDigit[token]
	}
	if !ok {
		rating = DefaultRating
	}

	return Payload{Rating: rating, RequestID: params.Get("request_id")}
}

func decodeTdm(value string) (Payload, bool) {
	unescaped, err := url.QueryUnescape(value)
	if err != nil {
		return Payload{}, false
	}

	decoded, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return Payload{}, false
	}

	fields, err := url.ParseQuery(string(decoded))
	if err != nil {
		return Payload{}, false
	}

	rating, ok := ratingByDigit[fields.Get("rating_value")]
	if !ok {
		rating = DefaultRating
	}

	return Payload{Rating: rating, RequestID: fields.Get("request_id")}, true
}

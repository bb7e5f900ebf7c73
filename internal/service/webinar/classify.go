package webinar

import "time"

const (
	defaultEarlyAccessGrace  = 10 * time.Minute
	defaultLegacyStartOffset = 120 * time.Minute

	// Session-unit webinars under 2 units were booked on a legacy scale
	// where one unit covered most of a working day.
	legacySessionUnitHours = 9
)

// legacyClientIDs are historical accounts whose webinar start times were
// recorded 120 minutes late at the backend. Data-compatibility shim: do not
// extend without checking the source records.
var legacyClientIDs = map[int]struct{}{
	33417: {},
	35006: {},
	38121: {},
	39284: {},
	40155: {},
	41808: {},
}

// offsetExemptSeminarIDs are seminars excluded from the legacy client offset.
var offsetExemptSeminarIDs = map[int]struct{}{
	104: {},
	105: {},
}

// Classifier derives a ViewState from an access record and the current time.
// The special-case tables are injected so they can be swapped in tests or
// retired without touching the classification flow.
type Classifier struct {
	Grace                  time.Duration
	LegacyOffset           time.Duration
	LegacyClientIDs        map[int]struct{}
	OffsetExemptSeminarIDs map[int]struct{}
}

func NewClassifier() *Classifier {
	return &Classifier{
		Grace:                  defaultEarlyAccessGrace,
		LegacyOffset:           defaultLegacyStartOffset,
		LegacyClientIDs:        legacyClientIDs,
		OffsetExemptSeminarIDs: offsetExemptSeminarIDs,
	}
}

// Classify evaluates the state checks in order; the first match wins.
// A record outside its streamable period is expired no matter what the
// time window says.
func (c *Classifier) Classify(record *AccessRecord, now time.Time) ViewState {
	if !record.Streamable {
		return StateExpired
	}

	if now.Before(c.WindowStart(record)) {
		return StateNotStarted
	}

	if !record.StreamingEnabled {
		return StateNoMedia
	}

	return StateStreaming
}

// WindowStart returns the moment the viewer may start watching: the naive
// local combination of event date and start time, shifted back by the legacy
// client offset where it applies and by the early-access grace period.
func (c *Classifier) WindowStart(record *AccessRecord) time.Time {
	start := record.EventDate.Add(record.StartTime)

	if c.offsetApplies(record) {
		start = start.Add(-c.LegacyOffset)
	}

	return start.Add(-c.Grace)
}

// Window returns the viewing window. The end is anchored to the scheduled
// start, not the adjusted one.
func (c *Classifier) Window(record *AccessRecord) (time.Time, time.Time) {
	scheduled := record.EventDate.Add(record.StartTime)

	return c.WindowStart(record), scheduled.Add(c.duration(record))
}

func (c *Classifier) offsetApplies(record *AccessRecord) bool {
	if _, exempt := c.OffsetExemptSeminarIDs[record.SeminarID]; exempt {
		return false
	}

	_, legacy := c.LegacyClientIDs[record.ClientID]

	return legacy
}

func (c *Classifier) duration(record *AccessRecord) time.Duration {
	hours := record.DurationQuantity
	if record.DurationCode != DurationHours && record.DurationQuantity < 2 {
		hours = record.DurationQuantity * legacySessionUnitHours
	}

	return time.Duration(hours * float64(time.Hour))
}

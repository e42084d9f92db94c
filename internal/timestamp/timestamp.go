// Package timestamp normalizes the timestamp representations found in behavioral
// logs and capture exports: full datetimes, bare times of day, clock durations and
// plain decimal seconds (with either '.' or ',' as decimal separator).
package timestamp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

// ErrUnparsable is returned when a value matches none of the recognized forms.
var ErrUnparsable = errors.NewStd("unrecognized timestamp")

// Kind tells which form an Instant was parsed from.
type Kind int

const (
	// KindDateTime carries a calendar date.
	KindDateTime Kind = iota
	// KindTimeOfDay only carries a clock time and must be placed on a reference day.
	KindTimeOfDay
)

// Instant is a parsed log timestamp.
type Instant struct {
	Time time.Time
	Kind Kind
}

// OnDay places a time-of-day instant on the calendar day of ref (in ref's location).
// Datetime instants are returned unchanged.
func (i Instant) OnDay(ref time.Time) time.Time {
	if i.Kind != KindTimeOfDay {
		return i.Time
	}
	y, m, d := ref.Date()
	h, mi, s := i.Time.Clock()
	return time.Date(y, m, d, h, mi, s, i.Time.Nanosecond(), ref.Location())
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05.999999999",
	"01/02/2006 15:04:05.999999999",
	"01/02/2006 15:04",
	"1/2/06 15:04:05.999999999",
	"1/2/06 15:04",
	"2006-01-02",
}

var timeOfDayLayouts = []string{
	"15:04:05.999999999",
	"15:04",
	"3:04:05.999999999 PM",
	"3:04 PM",
}

// Parser converts log cell text into instants. Naive datetimes and times of day
// are interpreted in Location.
type Parser struct {
	Location *time.Location
}

// NewParser returns a parser for the given location; nil means UTC.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{Location: loc}
}

// ParseInstant parses a log timestamp. A full datetime is tried first, then a bare
// time of day. The result never panics; failures return ErrUnparsable wrapped with
// the offending text.
func (p *Parser) ParseInstant(value string) (Instant, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Instant{}, parseError(value, "empty")
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, p.Location); err == nil {
			return Instant{Time: t, Kind: KindDateTime}, nil
		}
	}

	for _, layout := range timeOfDayLayouts {
		if t, err := time.ParseInLocation(layout, s, p.Location); err == nil {
			return Instant{Time: t, Kind: KindTimeOfDay}, nil
		}
	}

	return Instant{}, parseError(value, "no datetime or time-of-day form matched")
}

// clockPattern matches [-][D days ]H:MM:SS[.fff] and MM:SS[.fff] clock durations.
var clockPattern = regexp.MustCompile(`^(-)?(?:(\d+)\s*days?,?\s*)?(?:(\d+):)?(\d{1,2}):(\d{1,2}(?:[.,]\d+)?)$`)

// ParseOffset parses a frame-relative offset and returns seconds. Text containing a
// colon is read as a clock duration ("00:00:01.008333"); anything else is read as a
// decimal number, accepting ',' as the decimal separator. NaN and infinities fail.
func ParseOffset(value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, parseError(value, "empty")
	}

	if strings.Contains(s, ":") {
		return parseClock(value, s)
	}

	secs, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, parseError(value, "not a decimal number")
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, parseError(value, "not a finite number")
	}
	return secs, nil
}

func parseClock(raw, s string) (float64, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, parseError(raw, "malformed clock duration")
	}

	var days, hours float64
	if m[2] != "" {
		days, _ = strconv.ParseFloat(m[2], 64)
	}
	if m[3] != "" {
		hours, _ = strconv.ParseFloat(m[3], 64)
	}
	minutes, _ := strconv.ParseFloat(m[4], 64)
	seconds, err := strconv.ParseFloat(strings.ReplaceAll(m[5], ",", "."), 64)
	if err != nil {
		return 0, parseError(raw, "malformed seconds")
	}
	if minutes >= 60 || seconds >= 60 {
		return 0, parseError(raw, "minutes or seconds out of range")
	}

	total := days*86400 + hours*3600 + minutes*60 + seconds
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// SecondsToDuration converts fractional seconds to a Duration rounded to the nanosecond.
func SecondsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * float64(time.Second)))
}

// FormatClock renders t as HH:MM:SS.mmm (milliseconds truncated).
func FormatClock(t time.Time) string {
	return t.Format("15:04:05.000")
}

func parseError(value, reason string) error {
	return errors.New(fmt.Errorf("%w %q: %s", ErrUnparsable, value, reason)).
		Category(errors.CategoryParse).
		Component("timestamp").
		Context("value", value).
		Context("reason", reason).
		Build()
}

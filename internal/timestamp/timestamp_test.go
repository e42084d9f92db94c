package timestamp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

func TestParseInstant(t *testing.T) {
	t.Parallel()

	p := NewParser(time.UTC)

	tests := []struct {
		name  string
		input string
		kind  Kind
		want  time.Time
	}{
		{"iso with fraction", "2025-09-25T14:00:00.480", KindDateTime, time.Date(2025, 9, 25, 14, 0, 0, 480e6, time.UTC)},
		{"iso with zone", "2025-09-25T14:00:00Z", KindDateTime, time.Date(2025, 9, 25, 14, 0, 0, 0, time.UTC)},
		{"space separated", "2025-09-25 14:00:01.5", KindDateTime, time.Date(2025, 9, 25, 14, 0, 1, 500e6, time.UTC)},
		{"us date", "09/25/2025 14:00:02", KindDateTime, time.Date(2025, 9, 25, 14, 0, 2, 0, time.UTC)},
		{"time of day millis", "16:09:17.422", KindTimeOfDay, time.Date(0, 1, 1, 16, 9, 17, 422e6, time.UTC)},
		{"time of day whole", " 16:09:17 ", KindTimeOfDay, time.Date(0, 1, 1, 16, 9, 17, 0, time.UTC)},
		{"time of day minutes", "16:09", KindTimeOfDay, time.Date(0, 1, 1, 16, 9, 0, 0, time.UTC)},
		{"twelve hour clock", "4:09:17 PM", KindTimeOfDay, time.Date(0, 1, 1, 16, 9, 17, 0, time.UTC)},
		{"spreadsheet short date", "9/25/25 14:00", KindDateTime, time.Date(2025, 9, 25, 14, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := p.ParseInstant(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.True(t, tt.want.Equal(got.Time), "want %v got %v", tt.want, got.Time)
		})
	}
}

func TestParseInstantFailures(t *testing.T) {
	t.Parallel()

	p := NewParser(nil)
	for _, input := range []string{"", "   ", "nan", "yesterday", "25:61:00", "QTM Start Command Sent"} {
		_, err := p.ParseInstant(input)
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, ErrUnparsable)
		assert.True(t, errors.IsCategory(err, errors.CategoryParse))
	}
}

func TestOnDay(t *testing.T) {
	t.Parallel()

	p := NewParser(time.UTC)
	tod, err := p.ParseInstant("14:00:00.480")
	require.NoError(t, err)

	ref := time.Date(2025, 9, 25, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 9, 25, 14, 0, 0, 480e6, time.UTC), tod.OnDay(ref))

	full, err := p.ParseInstant("2024-01-02 03:04:05")
	require.NoError(t, err)
	assert.Equal(t, full.Time, full.OnDay(ref), "datetime instants ignore the reference day")
}

func TestParseOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  float64
	}{
		{"0.000", 0},
		{"0.5", 0.5},
		{"1,25", 1.25},
		{" 12 ", 12},
		{"00:00:00.008333", 0.008333},
		{"00:00:01,5", 1.5},
		{"01:02:03", 3723},
		{"02:03.5", 123.5},
		{"1 days 00:00:01", 86401},
		{"-00:00:01", -1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOffset(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseOffsetFailures(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "NaN", "nan", "inf", "-Inf", "abc", "1,234.5", "00:99:00", "::", "Time"} {
		_, err := ParseOffset(input)
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, ErrUnparsable)
	}
}

func TestSecondsToDurationAndFormat(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 9, 25, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, 500*time.Millisecond, SecondsToDuration(0.5))
	assert.Equal(t, 8333*time.Microsecond, SecondsToDuration(0.008333))
	assert.Equal(t, "14:00:00.500", FormatClock(anchor.Add(SecondsToDuration(0.5))))
	assert.Equal(t, "14:00:00.008", FormatClock(anchor.Add(SecondsToDuration(0.008333))))
	assert.Equal(t, "14:00:01.000", FormatClock(anchor.Add(SecondsToDuration(1))))
	assert.False(t, math.IsNaN(SecondsToDuration(0).Seconds()))
}

package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference time for all tests: Tuesday 2024-03-12 10:30 local.
var testNow = time.Date(2024, 3, 12, 10, 30, 0, 0, time.Local)

func TestParse_Now(t *testing.T) {
	r, err := Parse("now", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, r.Time)
	assert.Equal(t, 3, r.Consumed)

	r, err = Parse("now until 22:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, r.Time)
	assert.Equal(t, 3, r.Consumed)
}

func TestParse_Relative(t *testing.T) {
	tests := []struct {
		input    string
		want     time.Time
		consumed int
	}{
		{"in 30 minutes", testNow.Add(30 * time.Minute), len("in 30 minutes")},
		{"in 1 hour", testNow.Add(time.Hour), len("in 1 hour")},
		{"in 2 days", testNow.Add(48 * time.Hour), len("in 2 days")},
		{"in 1 week", testNow.Add(7 * 24 * time.Hour), len("in 1 week")},
		{"in 45 secs", testNow.Add(45 * time.Second), len("in 45 secs")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := Parse(tt.input, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Time)
			assert.Equal(t, tt.consumed, r.Consumed)
		})
	}
}

func TestParse_RelativeWithTrailingText(t *testing.T) {
	r, err := Parse("in 2 hours disk replacement", testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(2*time.Hour), r.Time)
	assert.Equal(t, "disk replacement", trimLeftSpace("in 2 hours disk replacement"[r.Consumed:]))
}

func TestParse_Absolute(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-15 18:00", time.Date(2024, 3, 15, 18, 0, 0, 0, time.Local)},
		{"2024-03-15 18:00:30", time.Date(2024, 3, 15, 18, 0, 30, 0, time.Local)},
		{"15.03.2024 18:00", time.Date(2024, 3, 15, 18, 0, 0, 0, time.Local)},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{"15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := Parse(tt.input, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Time)
			assert.Equal(t, len(tt.input), r.Consumed)
		})
	}
}

func TestParse_DayWords(t *testing.T) {
	midnight := time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)

	r, err := Parse("today", testNow)
	require.NoError(t, err)
	assert.Equal(t, midnight, r.Time)

	r, err = Parse("tomorrow", testNow)
	require.NoError(t, err)
	assert.Equal(t, midnight.AddDate(0, 0, 1), r.Time)

	r, err = Parse("tomorrow 14:30", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 13, 14, 30, 0, 0, time.Local), r.Time)
	assert.Equal(t, len("tomorrow 14:30"), r.Consumed)
}

func TestParse_ClockOnly(t *testing.T) {
	// Future clock time resolves to today.
	r, err := Parse("17:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 12, 17, 0, 0, 0, time.Local), r.Time)

	// A time already in the past rolls to the next day.
	r, err = Parse("08:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 13, 8, 0, 0, 0, time.Local), r.Time)

	// am/pm markers work without minutes.
	r, err = Parse("5pm", testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 12, 17, 0, 0, 0, time.Local), r.Time)
}

func TestParse_BareNumberIsNotAClock(t *testing.T) {
	// "5" alone must not be read as five o'clock; the natural-language
	// fallback does not treat it as a date either.
	_, err := Parse("5", testNow)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParse_Unparseable(t *testing.T) {
	for _, input := range []string{"", "garbage text", "replace the disk"} {
		_, err := Parse(input, testNow)
		assert.ErrorIs(t, err, ErrUnparseable, "input %q", input)
	}
}

func trimLeftSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	return s
}

// Package timeparse turns free-text time expressions into absolute
// timestamps. Parsing is a pure function of the input text and a reference
// time, and reports how many bytes of input were consumed so callers can
// recover trailing non-date text (e.g. a comment appended on the same line).
package timeparse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnparseable is returned when no date expression is found in the input.
var ErrUnparseable = errors.New("timeparse: no date expression found")

// Result is a parsed timestamp plus the number of input bytes the date
// expression occupied, counted from the start of the input.
type Result struct {
	Time     time.Time
	Consumed int
}

// durationUnits maps unit words of "in N <unit>" expressions.
var durationUnits = map[string]time.Duration{
	"second": time.Second,
	"sec":    time.Second,
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

var (
	relativePattern = regexp.MustCompile(`^in\s+(\d+)\s+(second|sec|minute|min|hour|day|week)s?\b`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)?\b`)
)

// absoluteLayouts are tried in order against the matching number of leading
// whitespace-separated tokens.
var absoluteLayouts = []struct {
	layout string
	tokens int
}{
	{"2006-01-02 15:04:05", 2},
	{"2006-01-02 15:04", 2},
	{"02.01.2006 15:04", 2},
	{"2006-01-02", 1},
	{"02.01.2006", 1},
}

// Parse extracts a date expression from the start of text, relative to now.
// Deterministic rules ("in N minutes", absolute layouts, today/tomorrow,
// bare clock times) are tried first; everything else falls through to the
// natural-language grammar, which may also match past a non-date prefix.
func Parse(text string, now time.Time) (*Result, error) {
	trimmed := strings.TrimLeft(text, " \t")
	offset := len(text) - len(trimmed)

	if r := parseNow(trimmed, now); r != nil {
		r.Consumed += offset
		return r, nil
	}
	if r := parseRelative(trimmed, now); r != nil {
		r.Consumed += offset
		return r, nil
	}
	if r := parseAbsolute(trimmed, now); r != nil {
		r.Consumed += offset
		return r, nil
	}
	if r := parseDayWord(trimmed, now); r != nil {
		r.Consumed += offset
		return r, nil
	}
	if r := parseClockOnly(trimmed, now); r != nil {
		r.Consumed += offset
		return r, nil
	}
	return parseNatural(text, now)
}

// parseNow handles the literal "now" keyword.
func parseNow(text string, now time.Time) *Result {
	lower := strings.ToLower(text)
	if lower != "now" && !strings.HasPrefix(lower, "now ") && !strings.HasPrefix(lower, "now\t") {
		return nil
	}
	return &Result{Time: now, Consumed: len("now")}
}

// parseRelative handles "in N <unit>" offsets from now.
func parseRelative(text string, now time.Time) *Result {
	m := relativePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &Result{
		Time:     now.Add(time.Duration(n) * durationUnits[m[2]]),
		Consumed: len(m[0]),
	}
}

// parseAbsolute tries explicit date layouts against leading tokens.
func parseAbsolute(text string, now time.Time) *Result {
	fields := strings.Fields(text)
	for _, candidate := range absoluteLayouts {
		if len(fields) < candidate.tokens {
			continue
		}
		joined := strings.Join(fields[:candidate.tokens], " ")
		ts, err := time.ParseInLocation(candidate.layout, joined, now.Location())
		if err != nil {
			continue
		}
		return &Result{Time: ts, Consumed: consumedLen(text, candidate.tokens)}
	}
	return nil
}

// parseDayWord handles "today" and "tomorrow", each with an optional
// trailing clock time. Without a clock the timestamp falls on midnight.
func parseDayWord(text string, now time.Time) *Result {
	lower := strings.ToLower(text)
	var dayOffset int
	var word string
	switch {
	case strings.HasPrefix(lower, "tomorrow"):
		word, dayOffset = "tomorrow", 1
	case strings.HasPrefix(lower, "today"):
		word, dayOffset = "today", 0
	default:
		return nil
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, dayOffset)
	consumed := len(word)

	rest := strings.TrimLeft(text[consumed:], " \t")
	if hour, minute, n := parseClock(rest); n > 0 {
		day = day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
		consumed = len(text) - len(rest) + n
	}
	return &Result{Time: day, Consumed: consumed}
}

// parseClockOnly handles a bare clock time like "17:00" or "9:30pm",
// resolved against today. A time already in the past rolls to the next day.
func parseClockOnly(text string, now time.Time) *Result {
	// Require an explicit minute part or am/pm marker so a bare number is
	// never mistaken for a time of day.
	if !strings.Contains(text, ":") && !strings.Contains(strings.ToLower(text), "am") && !strings.Contains(strings.ToLower(text), "pm") {
		return nil
	}
	hour, minute, n := parseClock(text)
	if n == 0 {
		return nil
	}
	ts := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if ts.Before(now) {
		ts = ts.AddDate(0, 0, 1)
	}
	return &Result{Time: ts, Consumed: n}
}

// parseClock reads a leading clock expression and returns the consumed byte
// count, or 0 when none matches.
func parseClock(text string) (hour, minute, consumed int) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, 0, 0
	}
	// A bare number without minutes or am/pm is too ambiguous to accept.
	if m[2] == "" && m[3] == "" {
		return 0, 0, 0
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, 0
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, minute, len(m[0])
}

// parseNatural delegates to the natural-language date grammar.
func parseNatural(text string, now time.Time) (*Result, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(text, now)
	if err != nil || r == nil {
		return nil, ErrUnparseable
	}
	return &Result{Time: r.Time, Consumed: r.Index + len(r.Text)}, nil
}

// consumedLen returns the byte length of the first n whitespace-separated
// tokens of text, including the separators between them.
func consumedLen(text string, n int) int {
	rest := text
	consumed := 0
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			idx = len(rest)
		}
		rest = rest[idx:]
	}
	consumed = len(text) - len(rest)
	return consumed
}

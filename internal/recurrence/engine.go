package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/hr-delegation/internal/schedule"
)

const defaultMaxOccurrences = 1000

// ErrInvalidRule indicates the RRULE text could not be parsed.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// ErrInvalidWindow indicates the expansion window ends before it starts.
var ErrInvalidWindow = errors.New("recurrence: window end is before start")

// Engine expands RFC 5545 recurrence rules anchored on calendar dates.
// Expansion happens at midnight UTC so results are independent of the host zone.
type Engine struct {
	maxOccurrences int
}

// NewEngine constructs an Engine. A non-positive cap uses the default of 1000
// occurrences per rule.
func NewEngine(maxOccurrences int) *Engine {
	if maxOccurrences <= 0 {
		maxOccurrences = defaultMaxOccurrences
	}
	return &Engine{maxOccurrences: maxOccurrences}
}

// Normalize trims an optional "RRULE:" prefix and upper-cases the rule text.
func Normalize(rule string) string {
	rule = strings.TrimSpace(rule)
	if len(rule) >= 6 && strings.EqualFold(rule[:6], "RRULE:") {
		rule = rule[6:]
	}
	return strings.ToUpper(strings.TrimSpace(rule))
}

// Validate reports whether rule parses as an RRULE.
func Validate(rule string) error {
	_, err := parse(rule, schedule.Date{Year: 2000, Month: time.January, Day: 1})
	return err
}

// Dates returns the occurrence dates of rule, first occurring on first, that fall
// within [from, to] inclusive, in ascending order. The result is capped; the
// second return value reports whether the cap was hit.
func (e *Engine) Dates(rule string, first, from, to schedule.Date) ([]schedule.Date, bool, error) {
	if to.Before(from) {
		return nil, false, ErrInvalidWindow
	}
	parsed, err := parse(rule, first)
	if err != nil {
		return nil, false, err
	}

	var set rrule.Set
	set.RRule(parsed)

	times := set.Between(from.At(0, time.UTC), to.At(0, time.UTC), true)
	truncated := false
	if len(times) > e.maxOccurrences {
		times = times[:e.maxOccurrences]
		truncated = true
	}

	dates := make([]schedule.Date, 0, len(times))
	for _, t := range times {
		dates = append(dates, schedule.DateOf(t.UTC()))
	}
	return dates, truncated, nil
}

// OccursOn reports whether rule, first occurring on first, has an occurrence on day.
func (e *Engine) OccursOn(rule string, first, day schedule.Date) (bool, error) {
	dates, _, err := e.Dates(rule, first, day, day)
	if err != nil {
		return false, err
	}
	return len(dates) > 0, nil
}

func parse(rule string, first schedule.Date) (*rrule.RRule, error) {
	normalized := Normalize(rule)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty rule", ErrInvalidRule)
	}
	parsed, err := rrule.StrToRRule(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	parsed.DTStart(first.At(0, time.UTC))
	return parsed, nil
}

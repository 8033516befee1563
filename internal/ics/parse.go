package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/hr-delegation/internal/schedule"
)

// ErrEmptyFeed is returned when the payload carries no data.
var ErrEmptyFeed = errors.New("ics: empty feed")

// ImportedEvent is a VEVENT normalized to a calendar date. Timed events keep
// their clock bounds on the start date; all-day events leave them nil.
type ImportedEvent struct {
	UID         string
	Summary     string
	Description string
	Categories  []string
	Date        schedule.Date
	Start       *schedule.ClockTime
	End         *schedule.ClockTime
	RRule       string
}

// SkippedEvent records a VEVENT that could not be imported.
type SkippedEvent struct {
	UID    string
	Reason string
}

// Parse reads VEVENTs from body. Times are converted into loc before the date is
// taken; a nil loc uses UTC. Events that cannot be normalized are reported in the
// second return value and do not fail the import.
func Parse(body []byte, loc *time.Location) ([]ImportedEvent, []SkippedEvent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil, ErrEmptyFeed
	}
	if loc == nil {
		loc = time.UTC
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("ics: parse calendar: %w", err)
	}

	var (
		events  []ImportedEvent
		skipped []SkippedEvent
	)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve, loc)
		if perr != nil {
			skipped = append(skipped, SkippedEvent{UID: ev.UID, Reason: perr.Error()})
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (ImportedEvent, error) {
	var out ImportedEvent
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out.Categories = append(out.Categories, c)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = strings.TrimSpace(p.Value)
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, errors.New("missing DTSTART")
	}

	if isAllDay(dtStart) {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return out, fmt.Errorf("invalid DTSTART: %w", err)
		}
		out.Date = schedule.DateOf(start)
		return out, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("invalid DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("invalid DTEND: %w", err)
	}
	start, end = start.In(loc), end.In(loc)
	out.Date = schedule.DateOf(start)

	if schedule.DateOf(end).Equal(out.Date) {
		startClock, endClock := schedule.ClockOf(start), schedule.ClockOf(end)
		if startClock < endClock {
			out.Start = &startClock
			out.End = &endClock
		}
	}
	return out, nil
}

func isAllDay(prop *ical.IANAProperty) bool {
	if values, ok := prop.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// Package ics converts meetings and calendar entries to and from iCalendar feeds.
package ics

import (
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/hr-delegation/internal/schedule"
)

// ProductID identifies feeds produced by this service.
const ProductID = "-//hrdesk//delegation desk//EN"

// Entry is one VEVENT to render. AllDay entries span their whole Date; timed
// entries use Window.
type Entry struct {
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Categories  []string
	Date        schedule.Date
	Window      *schedule.Window
	RRule       string
	Cancelled   bool
	Stamp       time.Time
}

// Export renders entries as a text/calendar document. Times are written in loc;
// a nil loc uses UTC. Entries are sorted by date then UID so output is stable.
func Export(entries []Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := ordered[i].Date.Compare(ordered[j].Date); c != 0 {
			return c < 0
		}
		return ordered[i].UID < ordered[j].UID
	})

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, entry := range ordered {
		ev := cal.AddEvent(entry.UID)
		ev.SetDtStampTime(entry.Stamp.UTC())
		ev.SetSummary(entry.Summary)
		if entry.Description != "" {
			ev.SetDescription(entry.Description)
		}
		if entry.Location != "" {
			ev.SetLocation(entry.Location)
		}
		if entry.URL != "" {
			ev.SetURL(entry.URL)
		}
		if len(entry.Categories) > 0 {
			ev.AddProperty(ical.ComponentPropertyCategories, strings.Join(entry.Categories, ","))
		}

		if entry.Window != nil {
			ev.SetStartAt(entry.Window.StartTime(loc))
			ev.SetEndAt(entry.Window.EndTime(loc))
		} else {
			ev.SetAllDayStartAt(entry.Date.At(0, loc))
			ev.SetAllDayEndAt(entry.Date.AddDays(1).At(0, loc))
		}

		if entry.RRule != "" {
			ev.AddRrule(entry.RRule)
		}
		if entry.Cancelled {
			ev.SetStatus(ical.ObjectStatusCancelled)
		} else {
			ev.SetStatus(ical.ObjectStatusConfirmed)
		}
	}

	return cal.Serialize()
}

package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// DayStatus is the status kind of a calendar entry.
type DayStatus string

const (
	// FullDayHoliday closes the whole day.
	FullDayHoliday DayStatus = "FullDayHoliday"
	// HalfDayHoliday closes part of the day.
	HalfDayHoliday DayStatus = "HalfDayHoliday"
	// WorkingDay is an ordinary working day.
	WorkingDay DayStatus = "WorkingDay"
)

// ParseDayStatus accepts the canonical names case-insensitively.
func ParseDayStatus(value string) (DayStatus, error) {
	for _, candidate := range []DayStatus{FullDayHoliday, HalfDayHoliday, WorkingDay} {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("schedule: unknown day status %q", value)
}

// Severity orders day statuses: FullDayHoliday(3) > HalfDayHoliday(2) > WorkingDay(1).
func (s DayStatus) Severity() int {
	switch s {
	case FullDayHoliday:
		return 3
	case HalfDayHoliday:
		return 2
	case WorkingDay:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses.
func (s DayStatus) Valid() bool {
	return s.Severity() > 0
}

// DayEvent is the reduction input: one calendar entry targeting the day.
type DayEvent struct {
	Status      DayStatus
	Departments []string
}

// DayResolution is the single display status for a date.
type DayResolution struct {
	Status      DayStatus
	Departments []string
	// Assigned is false when no entry targeted the day.
	Assigned bool
}

// ResolveDay reduces the events of one date to the highest-severity status.
// Departments of every event sharing that severity are merged.
func ResolveDay(events []DayEvent) DayResolution {
	best := 0
	for _, event := range events {
		if sev := event.Status.Severity(); sev > best {
			best = sev
		}
	}
	if best == 0 {
		return DayResolution{Status: WorkingDay, Departments: []string{}}
	}

	seen := make(map[string]struct{})
	departments := make([]string, 0)
	var status DayStatus
	for _, event := range events {
		if event.Status.Severity() != best {
			continue
		}
		status = event.Status
		for _, dept := range event.Departments {
			if _, ok := seen[dept]; ok || dept == "" {
				continue
			}
			seen[dept] = struct{}{}
			departments = append(departments, dept)
		}
	}
	sort.Strings(departments)

	return DayResolution{Status: status, Departments: departments, Assigned: true}
}

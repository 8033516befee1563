package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("schedule: invalid date %q", value)
	}
	return DateOf(t), nil
}

// DateOf returns the wall-clock date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare returns -1, 0 or 1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool { return d.Compare(other) == 0 }

// AddDays returns the date n days later, normalizing month and year rollover.
func (d Date) AddDays(n int) Date {
	return DateOf(d.At(0, time.UTC).AddDate(0, 0, n))
}

// At returns the instant at the given clock time on d in loc.
func (d Date) At(clock ClockTime, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	secs := int(clock)
	return time.Date(d.Year, d.Month, d.Day, secs/3600, (secs%3600)/60, secs%60, 0, loc)
}

// Weekday returns the day of the week for d.
func (d Date) Weekday() time.Weekday {
	return d.At(0, time.UTC).Weekday()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ClockTime is a time of day expressed as seconds since midnight.
type ClockTime int

const secondsPerDay = 24 * 60 * 60

// ParseClock parses HH:MM or HH:MM:SS.
func ParseClock(value string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("schedule: invalid clock time %q", value)
	}

	limits := []int{23, 59, 59}
	fields := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || len(part) != 2 || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("schedule: invalid clock time %q", value)
		}
		fields[i] = n
	}

	return ClockTime(fields[0]*3600 + fields[1]*60 + fields[2]), nil
}

// ClockOf returns the wall-clock time of day of t, truncated to the second.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// String formats the clock as HH:MM, or HH:MM:SS when seconds are present.
func (c ClockTime) String() string {
	secs := int(c)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// InvalidScheduleError reports a window whose start does not precede its end.
type InvalidScheduleError struct {
	Start ClockTime
	End   ClockTime
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("schedule: start %s must be before end %s", e.Start, e.End)
}

// Window is an immutable same-day interval [Start, End] on Date.
type Window struct {
	Date  Date
	Start ClockTime
	End   ClockTime
}

// NewWindow validates and constructs a window. Windows never cross midnight.
func NewWindow(date Date, start, end ClockTime) (Window, error) {
	if start < 0 || end >= secondsPerDay || start >= end {
		return Window{}, &InvalidScheduleError{Start: start, End: end}
	}
	return Window{Date: date, Start: start, End: end}, nil
}

// ParseWindow builds a window from wire strings.
func ParseWindow(date, start, end string) (Window, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Window{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(d, s, e)
}

// DeadlineWindow returns the zero-width window [t, t] used for single-instant deadlines.
func DeadlineWindow(t time.Time) Window {
	c := ClockOf(t)
	return Window{Date: DateOf(t), Start: c, End: c}
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Date.IsZero() && w.Start == 0 && w.End == 0
}

// StartTime returns the start instant of the window in loc.
func (w Window) StartTime(loc *time.Location) time.Time {
	return w.Date.At(w.Start, loc)
}

// EndTime returns the end instant of the window in loc.
func (w Window) EndTime(loc *time.Location) time.Time {
	return w.Date.At(w.End, loc)
}

// Overlaps reports whether both windows share the same date and intersect.
func (w Window) Overlaps(other Window) bool {
	if !w.Date.Equal(other.Date) {
		return false
	}
	return w.Start < other.End && other.Start < w.End
}

// ContainsNow reports whether now falls on the window's date within the closed interval [Start, End].
func ContainsNow(w Window, now time.Time) bool {
	if !DateOf(now).Equal(w.Date) {
		return false
	}
	clock := ClockOf(now)
	return clock >= w.Start && clock <= w.End
}

// IsToday reports whether the window's date is the date of now.
func IsToday(w Window, now time.Time) bool {
	return w.Date.Equal(DateOf(now))
}

// IsTomorrow reports whether the window's date is the day after now.
func IsTomorrow(w Window, now time.Time) bool {
	return w.Date.Equal(DateOf(now).AddDays(1))
}

// IsPast reports whether the window's date lies strictly before the date of now.
func IsPast(w Window, now time.Time) bool {
	return w.Date.Before(DateOf(now))
}

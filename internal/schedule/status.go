package schedule

import "time"

// Kind classifies a derived presentation status.
type Kind string

const (
	// KindTerminal mirrors a terminal lifecycle state verbatim.
	KindTerminal Kind = "terminal"
	// KindLiveNow marks a window that contains the current instant.
	KindLiveNow Kind = "live_now"
	// KindStartingSoon marks a window later today.
	KindStartingSoon Kind = "starting_soon"
	// KindToday marks a window earlier today that has already ended.
	KindToday Kind = "today"
	// KindTomorrow marks a window on the next calendar day.
	KindTomorrow Kind = "tomorrow"
	// KindDate labels any other window by its calendar date.
	KindDate Kind = "date"
)

// Display labels for the time-derived kinds.
const (
	LabelLiveNow      = "Live Now"
	LabelStartingSoon = "Starting Soon"
	LabelToday        = "Today"
	LabelTomorrow     = "Tomorrow"
)

// DateLabelLayout formats the catch-all date label, e.g. "Dec 5".
const DateLabelLayout = "Jan 2"

// Status is the presentation status derived at read time. It is never persisted.
type Status struct {
	Kind  Kind
	Label string
}

func (s Status) String() string {
	return s.Label
}

// Lifecycle is implemented by stored status enums that may override time-based inference.
type Lifecycle interface {
	// Terminal returns the verbatim label and true when the state ends time-based inference.
	Terminal() (string, bool)
}

// Resolve derives the presentation status of w at now. The first matching rule wins:
// terminal lifecycle, live, starting soon, today, tomorrow, then the formatted date.
func Resolve(w Window, lifecycle Lifecycle, now time.Time) Status {
	if lifecycle != nil {
		if label, ok := lifecycle.Terminal(); ok {
			return Status{Kind: KindTerminal, Label: label}
		}
	}

	switch {
	case ContainsNow(w, now):
		return Status{Kind: KindLiveNow, Label: LabelLiveNow}
	case IsToday(w, now) && ClockOf(now) < w.Start:
		return Status{Kind: KindStartingSoon, Label: LabelStartingSoon}
	case IsToday(w, now):
		return Status{Kind: KindToday, Label: LabelToday}
	case IsTomorrow(w, now):
		return Status{Kind: KindTomorrow, Label: LabelTomorrow}
	default:
		return Status{Kind: KindDate, Label: w.Date.At(0, time.UTC).Format(DateLabelLayout)}
	}
}

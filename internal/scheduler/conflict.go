package scheduler

import (
	"sort"

	"github.com/example/hr-delegation/internal/schedule"
)

// Meeting is the slice of a meeting the detector needs.
type Meeting struct {
	ID          string
	Departments []string
	Window      schedule.Window
}

// ConflictType describes the type of conflict detected between meetings.
type ConflictType string

const (
	// ConflictTypeDepartment indicates a department is booked into two overlapping meetings.
	ConflictTypeDepartment ConflictType = "department"
)

// Conflict details an overlapping meeting relation that callers can present to users.
type Conflict struct {
	WithMeetingID string
	Type          ConflictType
	DepartmentID  string
}

// DetectConflicts returns one conflict per shared department for every existing
// meeting whose window overlaps the candidate. The candidate itself is skipped
// when present in existing. Results are ordered by meeting id then department.
func DetectConflicts(existing []Meeting, candidate Meeting) []Conflict {
	if len(candidate.Departments) == 0 {
		return nil
	}

	wanted := make(map[string]struct{}, len(candidate.Departments))
	for _, id := range candidate.Departments {
		wanted[id] = struct{}{}
	}

	var conflicts []Conflict
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if !other.Window.Overlaps(candidate.Window) {
			continue
		}
		seen := make(map[string]struct{}, len(other.Departments))
		for _, dept := range other.Departments {
			if _, ok := wanted[dept]; !ok {
				continue
			}
			if _, dup := seen[dept]; dup {
				continue
			}
			seen[dept] = struct{}{}
			conflicts = append(conflicts, Conflict{
				WithMeetingID: other.ID,
				Type:          ConflictTypeDepartment,
				DepartmentID:  dept,
			})
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].WithMeetingID == conflicts[j].WithMeetingID {
			return conflicts[i].DepartmentID < conflicts[j].DepartmentID
		}
		return conflicts[i].WithMeetingID < conflicts[j].WithMeetingID
	})
	return conflicts
}

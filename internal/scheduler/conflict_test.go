package scheduler

import (
	"reflect"
	"testing"
	"time"

	"github.com/example/hr-delegation/internal/schedule"
)

func window(t *testing.T, date, start, end string) schedule.Window {
	t.Helper()
	w, err := schedule.ParseWindow(date, start, end)
	if err != nil {
		t.Fatalf("ParseWindow(%s %s-%s): %v", date, start, end, err)
	}
	return w
}

func TestDetectConflicts(t *testing.T) {
	t.Run("shared department overlap produces conflict", func(t *testing.T) {
		existing := []Meeting{
			{ID: "m-2", Departments: []string{"sales", "hr"}, Window: window(t, "2024-06-10", "09:30", "10:30")},
			{ID: "m-3", Departments: []string{"hr"}, Window: window(t, "2024-06-10", "09:45", "11:00")},
		}
		candidate := Meeting{ID: "m-1", Departments: []string{"hr", "sales"}, Window: window(t, "2024-06-10", "09:00", "10:00")}

		got := DetectConflicts(existing, candidate)
		want := []Conflict{
			{WithMeetingID: "m-2", Type: ConflictTypeDepartment, DepartmentID: "hr"},
			{WithMeetingID: "m-2", Type: ConflictTypeDepartment, DepartmentID: "sales"},
			{WithMeetingID: "m-3", Type: ConflictTypeDepartment, DepartmentID: "hr"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("conflicts = %+v, want %+v", got, want)
		}
	})

	t.Run("disjoint departments yield no conflicts", func(t *testing.T) {
		existing := []Meeting{{ID: "m-2", Departments: []string{"finance"}, Window: window(t, "2024-06-10", "09:00", "10:00")}}
		candidate := Meeting{ID: "m-1", Departments: []string{"hr"}, Window: window(t, "2024-06-10", "09:00", "10:00")}

		if got := DetectConflicts(existing, candidate); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("touching windows and other dates yield no conflicts", func(t *testing.T) {
		existing := []Meeting{
			{ID: "m-2", Departments: []string{"hr"}, Window: window(t, "2024-06-10", "10:00", "11:00")},
			{ID: "m-3", Departments: []string{"hr"}, Window: window(t, "2024-06-11", "09:00", "10:00")},
		}
		candidate := Meeting{ID: "m-1", Departments: []string{"hr"}, Window: window(t, "2024-06-10", "09:00", "10:00")}

		if got := DetectConflicts(existing, candidate); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("candidate is not compared with itself", func(t *testing.T) {
		candidate := Meeting{ID: "m-1", Departments: []string{"hr"}, Window: window(t, "2024-06-10", "09:00", "10:00")}
		if got := DetectConflicts([]Meeting{candidate}, candidate); len(got) != 0 {
			t.Fatalf("expected no self conflicts, got %+v", got)
		}
	})
}

func BenchmarkDetectConflicts(b *testing.B) {
	date := schedule.DateOf(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))
	existing := make([]Meeting, 200)
	for i := range existing {
		start := schedule.ClockTime((8*60 + i) * 60)
		existing[i] = Meeting{
			ID:          "m",
			Departments: []string{"hr", "sales", "finance"},
			Window:      schedule.Window{Date: date, Start: start, End: start + 3600},
		}
	}
	candidate := Meeting{ID: "c", Departments: []string{"hr"}, Window: schedule.Window{Date: date, Start: 9 * 3600, End: 10 * 3600}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DetectConflicts(existing, candidate)
	}
}

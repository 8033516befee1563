// Package persistencetest holds a behavioural suite shared by every
// persistence backend.
package persistencetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hr-delegation/internal/persistence"
)

// Store is the full set of repositories a backend provides.
type Store interface {
	persistence.DelegationRepository
	persistence.MeetingRepository
	persistence.CalendarEventRepository
	persistence.DepartmentRepository
	persistence.PersonRepository
}

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) Store

var base = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// Run exercises the repository contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("delegations", func(t *testing.T) { testDelegations(t, newStore(t)) })
	t.Run("delegation filters", func(t *testing.T) { testDelegationFilters(t, newStore(t)) })
	t.Run("meetings", func(t *testing.T) { testMeetings(t, newStore(t)) })
	t.Run("calendar events", func(t *testing.T) { testCalendarEvents(t, newStore(t)) })
	t.Run("directory", func(t *testing.T) { testDirectory(t, newStore(t)) })
}

func testDelegations(t *testing.T, store Store) {
	ctx := context.Background()

	root := persistence.DelegationRecord{
		ID:          "rec-root",
		Title:       "Quarterly review",
		Description: "Collect reviews",
		Highlights:  []string{"deadline firm", "include contractors"},
		AssignedTo:  "ceo",
		Deadline:    base.Add(48 * time.Hour),
		Priority:    "high",
		Status:      "pending",
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	if err := store.CreateRecord(ctx, root); err != nil {
		t.Fatalf("CreateRecord root: %v", err)
	}
	if err := store.CreateRecord(ctx, root); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	child := root
	child.ID = "rec-child"
	child.ParentID = ptr("rec-root")
	child.AssignedTo = "hr"
	child.Highlights = nil
	if err := store.CreateRecord(ctx, child); err != nil {
		t.Fatalf("CreateRecord child: %v", err)
	}

	got, err := store.GetRecord(ctx, "rec-root")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.Title != root.Title || got.AssignedTo != "ceo" || !got.Deadline.Equal(root.Deadline) {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.Highlights) != 2 || got.Highlights[1] != "include contractors" {
		t.Fatalf("highlights not preserved: %v", got.Highlights)
	}
	if got.ParentID != nil || got.Response != nil {
		t.Fatalf("expected no parent and no response, got %+v", got)
	}

	got.Status = "in-progress"
	got.Progress = 40
	got.Response = &persistence.Response{
		SubmittedAt:          base.Add(time.Hour),
		WorkStatus:           "in-progress",
		Description:          "halfway",
		CompletionPercentage: 40,
	}
	got.UpdatedAt = base.Add(time.Hour)
	if err := store.UpdateRecord(ctx, got); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	updated, err := store.GetRecord(ctx, "rec-root")
	if err != nil {
		t.Fatalf("GetRecord after update: %v", err)
	}
	if updated.Status != "in-progress" || updated.Progress != 40 {
		t.Fatalf("update not stored: %+v", updated)
	}
	if updated.Response == nil || updated.Response.Description != "halfway" || !updated.Response.SubmittedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("response not stored: %+v", updated.Response)
	}
	if !updated.CreatedAt.Equal(base) {
		t.Fatalf("created_at changed: %v", updated.CreatedAt)
	}

	missing := root
	missing.ID = "rec-missing"
	if err := store.UpdateRecord(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	if err := store.DeleteRecord(ctx, "rec-root"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if _, err := store.GetRecord(ctx, "rec-root"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteRecord(ctx, "rec-root"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	orphan, err := store.GetRecord(ctx, "rec-child")
	if err != nil {
		t.Fatalf("child should survive parent removal: %v", err)
	}
	if orphan.ParentID == nil || *orphan.ParentID != "rec-root" {
		t.Fatalf("child parent reference changed: %v", orphan.ParentID)
	}
}

func testDelegationFilters(t *testing.T, store Store) {
	ctx := context.Background()

	seed := []persistence.DelegationRecord{
		{ID: "a", AssignedTo: "hr", Deadline: base.Add(72 * time.Hour), Priority: "low", Status: "pending"},
		{ID: "b", AssignedTo: "hr", Deadline: base.Add(24 * time.Hour), Priority: "medium", Status: "completed", ParentID: ptr("a")},
		{ID: "c", AssignedTo: "lead", Deadline: base.Add(48 * time.Hour), Priority: "high", Status: "in-progress", ParentID: ptr("a")},
	}
	for _, record := range seed {
		record.Title = "task " + record.ID
		record.CreatedAt = base
		record.UpdatedAt = base
		if err := store.CreateRecord(ctx, record); err != nil {
			t.Fatalf("CreateRecord %s: %v", record.ID, err)
		}
	}

	cases := []struct {
		name   string
		filter persistence.DelegationFilter
		want   []string
	}{
		{name: "all ordered by deadline", filter: persistence.DelegationFilter{}, want: []string{"b", "c", "a"}},
		{name: "assignee", filter: persistence.DelegationFilter{AssignedTo: ptr("hr")}, want: []string{"b", "a"}},
		{name: "children", filter: persistence.DelegationFilter{ParentID: ptr("a")}, want: []string{"b", "c"}},
		{
			name: "deadline half-open range",
			filter: persistence.DelegationFilter{
				DeadlineFrom: ptr(base.Add(24 * time.Hour)),
				DeadlineTo:   ptr(base.Add(72 * time.Hour)),
			},
			want: []string{"b", "c"},
		},
		{name: "statuses", filter: persistence.DelegationFilter{Statuses: []string{"pending", "in-progress"}}, want: []string{"c", "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := store.ListRecords(ctx, tc.filter)
			if err != nil {
				t.Fatalf("ListRecords: %v", err)
			}
			if got := recordIDs(records); !equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func testMeetings(t *testing.T, store Store) {
	ctx := context.Background()

	meeting := persistence.Meeting{
		ID:           "mtg-1",
		Title:        "Budget sync",
		Date:         "2025-03-12",
		StartSeconds: 9 * 3600,
		EndSeconds:   10 * 3600,
		Platform:     "zoom",
		MeetingLink:  ptr("https://example.test/j/1"),
		Departments: []persistence.MeetingDepartment{
			{DepartmentID: "finance", Role: "host"},
			{DepartmentID: "hr", Role: "attendee"},
		},
		MeetingType: "review",
		Priority:    "medium",
		Status:      "scheduled",
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	if err := store.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	if err := store.CreateMeeting(ctx, meeting); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	later := meeting
	later.ID = "mtg-2"
	later.StartSeconds = 14 * 3600
	later.EndSeconds = 15 * 3600
	later.MeetingLink = nil
	later.Location = ptr("Room 4")
	later.Departments = []persistence.MeetingDepartment{{DepartmentID: "sales", Role: "host"}}
	if err := store.CreateMeeting(ctx, later); err != nil {
		t.Fatalf("CreateMeeting later: %v", err)
	}

	got, err := store.GetMeeting(ctx, "mtg-1")
	if err != nil {
		t.Fatalf("GetMeeting: %v", err)
	}
	if len(got.Departments) != 2 || got.Departments[0].DepartmentID != "finance" || got.Departments[1].Role != "attendee" {
		t.Fatalf("departments not preserved in order: %+v", got.Departments)
	}
	if got.MeetingLink == nil || *got.MeetingLink != "https://example.test/j/1" || got.Location != nil {
		t.Fatalf("optional fields not preserved: %+v", got)
	}

	got.Status = "cancelled"
	got.Departments = got.Departments[:1]
	got.UpdatedAt = base.Add(time.Minute)
	if err := store.UpdateMeeting(ctx, got); err != nil {
		t.Fatalf("UpdateMeeting: %v", err)
	}
	updated, err := store.GetMeeting(ctx, "mtg-1")
	if err != nil {
		t.Fatalf("GetMeeting after update: %v", err)
	}
	if updated.Status != "cancelled" || len(updated.Departments) != 1 {
		t.Fatalf("update not stored: %+v", updated)
	}

	all, err := store.ListMeetings(ctx, persistence.MeetingFilter{Date: ptr("2025-03-12")})
	if err != nil {
		t.Fatalf("ListMeetings: %v", err)
	}
	if len(all) != 2 || all[0].ID != "mtg-1" || all[1].ID != "mtg-2" {
		t.Fatalf("unexpected meeting order: %+v", all)
	}

	sales, err := store.ListMeetings(ctx, persistence.MeetingFilter{DepartmentID: ptr("sales")})
	if err != nil {
		t.Fatalf("ListMeetings by department: %v", err)
	}
	if len(sales) != 1 || sales[0].ID != "mtg-2" {
		t.Fatalf("unexpected department filter result: %+v", sales)
	}

	scheduled, err := store.ListMeetings(ctx, persistence.MeetingFilter{Status: ptr("scheduled")})
	if err != nil {
		t.Fatalf("ListMeetings by status: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].ID != "mtg-2" {
		t.Fatalf("unexpected status filter result: %+v", scheduled)
	}

	if err := store.DeleteMeeting(ctx, "mtg-1"); err != nil {
		t.Fatalf("DeleteMeeting: %v", err)
	}
	if _, err := store.GetMeeting(ctx, "mtg-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testCalendarEvents(t *testing.T, store Store) {
	ctx := context.Background()

	events := []persistence.CalendarEvent{
		{ID: "ev-1", Date: "2025-03-01", Departments: []string{"hr"}, StatusKind: "FullDayHoliday", Title: "Founders day"},
		{ID: "ev-2", Date: "2025-03-15", StatusKind: "HalfDayHoliday", StartSeconds: ptr(13 * 3600), EndSeconds: ptr(17 * 3600)},
		{ID: "ev-3", Date: "2025-01-06", StatusKind: "FullDayHoliday", RecurrenceRule: ptr("FREQ=WEEKLY;BYDAY=MO")},
		{ID: "ev-4", Date: "2025-04-02", Departments: []string{"hr", "sales"}, StatusKind: "WorkingDay"},
	}
	for _, event := range events {
		event.CreatedAt = base
		event.UpdatedAt = base
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent %s: %v", event.ID, err)
		}
	}

	got, err := store.GetEvent(ctx, "ev-2")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.StartSeconds == nil || *got.StartSeconds != 13*3600 || got.EndSeconds == nil || *got.EndSeconds != 17*3600 {
		t.Fatalf("bounds not preserved: %+v", got)
	}

	march, err := store.ListEvents(ctx, persistence.CalendarEventFilter{From: ptr("2025-03-01"), To: ptr("2025-03-31")})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if ids := eventIDs(march); !equal(ids, []string{"ev-3", "ev-1", "ev-2"}) {
		t.Fatalf("got %v, want recurring event plus March entries", ids)
	}

	hr, err := store.ListEvents(ctx, persistence.CalendarEventFilter{DepartmentID: ptr("hr")})
	if err != nil {
		t.Fatalf("ListEvents by department: %v", err)
	}
	if ids := eventIDs(hr); !equal(ids, []string{"ev-1", "ev-4"}) {
		t.Fatalf("got %v", ids)
	}

	if err := store.DeleteEvent(ctx, "ev-1"); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if err := store.DeleteEvent(ctx, "ev-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDirectory(t *testing.T, store Store) {
	ctx := context.Background()

	for _, department := range []persistence.Department{
		{ID: "hr", Name: "Human Resources", Code: "HR"},
		{ID: "eng", Name: "Engineering", Code: "ENG"},
	} {
		department.CreatedAt = base
		department.UpdatedAt = base
		if err := store.CreateDepartment(ctx, department); err != nil {
			t.Fatalf("CreateDepartment %s: %v", department.ID, err)
		}
	}
	dup := persistence.Department{ID: "hr-2", Name: "HR again", Code: "HR", CreatedAt: base, UpdatedAt: base}
	if err := store.CreateDepartment(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated code, got %v", err)
	}

	departments, err := store.ListDepartments(ctx)
	if err != nil {
		t.Fatalf("ListDepartments: %v", err)
	}
	if len(departments) != 2 || departments[0].ID != "eng" {
		t.Fatalf("unexpected department order: %+v", departments)
	}

	person := persistence.Person{ID: "p-1", Name: "Dana", Role: "hr", DepartmentID: ptr("hr"), CreatedAt: base, UpdatedAt: base}
	if err := store.CreatePerson(ctx, person); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	got, err := store.GetPerson(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetPerson: %v", err)
	}
	if got.Role != "hr" || got.DepartmentID == nil || *got.DepartmentID != "hr" {
		t.Fatalf("unexpected person: %+v", got)
	}
	people, err := store.ListPeople(ctx)
	if err != nil || len(people) != 1 {
		t.Fatalf("ListPeople: %v %+v", err, people)
	}

	meeting := persistence.Meeting{
		ID:           "mtg-dept",
		Title:        "Hiring",
		Date:         "2025-03-12",
		StartSeconds: 3600,
		EndSeconds:   7200,
		Departments:  []persistence.MeetingDepartment{{DepartmentID: "hr"}, {DepartmentID: "eng"}},
		Priority:     "low",
		Status:       "scheduled",
		CreatedAt:    base,
		UpdatedAt:    base,
	}
	if err := store.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}

	if err := store.DeleteDepartment(ctx, "hr"); err != nil {
		t.Fatalf("DeleteDepartment: %v", err)
	}
	if err := store.DeleteDepartment(ctx, "hr"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	stored, err := store.GetMeeting(ctx, "mtg-dept")
	if err != nil {
		t.Fatalf("GetMeeting: %v", err)
	}
	if len(stored.Departments) != 1 || stored.Departments[0].DepartmentID != "eng" {
		t.Fatalf("deleted department still attached: %+v", stored.Departments)
	}
}

func recordIDs(records []persistence.DelegationRecord) []string {
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	return ids
}

func eventIDs(events []persistence.CalendarEvent) []string {
	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return ids
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

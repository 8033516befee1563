package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/example/hr-delegation/internal/persistence"
	"github.com/example/hr-delegation/internal/schedule"
)

type delegationRepoStub struct {
	records   map[string]DelegationRecord
	createErr error
	updateErr error
	writes    int
}

func newDelegationRepoStub(seed ...DelegationRecord) *delegationRepoStub {
	stub := &delegationRepoStub{records: make(map[string]DelegationRecord)}
	for _, record := range seed {
		stub.records[record.ID] = record
	}
	return stub
}

func (r *delegationRepoStub) CreateRecord(ctx context.Context, record DelegationRecord) (DelegationRecord, error) {
	if r.createErr != nil {
		return DelegationRecord{}, r.createErr
	}
	if _, ok := r.records[record.ID]; ok {
		return DelegationRecord{}, persistence.ErrDuplicate
	}
	r.writes++
	r.records[record.ID] = copyRecord(record)
	return record, nil
}

func (r *delegationRepoStub) UpdateRecord(ctx context.Context, record DelegationRecord) (DelegationRecord, error) {
	if r.updateErr != nil {
		return DelegationRecord{}, r.updateErr
	}
	if _, ok := r.records[record.ID]; !ok {
		return DelegationRecord{}, persistence.ErrNotFound
	}
	r.writes++
	r.records[record.ID] = copyRecord(record)
	return record, nil
}

func (r *delegationRepoStub) GetRecord(ctx context.Context, id string) (DelegationRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return DelegationRecord{}, persistence.ErrNotFound
	}
	return copyRecord(record), nil
}

func (r *delegationRepoStub) ListRecords(ctx context.Context, filter DelegationRepositoryFilter) ([]DelegationRecord, error) {
	out := make([]DelegationRecord, 0)
	for _, record := range r.records {
		if filter.AssignedTo != nil && record.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.ParentID != nil && (record.ParentID == nil || *record.ParentID != *filter.ParentID) {
			continue
		}
		if filter.DeadlineFrom != nil && record.Deadline.Before(*filter.DeadlineFrom) {
			continue
		}
		if filter.DeadlineTo != nil && !record.Deadline.Before(*filter.DeadlineTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, record.Status) {
			continue
		}
		out = append(out, copyRecord(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *delegationRepoStub) DeleteRecord(ctx context.Context, id string) error {
	if _, ok := r.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func copyRecord(record DelegationRecord) DelegationRecord {
	record.Highlights = slices.Clone(record.Highlights)
	if record.ParentID != nil {
		parent := *record.ParentID
		record.ParentID = &parent
	}
	if record.Response != nil {
		response := *record.Response
		record.Response = &response
	}
	return record
}

type personDirectoryStub map[string]Person

func (d personDirectoryStub) GetPerson(ctx context.Context, id string) (Person, error) {
	person, ok := d[id]
	if !ok {
		return Person{}, persistence.ErrNotFound
	}
	return person, nil
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var delegationNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return delegationNow }

func validInput(assignee string) DelegationInput {
	return DelegationInput{
		Title:       "Prepare onboarding pack",
		Description: "Collect documents for new hires",
		Highlights:  []string{"badge", "", "laptop", "  "},
		AssignedTo:  assignee,
		Deadline:    time.Date(2024, time.June, 10, 18, 0, 0, 0, time.UTC),
	}
}

func TestDelegationService_CreateRoot(t *testing.T) {
	t.Run("creates a pending root record", func(t *testing.T) {
		repo := newDelegationRepoStub()
		svc := NewDelegationService(repo, nil, sequentialIDs("rec"), fixedClock)

		record, err := svc.CreateRoot(context.Background(), validInput("ceo-1"))
		if err != nil {
			t.Fatalf("CreateRoot returned error: %v", err)
		}
		if record.ID != "rec-1" || record.ParentID != nil {
			t.Fatalf("unexpected identity: %+v", record)
		}
		if record.Status != StatusPending || record.Progress != 0 || record.Priority != PriorityMedium {
			t.Fatalf("unexpected defaults: %+v", record)
		}
		if !reflect.DeepEqual(record.Highlights, []string{"badge", "laptop"}) {
			t.Fatalf("expected blank highlights dropped, got %v", record.Highlights)
		}
		if !record.CreatedAt.Equal(delegationNow) {
			t.Fatalf("expected clock timestamp, got %v", record.CreatedAt)
		}
	})

	t.Run("absent highlights become an empty list", func(t *testing.T) {
		svc := NewDelegationService(newDelegationRepoStub(), nil, sequentialIDs("rec"), fixedClock)
		input := validInput("ceo-1")
		input.Highlights = nil

		record, err := svc.CreateRoot(context.Background(), input)
		if err != nil {
			t.Fatalf("CreateRoot returned error: %v", err)
		}
		if record.Highlights == nil || len(record.Highlights) != 0 {
			t.Fatalf("expected empty non-nil highlights, got %#v", record.Highlights)
		}
	})

	t.Run("reports every missing field", func(t *testing.T) {
		repo := newDelegationRepoStub()
		svc := NewDelegationService(repo, nil, sequentialIDs("rec"), fixedClock)

		_, err := svc.CreateRoot(context.Background(), DelegationInput{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{"assignedTo", "deadline", "description", "title"}
		if !reflect.DeepEqual(vErr.Fields(), want) {
			t.Fatalf("fields = %v, want %v", vErr.Fields(), want)
		}
		if repo.writes != 0 {
			t.Fatalf("expected no writes on validation failure, got %d", repo.writes)
		}
	})

	t.Run("rejects unknown assignee when directory configured", func(t *testing.T) {
		svc := NewDelegationService(newDelegationRepoStub(), personDirectoryStub{}, sequentialIDs("rec"), fixedClock)

		_, err := svc.CreateRoot(context.Background(), validInput("ghost"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["assignedTo"] == "" {
			t.Fatalf("expected assignedTo validation error, got %v", err)
		}
	})

	t.Run("maps duplicate ids", func(t *testing.T) {
		repo := newDelegationRepoStub()
		repo.createErr = persistence.ErrDuplicate
		svc := NewDelegationService(repo, nil, sequentialIDs("rec"), fixedClock)

		if _, err := svc.CreateRoot(context.Background(), validInput("ceo-1")); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestDelegationService_Forward(t *testing.T) {
	ctx := context.Background()
	source := DelegationRecord{
		ID:          "root",
		Title:       "Quarterly review",
		Description: "Collect reviews",
		Highlights:  []string{"firm"},
		AssignedTo:  "ceo-1",
		Deadline:    time.Date(2024, time.June, 12, 17, 0, 0, 0, time.UTC),
		Priority:    PriorityHigh,
		Status:      StatusInProgress,
		Progress:    30,
	}

	t.Run("missing source is not found", func(t *testing.T) {
		svc := NewDelegationService(newDelegationRepoStub(), nil, sequentialIDs("rec"), fixedClock)
		if _, err := svc.Forward(ctx, "missing", validInput("hr-1")); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("builds the child from input only", func(t *testing.T) {
		repo := newDelegationRepoStub(source)
		svc := NewDelegationService(repo, nil, sequentialIDs("rec"), fixedClock)

		child, err := svc.Forward(ctx, "root", validInput("hr-1"))
		if err != nil {
			t.Fatalf("Forward returned error: %v", err)
		}
		if child.ParentID == nil || *child.ParentID != "root" {
			t.Fatalf("expected parent reference, got %v", child.ParentID)
		}
		if child.Status != StatusPending || child.Progress != 0 || child.Priority != PriorityMedium {
			t.Fatalf("child inherited source state: %+v", child)
		}
		if child.Title != "Prepare onboarding pack" {
			t.Fatalf("expected caller title, got %q", child.Title)
		}
	})

	t.Run("forwarding twice then removing the source keeps both children", func(t *testing.T) {
		repo := newDelegationRepoStub(source)
		svc := NewDelegationService(repo, nil, sequentialIDs("rec"), fixedClock)

		first, err := svc.Forward(ctx, "root", validInput("hr-1"))
		if err != nil {
			t.Fatalf("first Forward: %v", err)
		}
		second, err := svc.Forward(ctx, "root", validInput("hr-2"))
		if err != nil {
			t.Fatalf("second Forward: %v", err)
		}
		if first.ID == second.ID {
			t.Fatalf("expected distinct ids, both %q", first.ID)
		}

		children, err := svc.Children(ctx, "root")
		if err != nil {
			t.Fatalf("Children: %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("expected two children, got %d", len(children))
		}

		if err := svc.Remove(ctx, "root"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		for _, id := range []string{first.ID, second.ID} {
			child, err := svc.Get(ctx, id)
			if err != nil {
				t.Fatalf("child %s missing after source removal: %v", id, err)
			}
			if child.ParentID == nil || *child.ParentID != "root" {
				t.Fatalf("child %s lost its parent reference", id)
			}
		}
		if _, err := svc.Children(ctx, "root"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound listing children of removed record, got %v", err)
		}
	})

	t.Run("enforces downward hierarchy", func(t *testing.T) {
		people := personDirectoryStub{
			"ceo-1":  {ID: "ceo-1", Role: RoleCEO},
			"hr-1":   {ID: "hr-1", Role: RoleHR},
			"lead-1": {ID: "lead-1", Role: RoleTeamLeader},
			"ceo-2":  {ID: "ceo-2", Role: RoleCEO},
		}
		repo := newDelegationRepoStub(source)
		svc := NewDelegationService(repo, people, sequentialIDs("rec"), fixedClock)

		if _, err := svc.Forward(ctx, "root", validInput("hr-1")); err != nil {
			t.Fatalf("CEO to HR should be allowed: %v", err)
		}

		_, err := svc.Forward(ctx, "root", validInput("ceo-2"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["assignedTo"] == "" {
			t.Fatalf("expected hierarchy validation error, got %v", err)
		}
	})

	t.Run("source assignee missing from the directory blocks forwarding", func(t *testing.T) {
		people := personDirectoryStub{"hr-1": {ID: "hr-1", Role: RoleHR}}
		repo := newDelegationRepoStub(source)
		svc := NewDelegationService(repo, people, sequentialIDs("rec"), fixedClock)

		_, err := svc.Forward(ctx, "root", validInput("hr-1"))
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["assignedTo"] == "" {
			t.Fatalf("expected validation error, got %v", err)
		}
		children, err := svc.Children(ctx, "root")
		if err != nil {
			t.Fatalf("Children: %v", err)
		}
		if len(children) != 0 {
			t.Fatalf("expected no child to be written, got %d", len(children))
		}
	})
}

func TestDelegationService_ForwardNeverMutatesSource(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		source := DelegationRecord{
			ID:          "root",
			Title:       rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "title"),
			Description: "desc",
			Highlights:  rapid.SliceOf(rapid.StringMatching(`[a-z]{0,5}`)).Draw(rt, "highlights"),
			AssignedTo:  "ceo-1",
			Deadline:    time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(rt, "deadline"), 0).UTC(),
			Priority:    rapid.SampledFrom([]Priority{PriorityLow, PriorityMedium, PriorityHigh}).Draw(rt, "priority"),
			Status:      rapid.SampledFrom([]DelegationStatus{StatusPending, StatusInProgress, StatusCompleted, StatusOverdue, StatusCancelled}).Draw(rt, "status"),
			Progress:    rapid.IntRange(0, 100).Draw(rt, "progress"),
		}
		repo := newDelegationRepoStub(source)
		svc := NewDelegationService(repo, nil, sequentialIDs("rec"), fixedClock)

		before, err := svc.Get(context.Background(), "root")
		if err != nil {
			rt.Fatalf("Get before: %v", err)
		}

		input := validInput(rapid.SampledFrom([]string{"hr-1", "lead-1"}).Draw(rt, "assignee"))
		input.Highlights = rapid.SliceOf(rapid.StringMatching(`[a-z ]{0,5}`)).Draw(rt, "childHighlights")
		if _, err := svc.Forward(context.Background(), "root", input); err != nil {
			rt.Fatalf("Forward: %v", err)
		}

		after, err := svc.Get(context.Background(), "root")
		if err != nil {
			rt.Fatalf("Get after: %v", err)
		}
		if !reflect.DeepEqual(before, after) {
			rt.Fatalf("source changed:\nbefore %+v\nafter  %+v", before, after)
		}
	})
}

func TestDelegationService_EditForwarded(t *testing.T) {
	ctx := context.Background()
	child := DelegationRecord{ID: "child", ParentID: ptrTo("root"), Title: "t", AssignedTo: "hr-1", Status: StatusInProgress, Progress: 80, Priority: PriorityLow}

	t.Run("allows progress decrease", func(t *testing.T) {
		repo := newDelegationRepoStub(child)
		svc := NewDelegationService(repo, nil, nil, fixedClock)

		record, err := svc.EditForwarded(ctx, "child", RecordPatch{Progress: ptrTo(40)})
		if err != nil {
			t.Fatalf("EditForwarded: %v", err)
		}
		if record.Progress != 40 || record.Status != StatusInProgress || record.Priority != PriorityLow {
			t.Fatalf("unexpected record: %+v", record)
		}
	})

	t.Run("completed does not force progress", func(t *testing.T) {
		repo := newDelegationRepoStub(child)
		svc := NewDelegationService(repo, nil, nil, fixedClock)

		record, err := svc.EditForwarded(ctx, "child", RecordPatch{Status: ptrTo(StatusCompleted)})
		if err != nil {
			t.Fatalf("EditForwarded: %v", err)
		}
		if record.Status != StatusCompleted || record.Progress != 80 {
			t.Fatalf("unexpected record: %+v", record)
		}
	})

	cases := []struct {
		name  string
		patch RecordPatch
		field string
	}{
		{name: "empty patch", patch: RecordPatch{}, field: "patch"},
		{name: "progress above range", patch: RecordPatch{Progress: ptrTo(101)}, field: "progress"},
		{name: "negative progress", patch: RecordPatch{Progress: ptrTo(-1)}, field: "progress"},
		{name: "unknown status", patch: RecordPatch{Status: ptrTo(DelegationStatus("done"))}, field: "status"},
		{name: "unknown priority", patch: RecordPatch{Priority: ptrTo(Priority("urgent"))}, field: "priority"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newDelegationRepoStub(child)
			svc := NewDelegationService(repo, nil, nil, fixedClock)

			_, err := svc.EditForwarded(ctx, "child", tc.patch)
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors[tc.field] == "" {
				t.Fatalf("expected %s validation error, got %v", tc.field, err)
			}
			if repo.writes != 0 {
				t.Fatalf("expected no writes, got %d", repo.writes)
			}
		})
	}

	t.Run("missing record", func(t *testing.T) {
		svc := NewDelegationService(newDelegationRepoStub(), nil, nil, fixedClock)
		if _, err := svc.EditForwarded(ctx, "nope", RecordPatch{Progress: ptrTo(1)}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDelegationService_Update(t *testing.T) {
	ctx := context.Background()
	existing := DelegationRecord{
		ID:       "rec",
		ParentID: ptrTo("root"),
		Title:    "old",
		Status:   StatusInProgress,
		Progress: 55,
		Response: &Response{WorkStatus: WorkInProgress, Description: "half", CompletionPercentage: 55},
	}
	repo := newDelegationRepoStub(existing)
	svc := NewDelegationService(repo, nil, nil, fixedClock)

	input := validInput("lead-1")
	input.Priority = PriorityHigh
	record, err := svc.Update(ctx, "rec", input)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if record.Title != input.Title || record.AssignedTo != "lead-1" || record.Priority != PriorityHigh {
		t.Fatalf("fields not replaced: %+v", record)
	}
	if record.ParentID == nil || record.Status != StatusInProgress || record.Progress != 55 || record.Response == nil {
		t.Fatalf("lifecycle fields changed: %+v", record)
	}
}

func TestDelegationService_AttachResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("validates the response", func(t *testing.T) {
		repo := newDelegationRepoStub(DelegationRecord{ID: "rec"})
		svc := NewDelegationService(repo, nil, nil, fixedClock)

		_, err := svc.AttachResponse(ctx, "rec", ResponseInput{WorkStatus: "overdue", CompletionPercentage: 120})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{"completionPercentage", "responseDescription", "workStatus"}
		if !reflect.DeepEqual(vErr.Fields(), want) {
			t.Fatalf("fields = %v, want %v", vErr.Fields(), want)
		}
	})

	t.Run("fills submission time from the clock", func(t *testing.T) {
		repo := newDelegationRepoStub(DelegationRecord{ID: "rec"})
		svc := NewDelegationService(repo, nil, nil, fixedClock)

		record, err := svc.AttachResponse(ctx, "rec", ResponseInput{WorkStatus: WorkCompleted, Description: "done", CompletionPercentage: 100})
		if err != nil {
			t.Fatalf("AttachResponse: %v", err)
		}
		if record.Response == nil || !record.Response.SubmittedAt.Equal(delegationNow) {
			t.Fatalf("unexpected response: %+v", record.Response)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		repo := newDelegationRepoStub(DelegationRecord{ID: "rec"})
		svc := NewDelegationService(repo, nil, nil, fixedClock)

		if _, err := svc.AttachResponse(ctx, "rec", ResponseInput{WorkStatus: WorkInProgress, Description: "first", CompletionPercentage: 10}); err != nil {
			t.Fatalf("first AttachResponse: %v", err)
		}
		record, err := svc.AttachResponse(ctx, "rec", ResponseInput{WorkStatus: WorkCompleted, Description: "second", CompletionPercentage: 100})
		if err != nil {
			t.Fatalf("second AttachResponse: %v", err)
		}
		if record.Response.Description != "second" || record.Response.WorkStatus != WorkCompleted {
			t.Fatalf("expected replacement, got %+v", record.Response)
		}
	})
}

func TestDelegationService_AttachResponseIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		submitted := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(rt, "submitted"), 0).UTC()
		input := ResponseInput{
			SubmittedAt:          &submitted,
			WorkStatus:           rapid.SampledFrom([]WorkStatus{WorkPending, WorkInProgress, WorkCompleted}).Draw(rt, "work"),
			Description:          rapid.StringMatching(`[a-z]{1,16}`).Draw(rt, "description"),
			CompletionPercentage: rapid.IntRange(0, 100).Draw(rt, "completion"),
		}
		want := Response{
			SubmittedAt:          submitted,
			WorkStatus:           input.WorkStatus,
			Description:          input.Description,
			CompletionPercentage: input.CompletionPercentage,
		}

		repo := newDelegationRepoStub(DelegationRecord{ID: "rec"})
		svc := NewDelegationService(repo, nil, nil, fixedClock)

		for i := 0; i < 2; i++ {
			record, err := svc.AttachResponse(context.Background(), "rec", input)
			if err != nil {
				rt.Fatalf("AttachResponse %d: %v", i, err)
			}
			stored, _ := svc.Get(context.Background(), "rec")
			if stored.Response == nil || *stored.Response != want || *record.Response != want {
				rt.Fatalf("attempt %d: response %+v, want %+v", i, stored.Response, want)
			}
		}
	})
}

func TestDelegationService_List(t *testing.T) {
	ctx := context.Background()
	repo := newDelegationRepoStub(
		DelegationRecord{ID: "a", AssignedTo: "hr-1", Deadline: time.Date(2024, time.June, 10, 23, 0, 0, 0, time.UTC), Status: StatusPending},
		DelegationRecord{ID: "b", AssignedTo: "hr-1", Deadline: time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC), Status: StatusPending},
		DelegationRecord{ID: "c", AssignedTo: "lead-1", Deadline: time.Date(2024, time.June, 10, 8, 0, 0, 0, time.UTC), Status: StatusCompleted},
	)
	svc := NewDelegationService(repo, nil, nil, fixedClock)

	day := schedule.Date{Year: 2024, Month: time.June, Day: 10}
	records, err := svc.List(ctx, RecordFilter{DeadlineOn: &day})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if ids := idsOf(records); !reflect.DeepEqual(ids, []string{"a", "c"}) {
		t.Fatalf("DeadlineOn ids = %v", ids)
	}

	completed := StatusCompleted
	records, err = svc.List(ctx, RecordFilter{Status: &completed})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if ids := idsOf(records); !reflect.DeepEqual(ids, []string{"c"}) {
		t.Fatalf("status ids = %v", ids)
	}

	bogus := DelegationStatus("bogus")
	if _, err := svc.List(ctx, RecordFilter{Status: &bogus}); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestDelegationService_SweepOverdue(t *testing.T) {
	past := delegationNow.Add(-time.Hour)
	future := delegationNow.Add(time.Hour)
	repo := newDelegationRepoStub(
		DelegationRecord{ID: "late-pending", Deadline: past, Status: StatusPending},
		DelegationRecord{ID: "late-progress", Deadline: past, Status: StatusInProgress},
		DelegationRecord{ID: "late-done", Deadline: past, Status: StatusCompleted},
		DelegationRecord{ID: "late-cancelled", Deadline: past, Status: StatusCancelled},
		DelegationRecord{ID: "upcoming", Deadline: future, Status: StatusPending},
	)
	svc := NewDelegationService(repo, nil, nil, fixedClock)

	count, err := svc.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records swept, got %d", count)
	}

	want := map[string]DelegationStatus{
		"late-pending":   StatusOverdue,
		"late-progress":  StatusOverdue,
		"late-done":      StatusCompleted,
		"late-cancelled": StatusCancelled,
		"upcoming":       StatusPending,
	}
	for id, status := range want {
		if got := repo.records[id].Status; got != status {
			t.Fatalf("%s status = %s, want %s", id, got, status)
		}
	}

	again, err := svc.SweepOverdue(context.Background())
	if err != nil || again != 0 {
		t.Fatalf("second sweep = %d, %v; want 0, nil", again, err)
	}
}

func TestDelegationService_RemoveMissing(t *testing.T) {
	svc := NewDelegationService(newDelegationRepoStub(), nil, nil, fixedClock)
	if err := svc.Remove(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func idsOf(records []DelegationRecord) []string {
	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	return ids
}

func ptrTo[T any](v T) *T { return &v }

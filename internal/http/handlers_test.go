package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/hr-delegation/internal/adapter"
	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/persistence/memory"
)

var apiNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

type apiFixture struct {
	handler     http.Handler
	departments *application.DepartmentService
	people      *application.PersonService
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	return newAPIFixtureAt(t, apiNow)
}

func newAPIFixtureAt(t *testing.T, at time.Time) apiFixture {
	t.Helper()

	var seq atomic.Int64
	nextID := func() string { return fmt.Sprintf("id-%03d", seq.Add(1)) }
	now := func() time.Time { return at }

	repos := adapter.New(memory.New())
	departments := application.NewDepartmentService(repos.Departments, nextID, now, time.Minute)
	people := application.NewPersonService(repos.People, departments, nextID, now)
	delegations := application.NewDelegationService(repos.Delegations, people, nextID, now)
	meetings := application.NewMeetingService(repos.Meetings, departments, nextID, now)
	calendar := application.NewCalendarService(repos.Calendar, meetings, departments, nextID, now)

	handler := NewRouter(RouterConfig{
		Delegations: NewDelegationHandler(delegations, now, nil),
		Meetings:    NewMeetingHandler(meetings, now, nil),
		Calendar:    NewCalendarHandler(calendar, now, nil),
		Directory:   NewDirectoryHandler(departments, people, nil),
	})
	return apiFixture{handler: handler, departments: departments, people: people}
}

func (f apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, req)
	return recorder
}

func (f apiFixture) person(t *testing.T, name string, role application.Role) application.Person {
	t.Helper()
	person, err := f.people.CreatePerson(context.Background(), application.PersonInput{Name: name, Role: role})
	if err != nil {
		t.Fatalf("create person %s: %v", name, err)
	}
	return person
}

func decodeJSON[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(recorder.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", recorder.Body.String(), err)
	}
	return out
}

func delegationBody(assignee, deadline string) string {
	return fmt.Sprintf(`{"title":"Quarterly review","description":"Collect team reviews","highlights":["forms"],"assignedTo":%q,"deadline":%q,"priority":"high"}`, assignee, deadline)
}

func TestDelegationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create returns the record with a derived presentation", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		hr := f.person(t, "Hana", application.RoleHR)

		rec := f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-11T17:00:00Z"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeJSON[delegationResponse](t, rec).Delegation
		if got.Status != "pending" || got.Priority != "high" || got.ParentID != nil {
			t.Fatalf("unexpected record: %+v", got)
		}
		if got.Presentation.Kind != "tomorrow" || got.Presentation.Label != "Tomorrow" {
			t.Fatalf("expected tomorrow presentation, got %+v", got.Presentation)
		}
	})

	t.Run("schema type errors are reported per field", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/api/delegations", `{"title":42,"description":"x","assignedTo":"a","deadline":"2024-06-11T17:00:00Z"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeJSON[errorResponse](t, rec)
		if body.ErrorCode != codeValidation {
			t.Fatalf("expected %s, got %s", codeValidation, body.ErrorCode)
		}
		if _, ok := body.Errors["title"]; !ok {
			t.Fatalf("expected title error, got %v", body.Errors)
		}
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/api/delegations", `{"title":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown assignee fails validation", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/api/delegations", delegationBody("ghost", "2024-06-11T17:00:00Z"))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		if _, ok := decodeJSON[errorResponse](t, rec).Errors["assignedTo"]; !ok {
			t.Fatalf("expected assignedTo error, got %s", rec.Body.String())
		}
	})

	t.Run("missing record is not found", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodGet, "/api/delegations/ghost", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := decodeJSON[errorResponse](t, rec).ErrorCode; code != codeNotFound {
			t.Fatalf("expected %s, got %s", codeNotFound, code)
		}
	})

	t.Run("forward links a child and leaves the source untouched", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		hr := f.person(t, "Hana", application.RoleHR)
		lead := f.person(t, "Taro", application.RoleTeamLeader)

		root := decodeJSON[delegationResponse](t, f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-20T17:00:00Z"))).Delegation

		rec := f.do(t, http.MethodPost, "/api/delegations/"+root.ID+"/forward", delegationBody(lead.ID, "2024-06-18T17:00:00Z"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		child := decodeJSON[delegationResponse](t, rec).Delegation
		if child.ParentID == nil || *child.ParentID != root.ID {
			t.Fatalf("expected parent %s, got %v", root.ID, child.ParentID)
		}
		if child.Presentation.Kind != "date" || child.Presentation.Label != "Jun 18" {
			t.Fatalf("expected date presentation, got %+v", child.Presentation)
		}

		children := decodeJSON[listDelegationsResponse](t, f.do(t, http.MethodGet, "/api/delegations/"+root.ID+"/children", "")).Delegations
		if len(children) != 1 || children[0].ID != child.ID {
			t.Fatalf("expected one child, got %+v", children)
		}

		source := decodeJSON[delegationResponse](t, f.do(t, http.MethodGet, "/api/delegations/"+root.ID, "")).Delegation
		if source.UpdatedAt != root.UpdatedAt || source.Status != root.Status {
			t.Fatalf("source changed: before %+v after %+v", root, source)
		}
	})

	t.Run("patch updates a forwarded record and cancelled becomes terminal", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		hr := f.person(t, "Hana", application.RoleHR)
		lead := f.person(t, "Taro", application.RoleTeamLeader)

		root := decodeJSON[delegationResponse](t, f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-20T17:00:00Z"))).Delegation
		child := decodeJSON[delegationResponse](t, f.do(t, http.MethodPost, "/api/delegations/"+root.ID+"/forward", delegationBody(lead.ID, "2024-06-18T17:00:00Z"))).Delegation

		rec := f.do(t, http.MethodPatch, "/api/delegations/"+child.ID, `{"status":"cancelled","progress":40}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeJSON[delegationResponse](t, rec).Delegation
		if got.Progress != 40 || got.Status != "cancelled" {
			t.Fatalf("unexpected patch result: %+v", got)
		}
		if got.Presentation.Kind != "terminal" {
			t.Fatalf("expected terminal presentation, got %+v", got.Presentation)
		}
	})

	t.Run("response attaches to the record", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		hr := f.person(t, "Hana", application.RoleHR)

		root := decodeJSON[delegationResponse](t, f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-20T17:00:00Z"))).Delegation

		rec := f.do(t, http.MethodPut, "/api/delegations/"+root.ID+"/response", `{"workStatus":"in-progress","responseDescription":"started","completionPercentage":25}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeJSON[delegationResponse](t, rec).Delegation
		if got.Response == nil || got.Response.CompletionPercentage != 25 || got.Response.WorkStatus != "in-progress" {
			t.Fatalf("unexpected response: %+v", got.Response)
		}
	})

	t.Run("list filters by assignee", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		hr := f.person(t, "Hana", application.RoleHR)
		other := f.person(t, "Hiro", application.RoleHR)

		f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-20T17:00:00Z"))
		f.do(t, http.MethodPost, "/api/delegations", delegationBody(other.ID, "2024-06-20T17:00:00Z"))

		list := decodeJSON[listDelegationsResponse](t, f.do(t, http.MethodGet, "/api/delegations?assignedTo="+hr.ID, "")).Delegations
		if len(list) != 1 || list[0].AssignedTo != hr.ID {
			t.Fatalf("expected one record for %s, got %+v", hr.ID, list)
		}

		if rec := f.do(t, http.MethodGet, "/api/delegations?date=june", ""); rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for bad date filter, got %d", rec.Code)
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		hr := f.person(t, "Hana", application.RoleHR)

		root := decodeJSON[delegationResponse](t, f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-20T17:00:00Z"))).Delegation
		if rec := f.do(t, http.MethodDelete, "/api/delegations/"+root.ID, ""); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec := f.do(t, http.MethodGet, "/api/delegations/"+root.ID, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", rec.Code)
		}
	})

	t.Run("unsupported methods advertise the allowed set", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodPut, "/api/delegations", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
			t.Fatalf("unexpected Allow header %q", allow)
		}
	})
}

const meetingBody = `{"title":"Weekly sync","schedule":{"date":"2024-06-10","startTime":"08:30","endTime":"10:00"},"platform":"zoom","meetingLink":"https://meet.example.com/sync"}`

func TestMeetingEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create derives live status and cancel is not repeatable", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/api/meetings", meetingBody)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		meeting := decodeJSON[meetingResponse](t, rec).Meeting
		if meeting.Presentation.Kind != "live_now" || meeting.Presentation.Label != "Live Now" {
			t.Fatalf("expected live presentation, got %+v", meeting.Presentation)
		}

		rec = f.do(t, http.MethodPost, "/api/meetings/"+meeting.ID+"/cancel", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeJSON[meetingResponse](t, rec).Meeting; got.Status != "cancelled" || got.Presentation.Kind != "terminal" {
			t.Fatalf("unexpected cancelled meeting: %+v", got)
		}

		rec = f.do(t, http.MethodPost, "/api/meetings/"+meeting.ID+"/cancel", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if code := decodeJSON[errorResponse](t, rec).ErrorCode; code != codeInvalidTransition {
			t.Fatalf("expected %s, got %s", codeInvalidTransition, code)
		}
	})

	t.Run("inverted window is an invalid schedule", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		body := strings.Replace(meetingBody, `"endTime":"10:00"`, `"endTime":"08:00"`, 1)
		rec := f.do(t, http.MethodPost, "/api/meetings", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		if code := decodeJSON[errorResponse](t, rec).ErrorCode; code != codeInvalidSchedule {
			t.Fatalf("expected %s, got %s", codeInvalidSchedule, code)
		}
	})

	t.Run("department membership can be toggled", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		dept, err := f.departments.CreateDepartment(context.Background(), application.DepartmentInput{Name: "Sales", Code: "sls"})
		if err != nil {
			t.Fatalf("create department: %v", err)
		}

		meeting := decodeJSON[meetingResponse](t, f.do(t, http.MethodPost, "/api/meetings", meetingBody)).Meeting
		path := "/api/meetings/" + meeting.ID + "/departments/" + dept.ID

		rec := f.do(t, http.MethodPut, path, `{"role":"host"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeJSON[meetingResponse](t, rec).Meeting.Departments; len(got) != 1 || got[0].Role != "host" {
			t.Fatalf("expected host department, got %+v", got)
		}

		rec = f.do(t, http.MethodPost, path+"/toggle", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeJSON[meetingResponse](t, rec).Meeting.Departments; len(got) != 0 {
			t.Fatalf("expected toggle to remove department, got %+v", got)
		}
	})
}

func TestCalendarEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("holiday resolves the day", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/api/calendar/events", `{"date":"2024-06-12","statusKind":"FullDayHoliday","title":"Founders day"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		event := decodeJSON[calendarEventResponse](t, rec).Event

		rec = f.do(t, http.MethodGet, "/api/calendar/days/2024-06-12", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		day := decodeJSON[calendarDayResponse](t, rec).Day
		if day.Status != "FullDayHoliday" || len(day.EventIDs) != 1 || day.EventIDs[0] != event.ID {
			t.Fatalf("unexpected day: %+v", day)
		}
	})

	t.Run("month returns every day", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		rec := f.do(t, http.MethodGet, "/api/calendar/months/2024-02", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if days := decodeJSON[calendarMonthResponse](t, rec).Days; len(days) != 29 {
			t.Fatalf("expected 29 days, got %d", len(days))
		}
		if rec := f.do(t, http.MethodGet, "/api/calendar/months/feb", ""); rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for bad month, got %d", rec.Code)
		}
	})

	t.Run("bad day path is rejected", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)

		if rec := f.do(t, http.MethodGet, "/api/calendar/days/tomorrow", ""); rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("export serves text/calendar", func(t *testing.T) {
		t.Parallel()
		f := newAPIFixture(t)
		f.do(t, http.MethodPost, "/api/calendar/events", `{"date":"2024-06-12","statusKind":"FullDayHoliday","title":"Founders day"}`)

		rec := f.do(t, http.MethodGet, "/api/calendar.ics?from=2024-06-01&to=2024-06-30", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
			t.Fatalf("unexpected content type %q", ct)
		}
		if !strings.Contains(rec.Body.String(), "Founders day") {
			t.Fatalf("expected exported summary, got %s", rec.Body.String())
		}
	})
}

func TestDirectoryEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/departments", `{"name":"Human Resources","code":"hr"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	dept := decodeJSON[departmentResponse](t, rec).Department
	if dept.Code != "HR" {
		t.Fatalf("expected upper cased code, got %q", dept.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/people", fmt.Sprintf(`{"name":"Hana","email":"Hana@Example.com","role":"HR","departmentId":%q}`, dept.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	person := decodeJSON[personResponse](t, rec).Person
	if person.Role != "hr" || person.Email != "hana@example.com" {
		t.Fatalf("unexpected person: %+v", person)
	}

	rec = f.do(t, http.MethodPost, "/api/people", `{"name":"Nobody","role":"intern"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/people/"+person.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if rec := f.do(t, http.MethodDelete, "/api/departments/"+dept.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/departments/"+dept.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	healthy := NewRouter(RouterConfig{})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	failing := NewRouter(RouterConfig{Health: func(context.Context) error { return errors.New("disk gone") }})
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthPath, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestDelegationDeadlineUsesClockZone(t *testing.T) {
	t.Parallel()

	zones := []*time.Location{
		time.FixedZone("IST", 5*60*60+30*60),
		time.FixedZone("PDT", -7*60*60),
	}
	for _, loc := range zones {
		loc := loc
		t.Run(loc.String(), func(t *testing.T) {
			t.Parallel()
			f := newAPIFixtureAt(t, time.Date(2024, time.June, 10, 17, 0, 0, 0, loc))
			hr := f.person(t, "Hana", application.RoleHR)

			rec := f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "2024-06-10T18:00"))
			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			got := decodeJSON[delegationResponse](t, rec).Delegation
			if got.Presentation.Kind != "starting_soon" || got.Presentation.Label != "Starting Soon" {
				t.Fatalf("expected starting soon, got %+v", got.Presentation)
			}
			want := time.Date(2024, time.June, 10, 18, 0, 0, 0, loc).Format(time.RFC3339)
			if got.Deadline != want {
				t.Fatalf("expected deadline %s, got %s", want, got.Deadline)
			}

			rec = f.do(t, http.MethodGet, "/api/delegations/"+got.ID, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if reread := decodeJSON[delegationResponse](t, rec).Delegation; reread.Presentation.Kind != "starting_soon" {
				t.Fatalf("expected starting soon after reload, got %+v", reread.Presentation)
			}
		})
	}
}

func TestDelegationRejectsUnparsableDeadline(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	hr := f.person(t, "Hana", application.RoleHR)

	rec := f.do(t, http.MethodPost, "/api/delegations", delegationBody(hr.ID, "next friday"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeJSON[errorResponse](t, rec); body.Errors["deadline"] == "" {
		t.Fatalf("expected deadline error, got %v", body.Errors)
	}
}

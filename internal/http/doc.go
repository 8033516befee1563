// Package http exposes the delegation chain, meetings, calendar and directory
// over JSON.
//
// Every route lives under /api except the liveness probe at /healthz:
//   - /api/delegations: list (filters assignedTo, parentId, date, status) and
//     create root records. /api/delegations/{id} supports GET, PUT (full update
//     of a root record), PATCH (edit a forwarded record) and DELETE. Forwarding
//     is POST /api/delegations/{id}/forward, direct children are listed at
//     /api/delegations/{id}/children and the assignee response is PUT to
//     /api/delegations/{id}/response.
//   - /api/meetings: list and create. Reschedule, cancel and complete are POSTs
//     under /api/meetings/{id}. Departments are attached with PUT and detached
//     with DELETE on /api/meetings/{id}/departments/{departmentId}.
//   - /api/calendar/events, /api/calendar/days/{date} and
//     /api/calendar/months/{yyyy-mm} manage holidays and attendance and
//     resolve day statuses. POST /api/calendar/import accepts text/calendar and
//     GET /api/calendar.ics exports one.
//   - /api/departments and /api/people hold the directory.
//
// Records and meetings carry a derived "presentation" object with the status
// kind and label as of the moment the response was built. Request bodies are
// checked against the JSON schemas under schemas/ before they reach a service.
// Errors are returned as {"error_code","message","errors"}.
package http

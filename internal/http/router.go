package http

import (
	"context"
	"net/http"
	"strings"
)

// healthPath answers liveness probes and bypasses API key checks.
const healthPath = "/healthz"

type RouterConfig struct {
	Delegations *DelegationHandler
	Meetings    *MeetingHandler
	Calendar    *CalendarHandler
	Directory   *DirectoryHandler
	// Health reports storage readiness. Nil means always healthy.
	Health     func(context.Context) error
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				handlerLogger(r.Context(), nil, "Router", "Health").WarnContext(r.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}` + "\n"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	if cfg.Delegations != nil {
		h := cfg.Delegations
		mux.HandleFunc("/api/delegations", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.List(w, r)
			case http.MethodPost:
				h.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/delegations/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.Get(w, r)
			case http.MethodPut:
				h.Update(w, r)
			case http.MethodPatch:
				h.Edit(w, r)
			case http.MethodDelete:
				h.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/delegations/{id}/children", only(http.MethodGet, h.Children))
		mux.HandleFunc("/api/delegations/{id}/forward", only(http.MethodPost, h.Forward))
		mux.HandleFunc("/api/delegations/{id}/response", only(http.MethodPut, h.Respond))
	}

	if cfg.Meetings != nil {
		h := cfg.Meetings
		mux.HandleFunc("/api/meetings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.List(w, r)
			case http.MethodPost:
				h.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/meetings/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.Get(w, r)
			case http.MethodDelete:
				h.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/meetings/{id}/reschedule", only(http.MethodPost, h.Reschedule))
		mux.HandleFunc("/api/meetings/{id}/cancel", only(http.MethodPost, h.Cancel))
		mux.HandleFunc("/api/meetings/{id}/complete", only(http.MethodPost, h.Complete))
		mux.HandleFunc("/api/meetings/{id}/departments/{departmentId}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPut:
				h.AddDepartment(w, r)
			case http.MethodDelete:
				h.RemoveDepartment(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/meetings/{id}/departments/{departmentId}/toggle", only(http.MethodPost, h.ToggleDepartment))
	}

	if cfg.Calendar != nil {
		h := cfg.Calendar
		mux.HandleFunc("/api/calendar/events", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.ListEvents(w, r)
			case http.MethodPost:
				h.CreateEvent(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/calendar/events/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.GetEvent(w, r)
			case http.MethodDelete:
				h.DeleteEvent(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/calendar/days/{date}", only(http.MethodGet, h.Day))
		mux.HandleFunc("/api/calendar/months/{month}", only(http.MethodGet, h.Month))
		mux.HandleFunc("/api/calendar/import", only(http.MethodPost, h.Import))
		mux.HandleFunc("/api/calendar.ics", only(http.MethodGet, h.Export))
	}

	if cfg.Directory != nil {
		h := cfg.Directory
		mux.HandleFunc("/api/departments", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.ListDepartments(w, r)
			case http.MethodPost:
				h.CreateDepartment(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/departments/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.GetDepartment(w, r)
			case http.MethodDelete:
				h.DeleteDepartment(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/people", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h.ListPeople(w, r)
			case http.MethodPost:
				h.CreatePerson(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/people/{id}", only(http.MethodGet, h.GetPerson))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, method)
			return
		}
		next(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

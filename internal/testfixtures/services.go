package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/hr-delegation/internal/adapter"
	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/persistence/memory"
)

// ServiceFactory builds the application services over one store with a shared
// deterministic clock and id sequence.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
	CacheTTL    time.Duration
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{CacheTTL: time.Minute}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Clock = clock }
}

func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.IDGenerator = generator }
}

func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Logger = logger }
}

// WithCacheTTL sets the department existence cache lifetime. Zero disables caching.
func WithCacheTTL(ttl time.Duration) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.CacheTTL = ttl }
}

// Services is the full set of wired application services.
type Services struct {
	Delegations *application.DelegationService
	Meetings    *application.MeetingService
	Calendar    *application.CalendarService
	Departments *application.DepartmentService
	People      *application.PersonService
}

// Build wires every service over store. Departments back the catalog and
// people back the assignee directory, as in the server.
func (f *ServiceFactory) Build(store adapter.Store) Services {
	repos := adapter.New(store)
	ids := f.IDGenerator.NextFunc()
	now := f.Clock.NowFunc()

	departments := application.NewDepartmentServiceWithLogger(repos.Departments, ids, now, f.CacheTTL, f.Logger)
	people := application.NewPersonServiceWithLogger(repos.People, departments, ids, now, f.Logger)
	meetings := application.NewMeetingServiceWithLogger(repos.Meetings, departments, ids, now, f.Logger)
	return Services{
		Delegations: application.NewDelegationServiceWithLogger(repos.Delegations, people, ids, now, f.Logger),
		Meetings:    meetings,
		Calendar:    application.NewCalendarServiceWithLogger(repos.Calendar, meetings, departments, ids, now, f.Logger),
		Departments: departments,
		People:      people,
	}
}

// BuildInMemory wires every service over a fresh in-memory store.
func (f *ServiceFactory) BuildInMemory() Services {
	return f.Build(memory.New())
}

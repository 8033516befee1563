package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/hr-delegation/internal/adapter"
	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/config"
	httptransport "github.com/example/hr-delegation/internal/http"
	"github.com/example/hr-delegation/internal/persistence/memory"
	"github.com/example/hr-delegation/internal/persistence/sqlite"
	"github.com/example/hr-delegation/internal/persistence/sqlite/migration"
	"github.com/example/hr-delegation/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// app is the assembled server: handler, background jobs and the storage
// release hook.
type app struct {
	handler http.Handler
	sweeper *scheduler.OverdueSweeper
	close   func() error
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := buildApp(ctx, cfg, logger, time.Now)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if a.sweeper != nil {
		a.sweeper.Start()
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if a.sweeper != nil {
			a.sweeper.Stop(shutdownCtx)
		}
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("hrdesk API listening", "addr", server.Addr, "storage", cfg.Storage, "auth", cfg.AuthEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	<-shutdownDone
	logger.Info("hrdesk API stopped")
	return nil
}

type store interface {
	adapter.Store
	Ping(ctx context.Context) error
	Close() error
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return memoryStore{memory.New()}, nil
	case config.StorageSQLite:
		storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		applied, err := storage.Migrate(ctx, logger)
		if err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("storage ready", "path", cfg.SQLitePath, "applied_migrations", applied)
		return storage, nil
	default:
		return nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}

// memoryStore adds a no-op Ping so the in-memory backend can serve /healthz.
type memoryStore struct {
	*memory.Storage
}

func (memoryStore) Ping(context.Context) error { return nil }

func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time) (*app, error) {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repos := adapter.New(st)
	idGenerator := uuid.NewString

	departmentService := application.NewDepartmentServiceWithLogger(repos.Departments, idGenerator, now, cfg.DepartmentCacheTTL, logger)
	personService := application.NewPersonServiceWithLogger(repos.People, departmentService, idGenerator, now, logger)
	delegationService := application.NewDelegationServiceWithLogger(repos.Delegations, personService, idGenerator, now, logger)
	meetingService := application.NewMeetingServiceWithLogger(repos.Meetings, departmentService, idGenerator, now, logger)
	calendarService := application.NewCalendarServiceWithLogger(repos.Calendar, meetingService, departmentService, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Delegations: httptransport.NewDelegationHandler(delegationService, now, logger),
		Meetings:    httptransport.NewMeetingHandler(meetingService, now, logger),
		Calendar:    httptransport.NewCalendarHandler(calendarService, now, logger),
		Directory:   httptransport.NewDirectoryHandler(departmentService, personService, logger),
		Health:      st.Ping,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireAPIKey(cfg.APIKeyHash, logger),
		},
	})

	a := &app{handler: router, close: st.Close}
	if cfg.SweepEnabled() {
		sweeper, err := scheduler.NewOverdueSweeper(delegationService, cfg.OverdueSweep, time.Local, logger)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("configure overdue sweep: %w", err)
		}
		a.sweeper = sweeper
	}
	return a, nil
}

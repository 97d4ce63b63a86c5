// Package app wires configuration into the running HTTP service.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sprint-tracker/config"
	"sprint-tracker/internal/handler"
	"sprint-tracker/internal/httpserver"
	"sprint-tracker/internal/localstore"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/service"
	"sprint-tracker/internal/session"
	"sprint-tracker/pkg/db"
	"sprint-tracker/pkg/mq"
	"sprint-tracker/pkg/redis"
	"sprint-tracker/pkg/store"
)

type App struct {
	Router *httpserver.Router
	Store  *store.Client

	closers []func()
	logger  *zap.Logger
}

// New connects every backing service the config enables. The audit
// database, broker and Redis are optional; the document store and the
// local fallback file are not.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{logger: log}

	a.Store = store.NewClient(cfg.Store, cfg.Breaker, log)

	local, err := localstore.Open(cfg.Fallback.Path)
	if err != nil {
		return nil, fmt.Errorf("open fallback store: %w", err)
	}
	a.onClose(func() { _ = local.Close() })

	var audit service.AuditLog = repository.NopAuditRepository{}
	if cfg.DB.Host != "" {
		pool, err := db.NewConnection(ctx, cfg.DB, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect audit database: %w", err)
		}
		a.onClose(pool.Close)

		repo := repository.NewAuditRepository(pool, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("prepare audit schema: %w", err)
		}
		audit = repo
		log.Info("write audit enabled", zap.String("db_host", cfg.DB.Host))
	}

	var events service.EventPublisher = mq.NopPublisher{}
	var broker httpserver.BrokerStatus
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect broker: %w", err)
		}
		a.onClose(publisher.Close)
		events = publisher
		broker = publisher
		log.Info("change events enabled", zap.String("exchange", cfg.MQ.Exchange))
	}

	var sessions session.Store
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.onClose(func() { _ = rdb.Close() })
		sessions = session.NewRedisStore(rdb)
		log.Info("sessions stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessions = session.NewMemoryStore()
		log.Warn("redis not configured, sessions kept in memory")
	}

	employeeRepo := repository.NewEmployeeRepository(a.Store, log)
	sprintRepo := repository.NewSprintRepository(a.Store, log)
	issueRepo := repository.NewIssueRepository(a.Store, log)
	requirementRepo := repository.NewRequirementRepository(a.Store, local, log)

	employees := service.NewEmployeeService(employeeRepo, audit, events, log)
	auth := service.NewAuthService(employees, employeeRepo, sessions, cfg.JWT, log)

	h := httpserver.Handlers{
		Auth:      handler.NewAuthHandler(auth, log),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(sprintRepo, issueRepo, employeeRepo, log)),
		Sprints:   handler.NewSprintHandler(service.NewSprintService(sprintRepo, audit, events, log), log),
		Issues:    handler.NewIssueHandler(service.NewIssueService(issueRepo, employeeRepo, audit, events, log), log),
		Employees: handler.NewEmployeeHandler(employees, log),
		Departments: handler.NewDepartmentHandler(
			service.NewDepartmentService(repository.NewDepartmentRepository(a.Store, log), audit, events, log),
			service.NewApplicationService(repository.NewApplicationRepository(a.Store, log), log),
			log,
		),
		Requirements: handler.NewRequirementHandler(service.NewRequirementService(requirementRepo, audit, events, log), log),
		Audit:        handler.NewAuditHandler(service.NewAuditService(audit), log),
	}
	a.Router = httpserver.NewRouter(h, auth, a.Store, broker, log)

	return a, nil
}

func (a *App) onClose(f func()) {
	a.closers = append(a.closers, f)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

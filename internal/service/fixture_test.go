package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sprint-tracker/internal/localstore"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
	"sprint-tracker/internal/storetest"
	"sprint-tracker/pkg/config"
	"sprint-tracker/pkg/store"
)

var (
	manager  = session.Session{ID: "s-m", EmpID: "M1", Name: "Meera", Role: "manager"}
	employee = session.Session{ID: "s-e", EmpID: "E100", Name: "Ravi", Role: "employee"}
)

type fakeAudit struct {
	mu      sync.Mutex
	entries []repository.AuditEntry
}

func (a *fakeAudit) Record(_ context.Context, e repository.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) Latest(_ context.Context, limit int) ([]repository.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]repository.AuditEntry, 0, len(a.entries))
	for i := len(a.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

type published struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{routingKey: routingKey, payload: payload})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.routingKey)
	}
	return out
}

type fixture struct {
	srv    *storetest.Server
	client *store.Client
	audit  *fakeAudit
	events *fakePublisher
	log    *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := storetest.New(t)
	return &fixture{
		srv: srv,
		client: store.NewClient(
			config.StoreConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
			config.BreakerConfig{FailureThreshold: 100, SuccessThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxRequests: 1},
			zap.NewNop(),
		),
		audit:  &fakeAudit{},
		events: &fakePublisher{},
		log:    zap.NewNop(),
	}
}

func (f *fixture) sprints() *SprintService {
	return NewSprintService(repository.NewSprintRepository(f.client, f.log), f.audit, f.events, f.log)
}

func (f *fixture) issues() *IssueService {
	return NewIssueService(
		repository.NewIssueRepository(f.client, f.log),
		repository.NewEmployeeRepository(f.client, f.log),
		f.audit, f.events, f.log,
	)
}

func (f *fixture) employees() *EmployeeService {
	return NewEmployeeService(repository.NewEmployeeRepository(f.client, f.log), f.audit, f.events, f.log)
}

func (f *fixture) departments() *DepartmentService {
	return NewDepartmentService(repository.NewDepartmentRepository(f.client, f.log), f.audit, f.events, f.log)
}

func (f *fixture) requirements(t *testing.T) *RequirementService {
	t.Helper()
	local, err := localstore.Open(filepath.Join(t.TempDir(), "requirements.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })
	repo := repository.NewRequirementRepository(f.client, local, f.log)
	return NewRequirementService(repo, f.audit, f.events, f.log)
}

func (f *fixture) dashboard() *DashboardService {
	return NewDashboardService(
		repository.NewSprintRepository(f.client, f.log),
		repository.NewIssueRepository(f.client, f.log),
		repository.NewEmployeeRepository(f.client, f.log),
		f.log,
	)
}

func (f *fixture) auth(sessions session.Store) *AuthService {
	repo := repository.NewEmployeeRepository(f.client, f.log)
	return NewAuthService(
		NewEmployeeService(repo, f.audit, f.events, f.log),
		repo,
		sessions,
		config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
		f.log,
	)
}

func sprintDoc(title, assignedTo, start, status string) map[string]any {
	return map[string]any{
		"title":           title,
		"applicationname": "Portal",
		"department":      "Engineering",
		"assigned_to":     assignedTo,
		"priority":        "High",
		"status":          status,
		"start_date":      start,
		"due_date":        "2099-01-01",
		"description":     "work",
	}
}

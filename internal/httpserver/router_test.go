package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sprint-tracker/internal/handler"
	"sprint-tracker/internal/localstore"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/service"
	"sprint-tracker/internal/session"
	"sprint-tracker/internal/storetest"
	"sprint-tracker/internal/util"
	"sprint-tracker/pkg/config"
	"sprint-tracker/pkg/store"
	"sprint-tracker/pkg/trace"
)

type testServer struct {
	srv    *storetest.Server
	router *Router
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

type brokerState bool

func (b brokerState) IsConnected() bool { return bool(b) }

func newTestServer(t *testing.T, pinger Pinger) *testServer {
	return newTestServerWithBroker(t, pinger, nil)
}

func newTestServerWithBroker(t *testing.T, pinger Pinger, broker BrokerStatus) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	srv := storetest.New(t)
	hash, err := util.HashPassword("pw")
	require.NoError(t, err)
	srv.Seed(repository.EmployeeCollection, "a", map[string]string{"empid": "E100", "name": "Ravi", "department": "Eng", "role": "employee", "password": hash})
	srv.Seed(repository.EmployeeCollection, "b", map[string]string{"empid": "M1", "name": "Meera", "department": "Eng", "role": "manager", "password": hash})

	client := store.NewClient(
		config.StoreConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
		config.BreakerConfig{FailureThreshold: 100, SuccessThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxRequests: 1},
		log,
	)
	if pinger == nil {
		pinger = client
	}
	local, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	employeeRepo := repository.NewEmployeeRepository(client, log)
	sprintRepo := repository.NewSprintRepository(client, log)
	issueRepo := repository.NewIssueRepository(client, log)
	employees := service.NewEmployeeService(employeeRepo, nil, nil, log)
	auth := service.NewAuthService(employees, employeeRepo, session.NewMemoryStore(), config.JWTConfig{Secret: "s", TTL: time.Hour}, log)

	h := Handlers{
		Auth:      handler.NewAuthHandler(auth, log),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(sprintRepo, issueRepo, employeeRepo, log)),
		Sprints:   handler.NewSprintHandler(service.NewSprintService(sprintRepo, nil, nil, log), log),
		Issues:    handler.NewIssueHandler(service.NewIssueService(issueRepo, employeeRepo, nil, nil, log), log),
		Employees: handler.NewEmployeeHandler(employees, log),
		Departments: handler.NewDepartmentHandler(
			service.NewDepartmentService(repository.NewDepartmentRepository(client, log), nil, nil, log),
			service.NewApplicationService(repository.NewApplicationRepository(client, log), log),
			log,
		),
		Requirements: handler.NewRequirementHandler(
			service.NewRequirementService(repository.NewRequirementRepository(client, local, log), nil, nil, log),
			log,
		),
		Audit: handler.NewAuditHandler(service.NewAuditService(nil), log),
	}
	return &testServer{srv: srv, router: NewRouter(h, auth, pinger, broker, log)}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) signIn(t *testing.T, empID string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/signin", "", map[string]string{"empid": empID, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func issueBody() map[string]string {
	return map[string]string{
		"applicationname": "Portal", "title": "Crash", "department": "Eng", "assigned_to": "E100",
		"priority": "High", "status": "Pending", "start_date": "2024-01-01", "due_date": "2024-01-02",
	}
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))

	w = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestServer(t, failingPinger{})
	w = down.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadinessFollowsBroker(t *testing.T) {
	up := newTestServerWithBroker(t, nil, brokerState(true))
	assert.Equal(t, http.StatusOK, up.do(t, http.MethodGet, "/readyz", "", nil).Code)

	lost := newTestServerWithBroker(t, nil, brokerState(false))
	w := lost.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "broker_not_ready", decode(t, w)["status"])
}

func TestTraceIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(trace.HeaderName, "abc123")
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)
	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName))
}

func TestSignIn_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/signin", "", map[string]string{"empid": "E100", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect password", decode(t, w)["error"])

	w = s.do(t, http.MethodPost, "/signin", "", map[string]string{"empid": "E999", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Employee ID not found", decode(t, w)["error"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/sprints", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/sprints", "garbage", nil).Code)
}

func TestEmployeeIsKeptOffManagerRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signIn(t, "E100")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/employees"},
		{http.MethodPost, "/employees"},
		{http.MethodDelete, "/employees/a"},
		{http.MethodPost, "/sprints"},
		{http.MethodPut, "/issues/x"},
		{http.MethodPost, "/departments"},
		{http.MethodGet, "/audit"},
	} {
		w := s.do(t, tc.method, tc.path, token, map[string]string{})
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}
	assert.Zero(t, s.srv.Count(http.MethodPost, repository.EmployeeCollection))
}

func TestEmployeeCanRaiseIssue(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signIn(t, "E100")

	w := s.do(t, http.MethodPost, "/issues", token, issueBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "E100", body["assigned_by"])
	assert.Equal(t, "Ravi", body["assignee_name"])

	w = s.do(t, http.MethodGet, "/issues", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	assert.Len(t, items, 1)
}

func TestValidationErrorListsMissingFields(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signIn(t, "M1")

	w := s.do(t, http.MethodPost, "/employees", token, map[string]string{"empid": "E5", "name": "Nia"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"department"}, decode(t, w)["missing"])
	assert.Zero(t, s.srv.Count(http.MethodPost, repository.EmployeeCollection))
}

func TestRemoteWriteFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signIn(t, "M1")
	s.srv.FailWith(repository.IssueCollection, http.StatusInternalServerError)

	w := s.do(t, http.MethodPost, "/issues", token, issueBody())
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDashboardAndSignOut(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signIn(t, "M1")

	w := s.do(t, http.MethodGet, "/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recent Sprints", decode(t, w)["recent_title"])

	w = s.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "M1", decode(t, w)["empid"])

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/signout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/me", token, nil).Code)
}

func TestRequirementCommentFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signIn(t, "E100")

	w := s.do(t, http.MethodPost, "/requirements", token, map[string]string{"title": "Export"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	key := decode(t, w)["key"].(string)

	w = s.do(t, http.MethodPost, "/requirements/"+key+"/comments", token, map[string]string{"text": "first"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/requirements/"+key, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	thread := decode(t, w)["thread"].([]any)
	require.Len(t, thread, 1)
	assert.Equal(t, "first", thread[0].(map[string]any)["text"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/requirements/missing", token, nil).Code)
}

func TestListSortToggleCycles(t *testing.T) {
	s := newTestServer(t, nil)
	for key, title := range map[string]string{"k1": "Beta", "k2": "alpha", "k3": "Gamma"} {
		s.srv.Seed(repository.SprintCollection, key, map[string]string{"title": title, "assigned_to": "E100", "start_date": "2024-01-0" + key[1:]})
	}
	token := s.signIn(t, "M1")

	list := func(query string) (titles []string, column, order any) {
		w := s.do(t, http.MethodGet, "/sprints"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		for _, item := range body["items"].([]any) {
			titles = append(titles, item.(map[string]any)["title"].(string))
		}
		return titles, body["sort"].(map[string]any)["column"], body["order"]
	}

	titles, column, order := list("?toggle=title")
	assert.Equal(t, []string{"alpha", "Beta", "Gamma"}, titles)
	assert.Equal(t, "title", column)
	assert.Equal(t, "asc", order)

	titles, _, order = list("?sort=title&order=asc&toggle=title")
	assert.Equal(t, []string{"Gamma", "Beta", "alpha"}, titles)
	assert.Equal(t, "desc", order)

	titles, column, order = list("?sort=title&order=desc&toggle=title")
	assert.Equal(t, []string{"Gamma", "alpha", "Beta"}, titles, "default order is newest start date first")
	assert.Nil(t, column)
	assert.Nil(t, order)

	_, column, order = list("?sort=title&order=desc&toggle=status")
	assert.Equal(t, "status", column)
	assert.Equal(t, "asc", order)
}

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sprint-tracker/internal/handler"
	"sprint-tracker/pkg/rbac"
)

// Pinger reports whether the document store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerStatus reports whether the event broker connection is alive.
type BrokerStatus interface {
	IsConnected() bool
}

type Handlers struct {
	Auth         *handler.AuthHandler
	Dashboard    *handler.DashboardHandler
	Sprints      *handler.SprintHandler
	Issues       *handler.IssueHandler
	Employees    *handler.EmployeeHandler
	Departments  *handler.DepartmentHandler
	Requirements *handler.RequirementHandler
	Audit        *handler.AuditHandler
}

type Router struct {
	Engine *gin.Engine
}

// NewRouter builds the API. broker is nil when change events are disabled.
func NewRouter(h Handlers, auth Authenticator, store Pinger, broker BrokerStatus, logger *zap.Logger) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_not_ready", "error": err.Error()})
			return
		}
		if broker != nil && !broker.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "broker_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/signin", h.Auth.SignIn)
	r.POST("/signup", h.Auth.SignUp)

	// Protected
	api := r.Group("/")
	api.Use(AuthMiddleware(auth), RequirePermission(rbac.PermissionReadRecords))
	{
		api.POST("/signout", h.Auth.SignOut)
		api.GET("/me", h.Auth.Me)
		api.GET("/dashboard", h.Dashboard.Get)

		api.GET("/sprints", h.Sprints.List)
		api.GET("/sprints/:key", h.Sprints.Get)
		api.POST("/sprints", RequirePermission(rbac.PermissionWriteSprint), h.Sprints.Create)
		api.PUT("/sprints/:key", RequirePermission(rbac.PermissionWriteSprint), h.Sprints.Update)

		api.GET("/issues", h.Issues.List)
		api.GET("/issues/employee-created", h.Issues.EmployeeCreated)
		api.GET("/issues/:key", h.Issues.Get)
		api.POST("/issues", RequirePermission(rbac.PermissionCreateIssue), h.Issues.Create)
		api.PUT("/issues/:key", RequirePermission(rbac.PermissionWriteIssue), h.Issues.Update)

		api.GET("/employees/by-department", h.Employees.ByDepartment)
		employees := api.Group("/employees", RequirePermission(rbac.PermissionManageEmployee))
		{
			employees.GET("", h.Employees.List)
			employees.GET("/:key", h.Employees.Get)
			employees.POST("", h.Employees.Create)
			employees.PUT("/:key", h.Employees.Update)
			employees.DELETE("/:key", h.Employees.Delete)
		}

		api.GET("/departments", h.Departments.List)
		api.POST("/departments", RequirePermission(rbac.PermissionWriteDepartment), h.Departments.Create)
		api.PUT("/departments/:key", RequirePermission(rbac.PermissionWriteDepartment), h.Departments.Update)
		api.GET("/applications", h.Departments.Applications)

		requirements := api.Group("/requirements")
		{
			requirements.GET("", h.Requirements.List)
			requirements.GET("/:key", h.Requirements.Get)
			write := requirements.Group("", RequirePermission(rbac.PermissionWriteRequirement))
			write.POST("", h.Requirements.Create)
			write.PUT("/:key", h.Requirements.Update)
			write.DELETE("/:key", h.Requirements.Delete)
			write.POST("/:key/comments", h.Requirements.AddComment)
		}

		api.GET("/audit", RequirePermission(rbac.PermissionReadAudit), h.Audit.Latest)
	}

	return &Router{Engine: r}
}

// Server wraps the engine in an http.Server with the configured timeouts.
func (r *Router) Server(port string, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout,
	}
}

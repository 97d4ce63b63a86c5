package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sprint-tracker/config"
	"sprint-tracker/internal/storetest"
	pkgconfig "sprint-tracker/pkg/config"
)

func TestNew_MinimalConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := storetest.New(t)
	cfg := &config.Config{
		Store:    pkgconfig.StoreConfig{BaseURL: srv.URL, Timeout: time.Second},
		Breaker:  pkgconfig.BreakerConfig{FailureThreshold: 5, SuccessThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxRequests: 1},
		Fallback: pkgconfig.FallbackConfig{Path: filepath.Join(t.TempDir(), "nested", "requirements.db")},
		JWT:      pkgconfig.JWTConfig{Secret: "s", TTL: time.Hour},
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	w := httptest.NewRecorder()
	a.Router.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-csp/internal/api/handler"
	"github.com/limaJavier/timetabling-csp/internal/api/middleware"
	"github.com/limaJavier/timetabling-csp/internal/config"
	"github.com/limaJavier/timetabling-csp/internal/service"
	"github.com/limaJavier/timetabling-csp/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(maxBodyBytes int64) *gin.Engine {
	cfg := &config.Config{
		Exact:  model.DefaultExactOptions(),
		Server: config.ServerConfig{Port: 8080, MaxBodyBytes: maxBodyBytes},
	}
	h := handler.NewSolverHandler(service.NewSolverService(cfg, zap.NewNop()), zap.NewNop())
	return Setup(cfg, h, zap.NewNop())
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	setup(1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["strategies"], len(config.Strategies))
}

func TestSolveRoute(t *testing.T) {
	body := `{"courses":[{"id":"A"}],"professors":[{"id":"P","availability":["s1"]}],"rooms":[{"id":"R","capacity":10}],"timeSlots":["s1","s2"]}`

	w := httptest.NewRecorder()
	setup(1<<20).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/solve/exact", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"score":50`)
}

func TestBodyTooLarge(t *testing.T) {
	body := `{"courses":[{"id":"A"}],"timeSlots":["s1"]}`

	w := httptest.NewRecorder()
	setup(8).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/solve/exact", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package http

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/transport/http/metrics"
)

func TestServerRunShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) { GinJSON(c, "pong") })

	s := NewServer("127.0.0.1:0", r, WithMeta(Meta{Name: "test"}))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"code":200,"msg":"success","data":"pong"}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}

func TestTimeoutDefaults(t *testing.T) {
	s := NewServer(":0", gin.New(), WithTimeoutOptions(TimeoutOption{Write: time.Second}))
	assert.Equal(t, 5*time.Second, s.server.ReadHeaderTimeout)
	assert.Equal(t, time.Second, s.server.WriteTimeout)
	assert.Equal(t, 60*time.Second, s.server.IdleTimeout)

	s = NewServer(":0", gin.New())
	assert.Equal(t, 15*time.Second, s.server.ReadTimeout)
}

func TestMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prom := metrics.New("test")
	prom.ObserveRequest("GET", "/x", 200, time.Millisecond)

	s := NewServer(":0", gin.New(),
		WithPrometheus(prom),
		WithMetricsOptions(MetricsOption{Enabled: true, EnabledBuildInfoCollector: true}),
	)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_requests_total"))
	assert.True(t, strings.Contains(w.Body.String(), "go_build_info"))
}

func TestHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewServer(":0", gin.New(), WithHealthOptions(HealthOption{Enabled: true}))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	s = NewServer(":0", gin.New(), WithHealthOptions(HealthOption{
		Enabled: true,
		Path:    "/healthz",
		Checks: map[string]CheckFunc{
			"codec": func(context.Context) (any, error) { return "ok", nil },
			"redis": func(context.Context) (any, error) { return nil, goerrors.New("down") },
		},
	}))
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["codec"])
	assert.Equal(t, map[string]any{"error": "down"}, body.Checks["redis"])
}

func TestDisabledRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(":0", gin.New())
	for _, p := range []string{"/metrics", "/health"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, p)
	}
}

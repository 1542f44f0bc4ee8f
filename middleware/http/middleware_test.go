package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	goerrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/core/crypto/hmac"
	"github.com/kochabx/hiding/core/rate"
	"github.com/kochabx/hiding/core/util"
	"github.com/kochabx/hiding/log"
	"github.com/kochabx/hiding/log/desensitize"
	"github.com/kochabx/hiding/transport/http/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPathMatcher(t *testing.T) {
	pm := NewPathMatcher([]string{"/health", "/admin/**", "/v1/*/parse"})

	tests := []struct {
		path string
		want bool
	}{
		{"/health", true},
		{"/healthz", false},
		{"/admin", true},
		{"/admin/timelong/parse", true},
		{"/administrator", false},
		{"/v1/number/parse", true},
		{"/v1/number/generate", false},
		{"/v1/a/b/parse", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pm.Match(tt.path), tt.path)
	}

	var nilMatcher *PathMatcher
	assert.False(t, nilMatcher.Match("/health"))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Recovery(RecoveryConfig{Logger: log.NewWriter(&buf)}))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "stack")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, util.RequestID(c.Request.Context()))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w = serve(r, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 65))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWriter(&buf, log.WithDesensitize(desensitize.Default()))

	r := gin.New()
	r.Use(RequestID(), Logger(LoggerConfig{RequestBody: true, SkipPaths: []string{"/health"}, Logger: logger}))
	r.POST("/v1/number/parse", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusUnprocessableEntity, string(body))
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/v1/number/parse?trace=1", strings.NewReader(`{"code":"123","key":"KKKKKKKK"}`))
	req.Header.Set(HeaderRequestID, "req-2")
	w := serve(r, req)
	assert.Equal(t, `{"code":"123","key":"KKKKKKKK"}`, w.Body.String(), "handler still sees the body")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 422, entry["status"])
	assert.Equal(t, "/v1/number/parse", entry["path"])
	assert.Equal(t, "trace=1", entry["query"])
	assert.Equal(t, "req-2", entry["request_id"])
	assert.Equal(t, map[string]any{"code": "123", "key": "KKKK****"}, entry["request_body"])

	buf.Reset()
	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, buf.Len())
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, goerrors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter:   rate.NewLocal(rate.Config{Limit: 2, Window: time.Minute}),
		SkipPaths: []string{"/health"},
		Logger:    log.NewWriter(io.Discard),
	}))
	r.GET("/parse", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, get("/parse", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get("/parse", "10.0.0.1").Code)
	w := get("/parse", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"code":429,"msg":"too many requests"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get("/parse", "10.0.0.2").Code)
	assert.Equal(t, http.StatusOK, get("/health", "10.0.0.1").Code)
}

func TestRateLimitLimiterFailure(t *testing.T) {
	for _, failClosed := range []bool{false, true} {
		r := gin.New()
		r.Use(RateLimit(RateLimitConfig{Limiter: failingLimiter{}, FailClosed: failClosed, Logger: log.NewWriter(io.Discard)}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		if failClosed {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		} else {
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}

	assert.Panics(t, func() { RateLimit(RateLimitConfig{}) })
}

func TestSignature(t *testing.T) {
	const secret = "admin-secret"
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	r := gin.New()
	r.Use(Signature(SignatureConfig{Secret: secret, Logger: log.NewWriter(io.Discard), now: clock}))
	r.POST("/admin/timelong/parse", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	body := `{"code":"ABCDEFGHJKMNPQRSTUVW"}`
	signed, err := hmac.Sign(secret, hmac.WithPayload([]byte(body)), hmac.WithClock(clock))
	require.NoError(t, err)

	request := func(body, sig string, ts int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/timelong/parse", strings.NewReader(body))
		if ts != 0 {
			req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
		}
		req.Header.Set(HeaderSignature, sig)
		return serve(r, req)
	}

	w := request(body, signed.Signature, signed.Timestamp)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())

	tests := []struct {
		name string
		body string
		sig  string
		ts   int64
	}{
		{"missing timestamp", body, signed.Signature, 0},
		{"tampered body", `{"code":"X"}`, signed.Signature, signed.Timestamp},
		{"wrong timestamp", body, signed.Signature, signed.Timestamp - 1},
		{"stale", body, signed.Signature, now.Add(-10 * time.Minute).Unix()},
		{"not hex", body, "zz", signed.Timestamp},
		{"empty signature", body, "", signed.Timestamp},
	}
	for _, tt := range tests {
		w := request(tt.body, tt.sig, tt.ts)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tt.name)
		assert.JSONEq(t, `{"code":401,"msg":"verify signature failed"}`, w.Body.String(), tt.name)
	}

	assert.Panics(t, func() { Signature(SignatureConfig{}) })
}

func TestSignatureBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(Signature(SignatureConfig{Secret: "s", MaxBody: 4, Logger: log.NewWriter(io.Discard)}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345"))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(time.Now().Unix(), 10))
	w := serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetrics(t *testing.T) {
	p := metrics.New("mwtest")
	r := gin.New()
	r.Use(Metrics(p, "/metrics"))
	r.POST("/v1/:kind/parse", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodPost, "/v1/number/parse", nil))
	serve(r, httptest.NewRequest(http.MethodPost, "/v1/timelong/parse", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	families, err := p.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() == "mwtest_http_requests_total" {
			for _, m := range f.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 3.0, total)

	series, err := testutil.GatherAndCount(p.Registry(), "mwtest_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
	"github.com/taskmaster/taskgrid/internal/infrastructure/config"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
	"github.com/taskmaster/taskgrid/internal/ports"
)

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(context.Context) error { return s.err }

type stubService struct {
	ports.TaskService
}

func (stubService) SaveTask(_ context.Context, id string, _ ports.SaveTaskRequest) (*ports.TaskRecord, error) {
	if id == "" {
		id = "new-id"
	}
	return &ports.TaskRecord{TaskID: id}, nil
}

func (stubService) ListTasks(context.Context, ports.TaskFilter) ([]*ports.TaskRecord, int64, error) {
	return nil, 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Version: "test"},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
		Metrics:  config.MetricsConfig{Enabled: true},
		JWT: config.JWTConfig{
			Secret:    "test-secret",
			Issuer:    "taskgrid",
			ExpiresIn: time.Hour,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, health HealthChecker, log *logger.Logger, collectors ...prometheus.Collector) http.Handler {
	t.Helper()
	engine := offset.NewEngine(offset.MustChain(config.DefaultChain...), time.UTC, offset.LocaleVietnamese, nil)
	s, err := newServer(cfg, stubService{}, engine, health, log, collectors...)
	require.NoError(t, err)
	return s.Handler()
}

func serve(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	h := newTestServer(t, testConfig(), stubHealth{}, nil)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/ready", "", "").Code)

	down := newTestServer(t, testConfig(), stubHealth{err: assert.AnError}, nil)
	rec := serve(down, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database_not_ready")
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, http.MethodGet, "/health/detailed", "", "").Code)
}

func TestAPIOpenWhenJWTDisabled(t *testing.T) {
	h := newTestServer(t, testConfig(), stubHealth{}, nil)

	rec := serve(h, http.MethodPost, "/api/task", `{"title":"Plan"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","task_id":"new-id"}`, rec.Body.String())
}

func TestAPIRequiresTokenWhenJWTEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Enabled = true
	core, logs := observer.New(zap.InfoLevel)
	h := newTestServer(t, cfg, stubHealth{}, logger.NewFromZap(zap.New(core)))

	rec := serve(h, http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodGet, "/api/tasks", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("Security event").Len())

	other := cfg.JWT
	other.Secret = "someone-else"
	forged, err := IssueToken(other, "mallory", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/tasks", "", forged).Code)

	expired, err := IssueToken(cfg.JWT, "alice", "", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/api/tasks", "", expired).Code)

	token, err := IssueToken(cfg.JWT, "alice", "editor", time.Now())
	require.NoError(t, err)
	rec = serve(h, http.MethodGet, "/api/tasks", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tasks":[]`)

	// health stays public
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "", "").Code)
}

func TestJWTEnabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Enabled = true
	cfg.JWT.Secret = ""
	engine := offset.NewEngine(offset.MustChain("a", "b"), time.UTC, "", nil)

	_, err := newServer(cfg, stubService{}, engine, stubHealth{}, nil)
	require.Error(t, err)
}

func TestParseToken_RoundTrip(t *testing.T) {
	cfg := testConfig().JWT
	token, err := IssueToken(cfg, "bob", "viewer", time.Now())
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, &ports.Claims{Subject: "bob", Role: "viewer"}, claims)

	cfg.Issuer = "someone-else"
	_, err = ParseToken(cfg, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMetricsEndpoint(t *testing.T) {
	saves := prometheus.NewCounter(prometheus.CounterOpts{Name: "taskgrid_test_saves_total", Help: "test"})
	saves.Add(3)
	h := newTestServer(t, testConfig(), stubHealth{}, nil, saves)

	serve(h, http.MethodGet, "/api/offset/chain", "", "")
	rec := serve(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "taskgrid_test_saves_total 3")
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/offset/chain",status="200"} 1`)
}

func TestErrorHandlerRendersJSON(t *testing.T) {
	h := newTestServer(t, testConfig(), stubHealth{}, nil)

	rec := serve(h, http.MethodGet, "/api/offset/apply?base=nope&token=%2B1h", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message"`)

	rec = serve(h, http.MethodGet, "/does-not-exist", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwaggerHiddenInProduction(t *testing.T) {
	dev := newTestServer(t, testConfig(), stubHealth{}, nil)
	assert.NotEqual(t, http.StatusNotFound, serve(dev, http.MethodGet, "/swagger/index.html", "", "").Code)

	cfg := testConfig()
	cfg.App.Environment = "production"
	prod := newTestServer(t, cfg, stubHealth{}, nil)
	assert.Equal(t, http.StatusNotFound, serve(prod, http.MethodGet, "/swagger/index.html", "", "").Code)
}

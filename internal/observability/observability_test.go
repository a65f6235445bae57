package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/medconsult/consultation-service/internal/config"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "verbose"}, config.AppConfig{Name: "svc"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestLoggerTagsEntriesWithService(t *testing.T) {
	var buf bytes.Buffer
	app := config.AppConfig{Name: "consultation-service", Version: "1.2.3", Env: "staging"}
	logger := newLogger(config.LoggerConfig{Level: "debug", Format: "json"}, app, zapcore.AddSync(&buf))

	logger.Debug("booked", zap.Duration("took", 1500*time.Millisecond))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "booked", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "consultation-service", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "staging", entry["env"])
	assert.EqualValues(t, 1500, entry["took"])
	assert.Contains(t, entry, "caller")
}

func TestLoggerSampling(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LoggerConfig{Level: "info", Format: "json", SampleInitial: 2, SampleThereafter: 1000}
	logger := newLogger(cfg, config.AppConfig{}, zapcore.AddSync(&buf))

	for i := 0; i < 10; i++ {
		logger.Info("same message")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "same message"))
}

func TestConsoleLoggerIsNotJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggerConfig{Format: "console"}, config.AppConfig{Name: "svc"}, zapcore.AddSync(&buf))
	logger.Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/patient/profile", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/patient/profile", "GET", "NOT_FOUND")
	m.RecordNotification("doctor_approved", NotificationSent)
	m.RecordNotification("doctor_approved", NotificationSent)
	m.RecordRateLimited("/api/auth/login")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/patient/profile", "GET", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.notifications.WithLabelValues("doctor_approved", NotificationSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("/api/auth/login")))

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
}

func TestRequestLoggerAndMetricsEndpoint(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	entries := logs.FilterMessage("request completed").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "/items/:id", entries[0].ContextMap()["route"])

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `http_requests_total{method="GET",route="/items/:id",status="204"} 1`))
}

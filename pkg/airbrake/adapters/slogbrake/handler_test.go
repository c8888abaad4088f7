package slogbrake

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsignal/airbrake-go/pkg/airbrake"
)

func newTestNotifier(t *testing.T) (*airbrake.Notifier, func() []map[string]any) {
	t.Helper()

	var mu sync.Mutex
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode notice body: %v", err)
		}
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"s-1"}`))
	}))
	t.Cleanup(srv.Close)

	n, err := airbrake.NewNotifier(airbrake.Config{
		ProjectID:  12345,
		ProjectKey: "test-key",
		Host:       srv.URL,
	})
	require.NoError(t, err)

	getBodies := func() []map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return append([]map[string]any(nil), bodies...)
	}
	return n, getBodies
}

func TestHandlerEnabled(t *testing.T) {
	n, _ := newTestNotifier(t)

	h := NewHandler(n, nil)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo), "info is below the default threshold")
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn), "warn is below the default threshold")
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	lowered := NewHandler(n, &Options{Level: slog.LevelWarn})
	assert.True(t, lowered.Enabled(context.Background(), slog.LevelWarn))
}

func TestHandlerDeliversNotice(t *testing.T) {
	n, getBodies := newTestNotifier(t)
	logger := slog.New(NewHandler(n, nil))

	logger.Error("charge declined", "order", "ord-42", "attempt", 3)

	bodies := getBodies()
	require.Len(t, bodies, 1)

	errs, ok := bodies[0]["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	first, ok := errs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", first["type"], "the notice type mirrors the severity")
	assert.Equal(t, "charge declined", first["message"])

	backtrace, ok := first["backtrace"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, backtrace, "the log call site should head the backtrace")
	top, ok := backtrace[0].(map[string]any)
	require.True(t, ok)
	file, _ := top["file"].(string)
	assert.True(t, strings.HasSuffix(file, "handler_test.go"), "top frame file = %q", file)
	line, _ := top["line"].(float64)
	assert.Greater(t, line, float64(0))

	ctx, ok := bodies[0]["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "error", ctx["severity"])

	params, ok := bodies[0]["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ord-42", params["order"])
	assert.Equal(t, float64(3), params["attempt"])
}

func TestHandlerSkipsRecordsBelowLevel(t *testing.T) {
	n, getBodies := newTestNotifier(t)
	logger := slog.New(NewHandler(n, nil))

	logger.Info("cache warmed")
	logger.Warn("index rebuild slow")

	assert.Empty(t, getBodies(), "records below the threshold must not deliver")
}

func TestHandlerWithAttrsAndGroups(t *testing.T) {
	n, getBodies := newTestNotifier(t)
	logger := slog.New(NewHandler(n, nil)).
		With("service", "payments").
		WithGroup("req").
		With("id", "r-7")

	logger.Error("boom", "elapsed", 1500*time.Millisecond)

	bodies := getBodies()
	require.Len(t, bodies, 1)

	params, ok := bodies[0]["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "payments", params["service"], "attrs added before the group keep their key")
	assert.Equal(t, "r-7", params["req.id"], "grouped attrs get a dotted prefix")
	assert.Equal(t, "1.5s", params["req.elapsed"], "durations are reported human-readable")
}

func TestHandlerStringifiesErrorAttrs(t *testing.T) {
	n, getBodies := newTestNotifier(t)
	logger := slog.New(NewHandler(n, nil))

	logger.Error("save failed", "err", errors.New("unique constraint violated"))

	bodies := getBodies()
	require.Len(t, bodies, 1)

	params, ok := bodies[0]["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "unique constraint violated", params["err"])
}

func TestHandlerInlineGroupAttr(t *testing.T) {
	n, getBodies := newTestNotifier(t)
	logger := slog.New(NewHandler(n, nil))

	logger.Error("boom", slog.Group("db", "driver", "postgres", "pool", 8))

	bodies := getBodies()
	require.Len(t, bodies, 1)

	params, ok := bodies[0]["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "postgres", params["db.driver"])
	assert.Equal(t, float64(8), params["db.pool"])
}

func TestHandlerSuppressedOutcomesAreNotErrors(t *testing.T) {
	n, _ := newTestNotifier(t)

	disabled, err := airbrake.NewNotifier(airbrake.Config{
		ProjectID:  12345,
		ProjectKey: "test-key",
		Disabled:   true,
	})
	require.NoError(t, err)

	h := NewHandler(disabled, nil)
	rec := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	assert.NoError(t, h.Handle(context.Background(), rec), "a disabled notifier is a clean skip")

	vetoing := NewHandler(n, nil)
	n.AddFilter(func(notice *airbrake.Notice) *airbrake.Notice { return nil })
	rec = slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	assert.NoError(t, vetoing.Handle(context.Background(), rec), "a filter veto is a clean skip")
}

func TestSeverityForLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  airbrake.Severity
	}{
		{slog.LevelError + 8, airbrake.SeverityCritical},
		{slog.LevelError + 4, airbrake.SeverityCritical},
		{slog.LevelError + 1, airbrake.SeverityError},
		{slog.LevelError, airbrake.SeverityError},
		{slog.LevelWarn + 1, airbrake.SeverityWarning},
		{slog.LevelWarn, airbrake.SeverityWarning},
		{slog.LevelInfo, airbrake.SeverityInfo},
		{slog.LevelDebug, airbrake.SeverityDebug},
		{slog.LevelDebug - 4, airbrake.SeverityDebug},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, severityForLevel(tt.level), "level %v", tt.level)
	}
}

package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/testing/guard"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 2, cfg.DBTxMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.OrderCacheTTL)
	assert.Equal(t, LedgerPostDirect, cfg.LedgerPostMode)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("LEDGER_POST_MODE", "kafka")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("LEDGER_POST_MODE", LedgerPostQueue)
	t.Setenv("DB_TX_MAX_ATTEMPTS", "0")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("DB_TX_MAX_ATTEMPTS", "3")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, LedgerPostQueue, cfg.LedgerPostMode)
	assert.Equal(t, 3, cfg.DBTxMaxAttempts)

	t.Setenv("DB_MIN_CONNS", "20")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "DB_MIN_CONNS")
}

func TestConfigConnectionOptions(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DB_MAX_CONNS", "25")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	pool := cfg.PoolOptions("backoffice-worker")
	assert.Equal(t, "backoffice-worker", pool.AppName)
	assert.Equal(t, int32(25), pool.MaxConns)
	assert.Equal(t, int32(1), pool.MinConns)
	assert.Equal(t, 10*time.Second, pool.StatementTimeout)

	redisOpts := cfg.RedisOptions()
	assert.Equal(t, "redis.internal:6380", redisOpts.Addr)
	assert.Equal(t, 3, redisOpts.DB)
	assert.Equal(t, 500*time.Millisecond, redisOpts.Timeout)

	queue := cfg.QueueRedis()
	assert.Equal(t, redisOpts.Addr, queue.Addr)
	assert.Equal(t, 3, queue.DB)
	assert.Equal(t, 500*time.Millisecond, queue.ReadTimeout)
}

func TestActorMiddleware(t *testing.T) {
	var got int64
	var ok bool
	h := ActorMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = shared.ActorFromContext(r.Context())
	}))

	cases := map[string]struct {
		header string
		want   int64
		ok     bool
	}{
		"valid":     {header: "42", want: 42, ok: true},
		"missing":   {header: ""},
		"malformed": {header: "abc"},
		"negative":  {header: "-1"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(ActorHeader, tc.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestRouterHealthz(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, nil)
	cfg := &Config{AppRequestTimeout: time.Second, RateLimitPerMinute: 0}

	router := NewRouter(RouterParams{Logger: logger, Config: cfg, Database: stubPinger{}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Frame-Options"))

	router = NewRouter(RouterParams{Logger: logger, Config: cfg, Database: stubPinger{err: errors.New("down")}})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"}).Info("hello")
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"env":"production"`)

	buf.Reset()
	newLogger(&buf, &Config{LogFormat: "json", AppEnv: "production"}).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestInTestMode(t *testing.T) {
	require.Equal(t, guard.TestModeEnv, testModeEnv)
	assert.True(t, InTestMode())

	t.Cleanup(RefreshTestMode)
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

func TestParseTestMode(t *testing.T) {
	for raw, want := range map[string]bool{
		"1":      true,
		"true":   true,
		" TRUE ": true,
		"0":      false,
		"false":  false,
		"":       false,
		"yes":    false,
	} {
		assert.Equal(t, want, parseTestMode(raw), "%q", raw)
	}
}

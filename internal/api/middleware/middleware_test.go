package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hugh/teamhub/internal/terms"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return util.NewDiscardLogger()
}

func okStatus() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	defer limiter.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	other, err := limiter.Allow(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are counted separately")
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	limiter := NewMemoryLimiter(1, 50*time.Millisecond)
	defer limiter.Stop()
	ctx := context.Background()

	d, _ := limiter.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	d, _ = limiter.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	time.Sleep(80 * time.Millisecond)
	d, _ = limiter.Allow(ctx, "k")
	assert.True(t, d.Allowed)
}

func newRedisLimiter(t *testing.T, requests int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "api", requests, window), mr
}

func TestRedisLimiter(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 2, time.Minute)
	fixed := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC).Unix(), d.Reset.Unix())

	d, err = limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "ratelimit:api:ip:1.2.3.4:"))
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))

	// Next window starts fresh.
	limiter.now = func() time.Time { return fixed.Add(time.Minute) }
	d, err = limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	defer limiter.Stop()
	handler := RateLimit(limiter, KeyByIP, discardLogger())(okStatus())

	req := httptest.NewRequest("GET", "/api/v1/teams", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	t.Run("fails open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RateLimit(brokenLimiter{}, KeyByIP, discardLogger())(okStatus()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestKeys(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ip:10.0.0.1", KeyByIP(req))
	assert.Equal(t, "ip:10.0.0.1", KeyByUser(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	user := newUser(true)
	req = req.WithContext(WithUser(req.Context(), user))
	assert.Equal(t, "user:"+user.PublicID.String(), KeyByUser(req))
}

func TestCSRF(t *testing.T) {
	store := NewCSRFStore()
	defer store.Stop()
	handler := CSRF(store)(okStatus())
	session := &http.Cookie{Name: TokenCookieName, Value: "header.payload.signature-long-enough-for-a-session-id"}

	t.Run("safe method issues cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/teams", nil)
		req.AddCookie(session)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, csrfCookieName, cookies[0].Name)
	})

	t.Run("cookie mutation without token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/teams", nil)
		req.AddCookie(session)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cookie mutation with token", func(t *testing.T) {
		token, err := store.GetOrCreate(getSessionID(func() *http.Request {
			r := httptest.NewRequest("GET", "/", nil)
			r.AddCookie(session)
			return r
		}()))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/teams", nil)
		req.AddCookie(session)
		req.Header.Set(csrfHeaderName, token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req.Header.Set(csrfHeaderName, "wrong")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bearer requests skip the check", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/teams", nil)
		req.AddCookie(session)
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no session skips the check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type stubTerms struct {
	accepted bool
	err      error
}

func (s stubTerms) Current() terms.Terms {
	return terms.Terms{Version: "2026-01", Label: "Terms of Service"}
}

func (s stubTerms) HasAcceptedCurrent(context.Context, terms.HasAgreements) (bool, error) {
	return s.accepted, s.err
}

func TestEnsureTermsAccepted(t *testing.T) {
	user := newUser(true)
	authed := func() *http.Request {
		req := httptest.NewRequest("GET", "/api/v1/teams", nil)
		return req.WithContext(WithUser(req.Context(), user))
	}

	t.Run("accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		EnsureTermsAccepted(stubTerms{accepted: true}, discardLogger())(okStatus()).ServeHTTP(rec, authed())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		EnsureTermsAccepted(stubTerms{}, discardLogger())(okStatus()).ServeHTTP(rec, authed())
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), `"must_accept_terms":true`)
		assert.Contains(t, rec.Body.String(), `"version":"2026-01"`)
	})

	t.Run("lookup failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		EnsureTermsAccepted(stubTerms{err: errors.New("db down")}, discardLogger())(okStatus()).ServeHTTP(rec, authed())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		EnsureTermsAccepted(stubTerms{}, discardLogger())(okStatus()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogging_PassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

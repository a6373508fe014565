package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

func normalizeLimits(requests int, window time.Duration) (int, time.Duration) {
	if requests <= 0 {
		requests = 100 // Default
	}
	if window <= 0 {
		window = time.Minute
	}
	return requests, window
}

// MemoryLimiter provides rate limiting functionality using a sliding window
// algorithm. It is used when redis is unavailable and in tests.
type MemoryLimiter struct {
	requests int           // Maximum requests per window
	window   time.Duration // Window duration
	clients  map[string]*clientWindow
	mu       sync.RWMutex
	stop     chan struct{}
	once     sync.Once
}

type clientWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	requests, window = normalizeLimits(requests, window)

	rl := &MemoryLimiter{
		requests: requests,
		window:   window,
		clients:  make(map[string]*clientWindow),
		stop:     make(chan struct{}),
	}

	go rl.cleanup(time.Minute)

	return rl
}

// Stop ends the background cleanup.
func (rl *MemoryLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// cleanup removes idle clients periodically
func (rl *MemoryLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		now := time.Now()
		for key, client := range rl.clients {
			client.mu.Lock()
			if len(client.timestamps) == 0 || now.Sub(client.timestamps[len(client.timestamps)-1]) > rl.window*2 {
				delete(rl.clients, key)
			}
			client.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	rl.mu.RLock()
	client, exists := rl.clients[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Double-check after acquiring write lock
		if client, exists = rl.clients[key]; !exists {
			client = &clientWindow{
				timestamps: make([]time.Time, 0, rl.requests),
			}
			rl.clients[key] = client
		}
		rl.mu.Unlock()
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	// Drop timestamps outside the window
	valid := 0
	for valid < len(client.timestamps) && !client.timestamps[valid].After(windowStart) {
		valid++
	}
	client.timestamps = client.timestamps[valid:]

	if len(client.timestamps) >= rl.requests {
		return Decision{
			Allowed:   false,
			Limit:     rl.requests,
			Remaining: 0,
			Reset:     client.timestamps[0].Add(rl.window),
		}, nil
	}

	client.timestamps = append(client.timestamps, now)
	return Decision{
		Allowed:   true,
		Limit:     rl.requests,
		Remaining: rl.requests - len(client.timestamps),
		Reset:     now.Add(rl.window),
	}, nil
}

// RedisLimiter is a fixed window counter shared by every server instance.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	requests int
	window   time.Duration
	now      func() time.Time
}

func NewRedisLimiter(client *redis.Client, prefix string, requests int, window time.Duration) *RedisLimiter {
	requests, window = normalizeLimits(requests, window)
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		requests: requests,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := rl.now()
	windowSecs := int64(rl.window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}
	slot := now.Unix() / windowSecs
	windowKey := fmt.Sprintf("ratelimit:%s:%s:%d", rl.prefix, key, slot)

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	remaining := rl.requests - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= rl.requests,
		Limit:     rl.requests,
		Remaining: remaining,
		Reset:     time.Unix((slot+1)*windowSecs, 0),
	}, nil
}

// RateLimit returns a middleware that applies rate limiting. A failing
// limiter lets the request through.
func RateLimit(limiter Limiter, keyFn KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(d.Reset).Seconds())+1, 10))
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// KeyByIP buckets requests by client address.
func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// KeyByUser buckets authenticated requests by user and falls back to the
// client address.
func KeyByUser(r *http.Request) string {
	if user := CurrentUser(r.Context()); user != nil {
		return "user:" + user.PublicID.String()
	}
	return KeyByIP(r)
}

// ClientIP extracts the client IP from the request
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (set by proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	// Check X-Real-IP header (set by some proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}

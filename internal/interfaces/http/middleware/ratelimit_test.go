package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/workforce/backend/internal/interfaces/http/dto"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int, period time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, period)
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3, time.Minute)

	for want := 2; want >= 0; want-- {
		ok, remaining := rl.Allow("a")
		assert.True(t, ok)
		assert.Equal(t, want, remaining)
	}
	ok, remaining := rl.Allow("a")
	assert.False(t, ok)
	assert.Zero(t, remaining)

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are limited independently")

	clock.Advance(time.Minute)
	ok, remaining = rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 2, remaining)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)
	rl.Allow("old")
	clock.Advance(30 * time.Second)
	rl.Allow("fresh")
	clock.Advance(30 * time.Second)

	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.windows, "old")
	assert.Contains(t, rl.windows, "fresh")
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl, _ := newTestLimiter(t, 100, time.Minute)
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 150 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.Allow("shared"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(100), allowed.Load())
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 30*time.Second)
	tenantA, tenantB := uuid.New(), uuid.New()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if tenant := c.GetHeader(TenantIDHeader); tenant != "" {
			c.Set(identityKey, Identity{TenantID: uuid.MustParse(tenant), UserID: "u"})
		}
		c.Next()
	})
	r.Use(RateLimit(rl))
	r.GET("/", okHandler)

	w := perform(r, http.MethodGet, "/", nil, map[string]string{TenantIDHeader: tenantA.String()})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, http.MethodGet, "/", nil, map[string]string{TenantIDHeader: tenantA.String()})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decodeError(t, w).Code)

	w = perform(r, http.MethodGet, "/", nil, map[string]string{TenantIDHeader: tenantB.String()})
	assert.Equal(t, http.StatusOK, w.Code, "same IP, different tenant")

	w = perform(r, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, "anonymous callers are keyed by IP alone")
}

package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiResume/internal/api/middleware"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (m *memoryCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *memoryCounter) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func limitedRouter(t *testing.T, trustedProxies []string) *gin.Engine {
	t.Helper()
	router, err := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), trustedProxies)
	require.NoError(t, err)
	router.POST("/limited", middleware.HourlyRateLimit(&memoryCounter{}, "generation", 1, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postWithForwardedFor(router *gin.Engine, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestNewRouter_ForwardedForCannotDodgeRateLimit(t *testing.T) {
	router := limitedRouter(t, nil)

	codes := make([]int, 0, 5)
	for i := range 5 {
		codes = append(codes, postWithForwardedFor(router, fmt.Sprintf("198.51.100.%d", i+1)))
	}
	assert.Equal(t, []int{200, 429, 429, 429, 429}, codes)
}

func TestNewRouter_TrustedProxyForwardsClientIP(t *testing.T) {
	router := limitedRouter(t, []string{"203.0.113.0/24"})

	assert.Equal(t, http.StatusOK, postWithForwardedFor(router, "198.51.100.1"))
	assert.Equal(t, http.StatusOK, postWithForwardedFor(router, "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, postWithForwardedFor(router, "198.51.100.1"))
}

func TestNewRouter_RejectsInvalidProxy(t *testing.T) {
	_, err := NewRouter(slog.Default(), []string{"not-an-ip"})
	assert.Error(t, err)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(limiter *IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

// --- 测试限流 ---

func TestIPRateLimiter_AllowsWithinBurst(t *testing.T) {
	limiter := NewIPRateLimiter(1, 5, time.Minute)
	defer limiter.StopCleanup()
	router := setupRateLimitedRouter(limiter)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestIPRateLimiter_RejectsOverBurst(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2, time.Minute)
	defer limiter.StopCleanup()
	router := setupRateLimitedRouter(limiter)

	var lastCode int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		lastCode = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestIPRateLimiter_ConcurrentRequestsWithCleanup(t *testing.T) {
	limiter := NewIPRateLimiter(1000, 1000, time.Nanosecond)
	defer limiter.StopCleanup()
	router := setupRateLimitedRouter(limiter)

	// 请求路径写 lastSeen，清理遍历同时读取
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/ping", nil)
				router.ServeHTTP(w, req)
			}
		}()
	}
	go func() {
		for i := 0; i < 20; i++ {
			limiter.limiterMap.Range(func(key, value interface{}) bool {
				client := value.(*clientLimiter)
				_ = time.Unix(0, client.lastSeen.Load())
				return true
			})
		}
	}()
	wg.Wait()
}

func TestGetClientIP_ForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "203.0.113.7", getClientIP(c))
}

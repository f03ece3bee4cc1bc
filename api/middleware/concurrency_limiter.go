package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/anoixa/pixelwise/api/common"
)

// ConcurrencyLimiter 限制同时在途的请求数
// 用于生成接口，避免无上限的模型调用堆积
type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 创建并发限制器
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 返回 Gin 中间件，超出并发上限的请求直接拒绝
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			common.RespondError(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			c.Abort()
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}

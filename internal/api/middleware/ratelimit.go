package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeclash/codeclash-backend/pkg/ratelimit"
)

// RateLimit IP 기반 Rate Limit 미들웨어
func RateLimit(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ip:%s", c.ClientIP())

		if !limiter.Allow(key) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ConnectRateLimit WebSocket 업그레이드 경로용 (IP당 버스트 10, 초당 1회 리필)
func ConnectRateLimit() gin.HandlerFunc {
	return RateLimit(ratelimit.NewRateLimiter(10, 1))
}

// DirectoryRateLimit 로비 조회 엔드포인트용 (IP당 초당 5회 버스트 30)
func DirectoryRateLimit() gin.HandlerFunc {
	return RateLimit(ratelimit.NewRateLimiter(30, 5))
}

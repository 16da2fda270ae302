package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
)

// SlowRequestLogging 은 threshold 보다 오래 걸린 요청만 경고로 남긴다.
// 콘텐츠 소스가 느려질 때 캐시 미스 구간을 찾는 용도다.
func SlowRequestLogging(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		if threshold <= 0 || elapsed < threshold {
			return
		}
		logger.WarnWithFields("slow request", logger.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": elapsed.Milliseconds(),
		})
	}
}

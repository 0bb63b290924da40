package handler

import (
	"context"
	"net/http"
	"time"

	"colchones/internal/infra"
	"colchones/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the Cashea circuit breaker.
// An open breaker degrades the poll job only, so it never fails the check.
func Health(db *gorm.DB, rdb redis.UniversalClient, casheaCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var fallidos int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			fallidos, _ = worker.DLQLength(ctx, rdb, worker.QueueEmail)
		}

		cashea := "disabled"
		if casheaCB != nil {
			cashea = casheaCB.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":               status == http.StatusOK,
			"db":               dbStatus,
			"redis":            redisStatus,
			"cashea":           cashea,
			"correos_fallidos": fallidos,
		})
	}
}

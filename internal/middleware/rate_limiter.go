package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"colchones/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window rate limiter ─────────────────────────────────────────────────
// Counters live in Redis so every API replica shares the same budget per IP.
// Keys look like ratelimit:<scope>:<ip>:<window-start-unix>.

// RateLimiter allows limit requests per window per client IP under scope.
// When Redis is unreachable requests are let through and the failure logged.
func RateLimiter(rdb redis.UniversalClient, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		inicio := now.Truncate(window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.ClientIP(), inicio.Unix())

		ctx := c.Request.Context()
		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("scope", scope).Msg("rate limiter: redis no disponible, se permite la solicitud")
			c.Next()
			return
		}

		restantes := limit - int(incr.Val())
		if restantes < 0 {
			restantes = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(restantes))

		if incr.Val() > int64(limit) {
			espera := inicio.Add(window).Sub(now)
			c.Header("Retry-After", strconv.Itoa(int(espera.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(rdb redis.UniversalClient) gin.HandlerFunc {
	return RateLimiter(rdb, "login", 20, time.Minute)
}

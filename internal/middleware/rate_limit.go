package middleware

import (
	"fmt"
	"net/http"

	"distress-server/internal/utils"
	"distress-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "distress:ratelimit"

// NewLimiterStore keeps counters in Redis when a client is given so limits hold across instances,
// and in process memory otherwise.
func NewLimiterStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// RateLimit limits requests per client IP at the given rate, formatted like "20-M". Responses carry the
// X-RateLimit-* headers; rejected requests get 429 in the usual envelope.
func RateLimit(store limiter.Store, rate string, log *logger.Logger) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	return mgin.NewMiddleware(
		limiter.New(store, parsed),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.WithContext(c.Request.Context()).LogSecurityEvent("rate_limited", "low", logger.Fields{
				"path":      c.FullPath(),
				"client_ip": c.ClientIP(),
			})
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			log.WithContext(c.Request.Context()).WithError(err).Error("Rate limiter store failed")
			c.Next()
		}),
	), nil
}

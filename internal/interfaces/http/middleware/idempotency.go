package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey is the optional client-supplied key of a mutation.
const HeaderIdempotencyKey = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the Idempotency-Key header.
const MaxIdempotencyKeyLength = 200

// Idempotency rejects a mutation whose Idempotency-Key was already used
// within ttl with 409 ERR_DUPLICATE_REQUEST. Keys are scoped to the actor
// and route. A request that ends in a client or server error releases its
// key so the client may retry; a 207 partial application keeps it, since
// the claim itself was recorded.
//
// Requests without the header pass through. A nil store disables the check.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	if store == nil {
		return passThrough
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest,
				"Idempotency-Key is too long")
			return
		}

		ctx := c.Request.Context()
		scoped := GetActor(c) + ":" + c.Request.Method + ":" + routePattern(c) + ":" + key

		ok, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			logger.L(ctx).Error("Idempotency store unavailable", zap.Error(err))
			abortWithError(c, http.StatusServiceUnavailable, dto.ErrCodeStoreUnavailable,
				"Idempotency store unavailable")
			return
		}
		if !ok {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

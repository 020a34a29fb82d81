package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
)

// ActorKey is the gin context key of the acting user.
const ActorKey = "actor_id"

// MaxActorIDLength bounds the X-User-ID header.
const MaxActorIDLength = 128

// Actor reads X-User-ID into the gin context and the request context logger.
// Authentication happens upstream; the header is trusted as given.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if actor != "" && len(actor) <= MaxActorIDLength {
			c.Set(ActorKey, actor)
			c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), actor))
		}
		c.Next()
	}
}

// RequireActor rejects requests that carry no acting user. Mutations record
// who performed them, so they are mounted behind it.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActor(c) == "" {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeMissingActor,
				"X-User-ID header is required")
			return
		}
		c.Next()
	}
}

// GetActor returns the acting user set by Actor.
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

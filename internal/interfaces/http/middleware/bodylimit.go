package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/interfaces/http/dto"
)

// DefaultMaxBodyBytes fits a 500 id reimbursement batch with room to spare.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimit rejects bodies declared larger than maxBytes and caps the rest
// while they are read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

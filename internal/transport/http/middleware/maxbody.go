package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "library-api/internal/transport/http/response"
)

// MaxBodyBytes caps request bodies at n bytes; binding then fails with
// *http.MaxBytesError, which the action layer answers with 413.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
)

// ErrorBody is the only error shape the API emits. Detail is filled outside
// production mode.
type ErrorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func Error(msg string) ErrorBody { return ErrorBody{Message: msg} }

// Abort stops the chain with a client-facing error.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(msg))
}

// Fail maps err to its status code and writes the error envelope. Internal
// errors never expose their message in production.
func Fail(c *gin.Context, err error, debug bool) {
	_ = c.Error(err)
	status := StatusOf(err)
	body := ErrorBody{Message: err.Error()}
	if status == http.StatusInternalServerError {
		body.Message = "Server error"
	}
	if debug {
		var de *domain.Error
		if errors.As(err, &de) && de.Err != nil {
			body.Detail = de.Err.Error()
		} else if status == http.StatusInternalServerError {
			body.Detail = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// Package ez registers typed JSON actions on a gin router group: bind the
// input, run the handler, map the error.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	resp "library-api/internal/transport/http/response"
	"library-api/internal/transport/http/validate"
)

type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // ?a=b
	BindNone  Binder = "none"  // handler reads c.Param itself
)

type EZ struct {
	g     *gin.RouterGroup
	debug bool
}

// New wraps g. With debug set, internal error causes are echoed in the
// "detail" field of error responses.
func New(g *gin.RouterGroup, debug bool) EZ {
	validate.Setup()
	return EZ{g: g, debug: debug}
}

// Action describes one endpoint: I is the bound input, O the response body.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int               // success status, 200 when zero
	Use     []gin.HandlerFunc // run before binding, e.g. auth and role guards
	Handler func(c *gin.Context, in *I) (O, error)
}

func Register[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(bindErr, &tooLarge) {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		if bindErr != nil {
			resp.Fail(c, domain.Validation(validate.Message(bindErr)), e.debug)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err, e.debug)
			return
		}
		c.JSON(status, out)
	}

	chain := append(append([]gin.HandlerFunc{}, a.Use...), h)
	e.g.Handle(strings.ToUpper(a.Method), a.Path, chain...)
}

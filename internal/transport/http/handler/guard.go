// Package handler mounts the library's REST resources on /api/v1.
package handler

import (
	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	"library-api/internal/transport/http/middleware"
)

// Guard builds the middleware chains for protected routes.
type Guard struct {
	authn gin.HandlerFunc
}

func NewGuard(a middleware.Authenticator) Guard {
	return Guard{authn: middleware.Authenticate(a)}
}

// Any admits every authenticated user.
func (g Guard) Any() []gin.HandlerFunc { return []gin.HandlerFunc{g.authn} }

func (g Guard) Role(r domain.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{g.authn, middleware.RequireRole(r)}
}

type messageOut struct {
	Message string `json:"message"`
}

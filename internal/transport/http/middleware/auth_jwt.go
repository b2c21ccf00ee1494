package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	resp "library-api/internal/transport/http/response"
)

const (
	KeyUser   = "user"
	KeyUserID = "userId"
)

type Authenticator interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Authenticate resolves the bearer token to a live user and stores it on the
// context. All verification failures answer with the same message.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		u, err := a.Resolve(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			if domain.KindOf(err) == domain.KindUnauthorized {
				resp.Abort(c, http.StatusUnauthorized, "Token is not valid")
				return
			}
			_ = c.Error(err)
			resp.Abort(c, http.StatusInternalServerError, "Server error")
			return
		}
		c.Set(KeyUser, u)
		c.Set(KeyUserID, u.ID)
		c.Next()
	}
}

var roleDenied = map[domain.Role]string{
	domain.RoleLibrarian: "Access denied: Librarian access required",
	domain.RoleStudent:   "Access denied: Student access required",
}

// RequireRole must run after Authenticate.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			resp.Abort(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		if u.Role != role {
			resp.Abort(c, http.StatusForbidden, roleDenied[role])
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

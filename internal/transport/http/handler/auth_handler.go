package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	"library-api/internal/service"
	"library-api/internal/transport/http/ez"
	"library-api/internal/transport/http/middleware"
)

type registerReq struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName"  binding:"required,max=64"`
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=6,maxbytes=72"`
	Role      string `json:"role"      binding:"omitempty,oneof=student librarian"`
}

func (r registerReq) input() service.CreateUserInput {
	return service.CreateUserInput{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     r.Email,
		Password:  r.Password,
		Role:      domain.Role(r.Role),
	}
}

type loginReq struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	svc   *service.AuthService
	guard Guard
	debug bool
}

func NewAuthHandler(svc *service.AuthService, g Guard, debug bool) *AuthHandler {
	return &AuthHandler{svc: svc, guard: g, debug: debug}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/auth"), h.debug)

	ez.Register(e, ez.Action[registerReq, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerReq) (*service.AuthResult, error) {
			return h.svc.Register(c.Request.Context(), in.input())
		},
	})

	ez.Register(e, ez.Action[loginReq, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginReq) (*service.AuthResult, error) {
			return h.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.Register(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Use:    h.guard.Any(),
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return middleware.CurrentUser(c), nil
		},
	})
}

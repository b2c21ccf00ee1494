package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	"library-api/internal/service"
	"library-api/internal/transport/http/ez"
	"library-api/internal/transport/http/middleware"
)

type checkoutReq struct {
	Book string `json:"book" binding:"required,uuid"`
}

type returnReq struct {
	CheckoutID string `json:"checkoutId" binding:"required,uuid"`
}

type CheckoutHandler struct {
	svc   *service.CheckoutService
	guard Guard
	debug bool
}

func NewCheckoutHandler(svc *service.CheckoutService, g Guard, debug bool) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, guard: g, debug: debug}
}

func (h *CheckoutHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/checkouts"), h.debug)

	ez.Register(e, ez.Action[struct{}, []domain.Checkout]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Use:    h.guard.Role(domain.RoleLibrarian),
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Checkout, error) {
			return h.svc.ListAll(c.Request.Context())
		},
	})

	ez.Register(e, ez.Action[struct{}, []domain.Checkout]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Use:    h.guard.Any(),
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Checkout, error) {
			return h.svc.ListMine(c.Request.Context(), middleware.CurrentUser(c).ID)
		},
	})

	ez.Register(e, ez.Action[checkoutReq, *domain.Checkout]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Use:    h.guard.Role(domain.RoleStudent),
		Handler: func(c *gin.Context, in *checkoutReq) (*domain.Checkout, error) {
			return h.svc.Checkout(c.Request.Context(), middleware.CurrentUser(c).ID, in.Book)
		},
	})

	ez.Register(e, ez.Action[returnReq, *domain.Checkout]{
		Method: http.MethodPost,
		Path:   "/return",
		Binder: ez.BindJSON,
		Use:    h.guard.Role(domain.RoleLibrarian),
		Handler: func(c *gin.Context, in *returnReq) (*domain.Checkout, error) {
			return h.svc.Return(c.Request.Context(), in.CheckoutID)
		},
	})
}

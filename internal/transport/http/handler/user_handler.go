package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	"library-api/internal/service"
	"library-api/internal/transport/http/ez"
)

// updateUserReq fields are all optional; a present field must still be valid.
type updateUserReq struct {
	FirstName *string `json:"firstName" binding:"omitnil,min=1,max=64"`
	LastName  *string `json:"lastName"  binding:"omitnil,min=1,max=64"`
	Email     *string `json:"email"     binding:"omitnil,email"`
	Password  *string `json:"password"  binding:"omitnil,min=6,maxbytes=72"`
	Role      *string `json:"role"      binding:"omitnil,oneof=student librarian"`
}

func (r updateUserReq) patch() domain.UserPatch {
	p := domain.UserPatch{
		FirstName: trimPtr(r.FirstName),
		LastName:  trimPtr(r.LastName),
		Email:     r.Email,
		Password:  r.Password,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

type UserHandler struct {
	svc   *service.UserService
	guard Guard
	debug bool
}

func NewUserHandler(svc *service.UserService, g Guard, debug bool) *UserHandler {
	return &UserHandler{svc: svc, guard: g, debug: debug}
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/users"), h.debug)
	librarian := h.guard.Role(domain.RoleLibrarian)

	ez.Register(e, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Use:    h.guard.Any(),
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	ez.Register(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Use:    h.guard.Any(),
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.Register(e, ez.Action[registerReq, *domain.User]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Use:    librarian,
		Handler: func(c *gin.Context, in *registerReq) (*domain.User, error) {
			return h.svc.Create(c.Request.Context(), in.input())
		},
	})

	ez.Register(e, ez.Action[updateUserReq, *domain.User]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Use:    librarian,
		Handler: func(c *gin.Context, in *updateUserReq) (*domain.User, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), in.patch())
		},
	})

	ez.Register(e, ez.Action[struct{}, messageOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Use:    librarian,
		Handler: func(c *gin.Context, _ *struct{}) (messageOut, error) {
			if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: "user deleted successfully"}, nil
		},
	})
}

package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-api/internal/domain"
	"library-api/internal/service"
	"library-api/internal/transport/http/ez"
)

type bookQuery struct {
	Title  *string `form:"title"`
	Author *string `form:"author"`
	Genre  *string `form:"genre"`
}

// filter drops blank parameters so ?title= does not constrain anything.
func (q bookQuery) filter() domain.BookFilter {
	blank := func(s *string) *string {
		if s == nil || strings.TrimSpace(*s) == "" {
			return nil
		}
		return s
	}
	return domain.BookFilter{Title: blank(q.Title), Author: blank(q.Author), Genre: blank(q.Genre)}
}

type createBookReq struct {
	Title         string `json:"title"         binding:"required,max=255"`
	Author        string `json:"author"        binding:"required,max=255"`
	PublishedYear int    `json:"publishedYear" binding:"required,min=1000,notfutureyear"`
	Genre         string `json:"genre"         binding:"required,max=64"`
	Stock         *int   `json:"stock"         binding:"omitnil,min=0"`
}

type updateBookReq struct {
	Title         *string `json:"title"         binding:"omitnil,min=1,max=255"`
	Author        *string `json:"author"        binding:"omitnil,min=1,max=255"`
	PublishedYear *int    `json:"publishedYear" binding:"omitnil,min=1000,notfutureyear"`
	Genre         *string `json:"genre"         binding:"omitnil,min=1,max=64"`
	Stock         *int    `json:"stock"         binding:"omitnil,min=0"`
}

type BookHandler struct {
	svc   *service.BookService
	guard Guard
	debug bool
}

func NewBookHandler(svc *service.BookService, g Guard, debug bool) *BookHandler {
	return &BookHandler{svc: svc, guard: g, debug: debug}
}

func (h *BookHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/books"), h.debug)
	librarian := h.guard.Role(domain.RoleLibrarian)

	ez.Register(e, ez.Action[bookQuery, []domain.Book]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *bookQuery) ([]domain.Book, error) {
			return h.svc.List(c.Request.Context(), in.filter())
		},
	})

	ez.Register(e, ez.Action[struct{}, *domain.Book]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Book, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.Register(e, ez.Action[createBookReq, *domain.Book]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Use:    librarian,
		Handler: func(c *gin.Context, in *createBookReq) (*domain.Book, error) {
			return h.svc.Create(c.Request.Context(), service.CreateBookInput{
				Title:         in.Title,
				Author:        in.Author,
				PublishedYear: in.PublishedYear,
				Genre:         in.Genre,
				Stock:         in.Stock,
			})
		},
	})

	ez.Register(e, ez.Action[updateBookReq, *domain.Book]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Use:    librarian,
		Handler: func(c *gin.Context, in *updateBookReq) (*domain.Book, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), domain.BookPatch{
				Title:         in.Title,
				Author:        in.Author,
				PublishedYear: in.PublishedYear,
				Genre:         in.Genre,
				Stock:         in.Stock,
			})
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
			return messageOut{Message: "book removed"}, nil
		},
	})
}

package ez

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domain"
)

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

type echoOut struct {
	Hello string `json:"hello"`
}

func newEngine(debug bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	e := New(r.Group("/v1"), debug)
	Register(e, Action[echoIn, echoOut]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *echoIn) (echoOut, error) {
			if in.Name == "taken" {
				return echoOut{}, domain.Conflict("name taken")
			}
			return echoOut{Hello: in.Name}, nil
		},
	})
	Register(e, Action[struct{}, echoOut]{
		Method: http.MethodGet,
		Path:   "/guarded",
		Binder: BindNone,
		Use: []gin.HandlerFunc{func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "nope"})
		}},
		Handler: func(c *gin.Context, _ *struct{}) (echoOut, error) {
			t := echoOut{Hello: "unreachable"}
			return t, nil
		},
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterSuccessStatus(t *testing.T) {
	w := do(newEngine(false), http.MethodPost, "/v1/echo", `{"name":"ada"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var out echoOut
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "ada", out.Hello)
}

func TestRegisterBindError(t *testing.T) {
	w := do(newEngine(false), http.MethodPost, "/v1/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"name is required"}`, w.Body.String())

	w = do(newEngine(false), http.MethodPost, "/v1/echo", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHandlerError(t *testing.T) {
	w := do(newEngine(false), http.MethodPost, "/v1/echo", `{"name":"taken"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"name taken"}`, w.Body.String())
}

func TestRegisterUseRunsFirst(t *testing.T) {
	w := do(newEngine(false), http.MethodGet, "/v1/guarded", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

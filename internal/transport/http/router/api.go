package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"library-api/internal/core/auth"
	"library-api/internal/core/cache"
	"library-api/internal/core/config"
	"library-api/internal/core/server"
	"library-api/internal/repo"
	"library-api/internal/service"
	"library-api/internal/transport/http/handler"
	mdw "library-api/internal/transport/http/middleware"
)

type Deps struct {
	Log    *zap.Logger
	DB     *gorm.DB
	Cache  *cache.Cache // nil disables book caching
	JWT    *auth.JWTer
	Limits config.Limits
	// Debug adds error causes to responses; off in production.
	Debug   bool
	BookTTL time.Duration
}

// NewAPIEngine wires repositories, services and handlers over d and returns
// the public engine.
func NewAPIEngine(d Deps) *gin.Engine {
	store := repo.NewStore(d.DB)
	users := service.NewUserService(store)
	authSvc := service.NewAuthService(users, d.JWT)
	books := service.NewBookService(store, d.Cache, d.BookTTL)
	checkouts := service.NewCheckoutService(store, d.Cache, d.Log)
	guard := handler.NewGuard(authSvc)

	reg := &Registry{}
	reg.Register(
		handler.NewAuthHandler(authSvc, guard, d.Debug),
		handler.NewUserHandler(users, guard, d.Debug),
		handler.NewBookHandler(books, guard, d.Debug),
		handler.NewCheckoutHandler(checkouts, guard, d.Debug),
	)

	r := server.NewRouter()
	r.Use(mdw.SecurityHeaders(), mdw.RequestID(), mdw.AccessLog(d.Log), mdw.Metrics(), mdw.Recovery(d.Log))
	r.Use(limits(d.Limits)...)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", mdw.MetricsHandler())

	reg.MountAll(r.Group("/api/v1"))
	return r
}

// limits returns the protective middlewares whose settings are positive.
func limits(l config.Limits) []gin.HandlerFunc {
	var hs []gin.HandlerFunc
	if l.RPS > 0 {
		hs = append(hs, mdw.RateLimit(rate.Limit(l.RPS), max(1, l.Burst)))
	}
	if l.PerIPRPS > 0 {
		hs = append(hs, mdw.RateLimitPerIP(rate.Limit(l.PerIPRPS), max(1, l.PerIPBurst), 10*time.Minute))
	}
	if l.MaxConcurrent > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(l.MaxConcurrent))
	}
	if l.MaxBodyMB > 0 {
		hs = append(hs, mdw.MaxBodyBytes(l.MaxBodyMB<<20))
	}
	if l.RequestTimeoutSec > 0 {
		hs = append(hs, mdw.Timeout(time.Duration(l.RequestTimeoutSec)*time.Second))
	}
	return hs
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"library-api/internal/core/auth"
	"library-api/internal/core/cache"
	"library-api/internal/core/config"
	"library-api/internal/core/database"
	"library-api/internal/core/logger"
	"library-api/internal/core/server"
	"library-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		boot, done := logger.New("info", false)
		boot.Error("config", zap.Error(err))
		done()
		os.Exit(1)
	}

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.App.Production(),
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		PrepareStmt:        cfg.DB.PrepareStmt,
		LogLevel:           cfg.DB.LogLevel,
		Log:                logger.ToStdLogger(log.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("db close", zap.Error(err))
		}
	}()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	var bookCache *cache.Cache
	if cfg.Redis.Addr != "" {
		bookCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := bookCache.Ping(pctx)
		cancel()
		if err != nil {
			// Running without the cache is always correct, only slower.
			log.Warn("redis unavailable, book cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = bookCache.Close()
			bookCache = nil
		} else {
			defer bookCache.Close()
		}
	}

	engine := router.NewAPIEngine(router.Deps{
		Log:   log,
		DB:    db,
		Cache: bookCache,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
		Limits:  cfg.Limits,
		Debug:   !cfg.App.Production(),
		BookTTL: time.Duration(cfg.Redis.BookTTLSec) * time.Second,
	})

	srv := server.BuildServer(
		server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port), engine,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log.Info("library api starting", zap.String("name", cfg.App.Name), zap.String("env", cfg.App.Env))
	if err := server.Run(ctx, srv, 10*time.Second, log); err != nil {
		log.Error("server", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	myPostgresRepo "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/db/redis"
	myGrpc "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/grpc"
	myHttp "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/http"
	httpmw "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/app/auth/jwt"
	appsvc "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/app/auth/service"
	authErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/telegram"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/health"
	lg "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/metrics"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/server"
	"golang.org/x/sync/errgroup"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	httpRateLimit   = 50
	httpBurst       = 100
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := lg.Must(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
		if authErrors.IsConfiguration(err) {
			boot.Fatal("invalid configuration", zap.Error(err))
		}
		boot.Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.AppEnv, cfg.LogLevel)
	defer zapLog.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	authenticator, err := telegram.New(cfg.TelegramBotToken, cfg.AuthMode,
		telegram.WithMaxAge(cfg.TelegramAuthMaxAge),
		telegram.WithLogger(zapLog.Named("telegram")),
	)
	if err != nil {
		zapLog.Fatal("failed to init telegram authenticator", zap.Error(err))
	}

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	tokenRepo := myRedisRepo.NewRedisTokenRepo(redisCli)
	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}
	svc := appsvc.New(userRepo, tokenRepo, jwtUtil, authenticator, validator.New(), zapLog)

	checker := health.NewChecker(zapLog, map[string]health.Pinger{
		"db":    userRepo,
		"redis": tokenRepo,
	})
	reporter := myGrpc.NewHealthReporter(checker, cfg.HealthInterval, zapLog)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(metrics.Gin())
	router.Use(httpmw.NewHTTPRateLimitPerIP(rootCtx, httpRateLimit, httpBurst, 10_000, time.Hour))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
			"X-Telegram-Init-Data",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	myHttp.NewHandler(svc, checker, cfg.CookieDomain, cfg.TLSEnabled(), zapLog).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return reporter.Run(ctx)
	})

	g.Go(func() error {
		return server.StartGRPCServer(ctx, cfg, reporter.Server(), zapLog)
	})

	g.Go(func() error {
		zapLog.Info("HTTP server listening",
			zap.String("addr", cfg.HTTPAddress),
			zap.Bool("tls", cfg.TLSEnabled()),
			zap.String("auth_mode", authenticator.Mode().String()),
		)
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zapLog.Info("shutdown signal received")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}

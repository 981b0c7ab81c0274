package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AjayAlluri/Toyota-Financing/internal/ai"
	"github.com/AjayAlluri/Toyota-Financing/internal/auth"
	"github.com/AjayAlluri/Toyota-Financing/internal/cache"
	"github.com/AjayAlluri/Toyota-Financing/internal/config"
	"github.com/AjayAlluri/Toyota-Financing/internal/handlers"
	"github.com/AjayAlluri/Toyota-Financing/internal/notifications"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
	"github.com/AjayAlluri/Toyota-Financing/internal/storage"
)

// Deps are the external resources the HTTP server is built on.
type Deps struct {
	DB       repository.DB
	Cache    *cache.QuoteCache
	Store    *storage.Local
	AIClient ai.Client
	Hub      *notifications.Hub
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.Storage)))

	hub := deps.Hub
	if hub == nil {
		hub = notifications.NewHub()
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(deps.DB)
	tokenRepo := repository.NewRefreshTokenRepository(deps.DB)
	profileRepo := repository.NewProfileRepository(deps.DB)
	documentRepo := repository.NewDocumentRepository(deps.DB)
	recommendationRepo := repository.NewRecommendationRepository(deps.DB)
	aiRepo := repository.NewAIRepository(deps.DB)
	salesRepo := repository.NewSalesRepository(deps.DB)
	aiService := ai.NewService(deps.AIClient, cfg.AI.Provider, cfg.AI.Model)

	healthDeps := map[string]handlers.Pinger{}
	if pinger, ok := deps.DB.(handlers.Pinger); ok {
		healthDeps["database"] = pinger
	}
	if deps.Cache != nil {
		healthDeps["cache"] = deps.Cache
	}

	registerRoutes(e, routeHandlers{
		auth:            handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager),
		profile:         handlers.NewProfileHandler(profileRepo),
		quotes:          handlers.NewQuoteHandler(aiService, deps.Cache, profileRepo, recommendationRepo, aiRepo, hub),
		recommendations: handlers.NewRecommendationHandler(recommendationRepo, profileRepo, hub),
		documents:       handlers.NewDocumentHandler(documentRepo, deps.Store, hub),
		users:           handlers.NewUserDataHandler(profileRepo, documentRepo, recommendationRepo),
		sales:           handlers.NewSalesHandler(salesRepo, userRepo, profileRepo, documentRepo, recommendationRepo),
		notifications:   handlers.NewNotificationHandler(hub),
		health:          handlers.Health(healthDeps),
		metrics:         echo.WrapHandler(promhttp.Handler()),
	}, routeMiddleware{
		authenticate:    auth.Middleware(tokenManager),
		authRateLimiter: authRateLimiter(cfg.Auth),
		aiRateLimiter:   aiRateLimiter(cfg.AI),
	})

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// errorHandler renders echo errors in the same {"error": "..."} shape the
// handlers use.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		if text, ok := httpErr.Message.(string); ok {
			message = text
		} else {
			message = http.StatusText(status)
		}
	} else {
		zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, map[string]string{"error": message})
	}
	if err != nil {
		zap.L().Warn("error response failed", zap.Error(err))
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.String("remote_ip", v.RemoteIP),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}

			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				zap.L().Error(msg, fields...)
				return nil
			}

			zap.L().Info(msg, fields...)
			return nil
		},
	})
}

// bodyLimit leaves room for multipart framing around the largest upload.
func bodyLimit(cfg config.StorageConfig) string {
	limit := cfg.MaxUploadBytes + 1<<20
	return fmt.Sprintf("%dK", limit/1024+1)
}

func newRateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	return newRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
}

func aiRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	return newRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
}

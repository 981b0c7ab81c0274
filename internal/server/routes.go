package server

import (
	"github.com/labstack/echo/v4"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/handlers"
)

type routeHandlers struct {
	auth            *handlers.AuthHandler
	profile         *handlers.ProfileHandler
	quotes          *handlers.QuoteHandler
	recommendations *handlers.RecommendationHandler
	documents       *handlers.DocumentHandler
	users           *handlers.UserDataHandler
	sales           *handlers.SalesHandler
	notifications   *handlers.NotificationHandler
	health          echo.HandlerFunc
	metrics         echo.HandlerFunc
}

type routeMiddleware struct {
	authenticate    echo.MiddlewareFunc
	authRateLimiter echo.MiddlewareFunc
	aiRateLimiter   echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", h.health)
	e.GET("/metrics", h.metrics)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", mw.authRateLimiter)

	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me, mw.authenticate)

	api.POST("/estimates/finance", handlers.FinanceEstimate)
	api.POST("/estimates/lease", handlers.LeaseEstimate)
	api.GET("/dealerships", handlers.Dealerships)

	profile := api.Group("/profile", mw.authenticate, access.RequireRole(access.RoleUser))
	profile.GET("", h.profile.Get)
	profile.PUT("", h.profile.Put)

	api.POST("/quotes", h.quotes.Create, mw.authenticate, access.RequireRole(access.RoleUser), mw.aiRateLimiter)

	recommendations := api.Group("/recommendations", mw.authenticate, access.RequireAuthenticated())
	recommendations.GET("", h.recommendations.List)
	recommendations.GET("/:id", h.recommendations.Get)
	recommendations.GET("/:id/estimates", h.recommendations.Estimates)
	recommendations.PUT("/:id/selection", h.recommendations.Select)

	documents := api.Group("/documents", mw.authenticate, access.RequireAuthenticated())
	documents.POST("", h.documents.Upload)
	documents.GET("", h.documents.List)
	documents.GET("/:id", h.documents.Download)
	documents.DELETE("/:id", h.documents.Delete)

	users := api.Group("/users/:userId", mw.authenticate, access.RequireAuthenticated())
	users.GET("/profile", h.users.Profile)
	users.GET("/documents", h.users.ListDocuments)
	users.GET("/recommendations", h.users.ListRecommendations)

	notifications := api.Group("/notifications", mw.authenticate)
	notifications.GET("/stream", h.notifications.Stream)

	sales := api.Group("/sales", mw.authenticate, access.RequireRole(access.RoleSales))
	sales.GET("/users", h.sales.ListUsers)
	sales.GET("/users/:userId/overview", h.sales.Overview)
	sales.GET("/profiles", h.sales.ListProfiles)
	sales.GET("/documents", h.sales.ListDocuments)
	sales.GET("/recommendations", h.sales.ListRecommendations)
	sales.GET("/stats", h.sales.Stats)
	sales.GET("/export/leads.csv", h.sales.ExportLeads)
}

// api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Annany2002/jobboard-backend/api/handlers"
	"github.com/Annany2002/jobboard-backend/api/middleware"
	"github.com/Annany2002/jobboard-backend/api/models"
	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/apierror"
	"github.com/Annany2002/jobboard-backend/internal/auth"
	"github.com/Annany2002/jobboard-backend/internal/logger"
	"github.com/Annany2002/jobboard-backend/internal/mail"
	"github.com/Annany2002/jobboard-backend/internal/storage"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(store *storage.Store, cfg *config.Config, mailer mail.Mailer) (*gin.Engine, error) {
	models.RegisterJSONFieldNames()

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = false

	// Order matters: ErrorHandler must wrap everything that reports errors.
	router.Use(
		middleware.RequestLogger(),
		middleware.ErrorHandler(apierror.NewHandler(apierror.DefaultTable(), logger.Named("apierror"))),
		middleware.Recovery(),
		middleware.AllowedHosts(cfg.AllowedHosts, cfg.Debug),
		middleware.CORS(cfg.Server.CORSAllowedOrigins),
	)
	router.NoRoute(func(c *gin.Context) { _ = c.Error(apierror.NotFound()) })
	router.NoMethod(func(c *gin.Context) { _ = c.Error(apierror.MethodNotAllowed(c.Request.Method)) })

	tokens := auth.NewTokenService(cfg)
	throttles := middleware.NewThrottles(cfg.REST.Throttle)
	applicationsThrottle, err := throttles.Scoped(config.ApplicationsScope)
	if err != nil {
		return nil, fmt.Errorf("setting up throttles: %w", err)
	}

	authHandler := handlers.NewAuthHandler(store, cfg, tokens)
	jobHandler := handlers.NewJobHandler(store, cfg)
	applicationHandler := handlers.NewApplicationHandler(store, cfg, mailer)

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			_ = c.Error(fmt.Errorf("readiness check: %w", err))
			return
		}
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.Authentication(tokens, store, cfg.JWT.AuthHeaderTypes))

	// route runs the default throttles after the permission check, so a
	// rejected request does not count against the caller's rate.
	route := func(view string, permission gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{middleware.View(view)}
		if permission != nil {
			chain = append(chain, permission)
		}
		chain = append(chain, throttles.Anon(), throttles.User())
		return append(chain, handlers...)
	}
	authenticated := middleware.RequireAuthenticated()

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", route("SignupView", nil, authHandler.Signup)...)
		authRoutes.POST("/token", route("TokenObtainPairView", nil, authHandler.Token)...)
		authRoutes.POST("/token/refresh", route("TokenRefreshView", nil, authHandler.Refresh)...)
		authRoutes.POST("/token/blacklist", route("TokenBlacklistView", nil, authHandler.Blacklist)...)
	}

	// --- Versioned Routes ---
	v1 := api.Group("/v1")
	{
		v1.GET("/site", route("SiteView", nil, authHandler.Site)...)
		v1.GET("/me", route("MeView", authenticated, authHandler.Me)...)

		v1.GET("/jobs", route("JobListView", nil, jobHandler.ListJobs)...)
		v1.POST("/jobs", route("JobListView", middleware.RequireAuthenticatedOrReadOnly(), jobHandler.CreateJob)...)
		v1.GET("/jobs/:id", route("JobDetailView", nil, jobHandler.GetJob)...)

		v1.POST("/jobs/:id/applications", route("ApplicationCreateView", authenticated, applicationsThrottle, applicationHandler.Apply)...)
		v1.GET("/applications", route("ApplicationListView", authenticated, applicationHandler.ListApplications)...)
		v1.PATCH("/applications/:id/status", route("ApplicationStatusView", authenticated, applicationHandler.UpdateStatus)...)
	}

	return router, nil
}

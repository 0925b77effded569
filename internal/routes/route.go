package routes

import (
	"net/http"

	"github.com/campsum/campsum-api/internal/container"
	"github.com/campsum/campsum-api/internal/handlers"
	"github.com/campsum/campsum-api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(ct *container.Container) *gin.Engine {
	cfg := ct.Config
	logger := ct.Logger
	secure := cfg.IsProduction()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(gin.Recovery())

	limit := middleware.RateLimiter(middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	cached := middleware.Cache(cache.New(cfg.CacheTTL, 2*cfg.CacheTTL))
	requireAuth := middleware.AuthMiddleware(ct.TokenVerifier, ct.AuthService, secure, logger)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": "campsum-api",
			})
		})
		api.GET("/universities", cached, handlers.ListUniversities(ct.UniversityService, logger))
		api.GET("/catalog", cached, handlers.GetCatalog(ct.Catalog))
		api.POST("/contact", limit, handlers.Contact(ct.FormService, logger))
		api.POST("/forms/:kind", limit, handlers.SubmitForm(ct.FormService, logger))
		api.GET("/profile", requireAuth, handlers.GetProfile(ct.AuthService, logger))
	}

	auth := api.Group("/auth")
	{
		auth.POST("/student-signup", limit, handlers.StudentSignup(ct.AuthService, logger))
		auth.POST("/student-login", limit, handlers.StudentLogin(ct.AuthService, secure, logger))
		auth.POST("/forgot-password", limit, handlers.ForgotPassword(ct.AuthService, logger))
		auth.POST("/check-provider", limit, handlers.CheckProvider(ct.ProviderService, logger))
		auth.GET("/provider-hint", limit, handlers.ProviderHint(ct.ProviderService, logger))
		auth.GET("/google", handlers.GoogleAuth(ct.AuthService))
		auth.GET("/callback", handlers.GoogleAuthCallback(ct.AuthService))
		auth.POST("/logout", handlers.Logout(secure))

		auth.POST("/session", requireAuth, handlers.Session(ct.AuthService, logger))
		auth.PATCH("/update-profile", requireAuth, handlers.UpdateProfile(ct.AuthService, logger))
		auth.POST("/complete-profile", requireAuth, handlers.CompleteProfile(ct.AuthService, logger))
	}

	accommodations := api.Group("/accommodations")
	{
		accommodations.GET("", requireAuth, handlers.ListAccommodations(ct.AccommodationService, logger))
		accommodations.GET("/:id", cached, handlers.GetAccommodation(ct.AccommodationService, logger))
		accommodations.POST("/:id/interest", requireAuth, handlers.AccommodationInterest(ct.AccommodationService, logger))
	}

	marketplace := api.Group("/marketplace", requireAuth)
	{
		marketplace.GET("/items/my-listings", handlers.GetMyListings(ct.MarketplaceService, logger))
		marketplace.GET("/items", handlers.GetListings(ct.MarketplaceService, logger))
		marketplace.POST("/items", handlers.CreateListing(ct.MarketplaceService, logger))
		marketplace.PATCH("/items/:itemId", handlers.UpdateListing(ct.MarketplaceService, logger))
		marketplace.DELETE("/items/:itemId", handlers.DeleteListing(ct.MarketplaceService, logger))
		marketplace.POST("/items/:itemId/report", handlers.ReportListing(ct.MarketplaceService, logger))
	}

	business := api.Group("/business")
	{
		business.POST("/signup", limit, handlers.BusinessSignup(ct.BusinessService, logger))
		business.GET("/verify/:token", handlers.BusinessVerify(ct.BusinessService, logger))
		business.POST("/login", limit, handlers.BusinessLogin(ct.BusinessService, secure, logger))
	}

	guard := middleware.RequireSession(ct.TokenVerifier, ct.AuthService, cfg.FrontendURL+"/signup", secure, logger)
	protected := func(c *gin.Context) bool {
		page, ok := ct.Catalog.Page(c.Param("page"))
		return ok && page.Protected
	}
	r.GET("/app/:page", middleware.GuardWhen(protected, guard), handlers.GetPage(ct.Catalog))

	return r
}

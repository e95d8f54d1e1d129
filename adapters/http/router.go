package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-onboarding/pkg/auth"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type Handlers struct {
	Username   *UsernameHandler
	Portfolio  *PortfolioHandler
	Onboarding *OnboardingHandler
	RSS        *RSSHandler
	Auth       *AuthHandler
}

type RouterOptions struct {
	AllowedOrigins []string
	RateLimiter    *RateLimiter
	JWT            *auth.JWTService
}

// NewRouter wires every route under /api. Recovery wraps the error renderer.
func NewRouter(h Handlers, opts RouterOptions, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Tracing(),
		Logging(log),
		Recovery(log),
		CORS(opts.AllowedOrigins),
		ErrorMiddleware(log),
	)

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	public := api.Group("")
	public.Use(RateLimit(opts.RateLimiter))
	{
		public.POST("/check-username", h.Username.CheckUsername)
		public.GET("/check-username", h.Username.MethodNotAllowed)

		public.POST("/generate-portfolio", h.Portfolio.GeneratePortfolio)
		public.GET("/generate-portfolio", h.Portfolio.GetPortfolio)
		public.PUT("/generate-portfolio", h.Portfolio.UpdatePortfolio)
		public.DELETE("/generate-portfolio", h.Portfolio.DeletePortfolio)

		public.POST("/portfolio", h.Portfolio.LookupSource)

		drafts := public.Group("/onboarding/drafts")
		{
			drafts.POST("", h.Onboarding.StartDraft)
			drafts.GET("/:id", h.Onboarding.GetDraft)
			drafts.PUT("/:id/sections/:sectionId", h.Onboarding.SaveSection)
			drafts.POST("/:id/navigate", h.Onboarding.Navigate)
			drafts.POST("/:id/photo", h.Onboarding.UploadPhoto)
		}

		public.GET("/feed.xml", h.RSS.GenerateRSS)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/auth/login", h.Auth.Login)

		adminPrivate := admin.Group("")
		adminPrivate.Use(AuthMiddleware(opts.JWT, log))
		{
			adminPrivate.GET("/portfolios", h.Auth.ListPortfolios)
			adminPrivate.DELETE("/portfolios/:username", h.Auth.DeletePortfolio)
		}
	}

	return router
}

package handlers

import (
	"context"

	_ "bookreview/docs"
	"bookreview/internal/logger"
	"bookreview/internal/metrics"
	"bookreview/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Sessions starts, resolves and ends cookie sessions.
type Sessions interface {
	Start(ctx context.Context, userID int) (string, error)
	Clear(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (int, bool, error)
}

// Options controls the session cookie.
type Options struct {
	CookieName   string
	SecureCookie bool
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	sessions Sessions
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, sessions Sessions, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Handler{services: services, sessions: sessions, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Instrument(), h.sessionMiddleware, h.requestLogger)
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", h.health)

	h.registerPageRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.POST("/", h.index)
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)

	private := r.Group("/", h.loginRequired)
	{
		private.GET("/logout", h.logout)
		private.GET("/search", h.searchForm)
		private.POST("/search", h.search)
		private.GET("/books/:isbn", h.book)
		private.POST("/books/:isbn", h.submitReview)
		private.GET("/ws/books/:isbn", h.wsReviews)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	r.GET("/api/:isbn", h.bookAPI)
}

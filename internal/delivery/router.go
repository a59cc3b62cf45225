package delivery

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/middleware"
	"github.com/quad400/kaydee-boutique/internal/usecase"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Products       usecase.ProductUseCase
	Categories     usecase.CategoryUseCase
	Carts          usecase.CartUseCase
	Sessions       domain.SessionRepository
	RequestTimeout time.Duration
	// OnFault is called after a handler panic has been answered.
	OnFault func(error)
}

// NewRouter assembles the HTTP surface under /api.
func NewRouter(cfg RouterConfig, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(
		middleware.RequestLogger(log),
		middleware.FaultBoundary(log, cfg.OnFault),
		middleware.Timeout(cfg.RequestTimeout),
	)

	router.GET("/health", func(c *gin.Context) {
		SuccessResponse(c, http.StatusOK, "OK", nil)
	})

	public := router.Group("/api")
	protected := router.Group("/api")
	protected.Use(middleware.Authenticate(cfg.Sessions, log))

	NewProductHandler(cfg.Products, log).RegisterRoutes(public, protected)
	NewCategoryHandler(cfg.Categories, log).RegisterRoutes(public, protected)
	NewCartHandler(cfg.Carts, log).RegisterRoutes(protected)

	router.NoRoute(NotFound)
	return router
}

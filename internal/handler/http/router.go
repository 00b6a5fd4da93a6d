package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/service"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/health"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/middleware"
)

// RouterConfig holds the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	PprofCIDRs     []string
	CORS           middleware.CORSConfig
	RateLimit      middleware.RateLimitConfig

	// ProductMaxAge is the Cache-Control max-age sent on product reads.
	ProductMaxAge time.Duration
}

// NewRouter creates a chi router with every catalog and cart route
// registered. cartService may be nil, in which case the cart routes are not
// mounted.
func NewRouter(
	cfg RouterConfig,
	catalogService *service.CatalogService,
	cartService *cart.Service,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))

	// Health and operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	productHandler := NewProductHandler(catalogService, logger)
	productRoutes := func(r chi.Router) {
		r.Use(middleware.CacheControl(cfg.ProductMaxAge))
		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(middleware.RateLimit(cfg.RateLimit, logger))
		r.Use(middleware.ContentTypeJSON)

		r.Route("/api/products", productRoutes)
		r.Route("/api/v1/products", productRoutes)

		if cartService == nil {
			return
		}

		cartHandler := NewCartHandler(cartService, logger)
		r.Route("/api/cart", func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}/{size}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}/{size}", cartHandler.RemoveItem)
		})
	})

	return r
}

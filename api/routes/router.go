package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/printshop-backend/api/controllers"
	"github.com/angelmondragon/printshop-backend/api/middleware"
	products "github.com/angelmondragon/printshop-backend/internal/products"
	"github.com/angelmondragon/printshop-backend/pkg/config"
	"github.com/angelmondragon/printshop-backend/pkg/db"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
	"github.com/angelmondragon/printshop-backend/pkg/redis"
)

// NewRouter wires the storefront, admin, health and metrics routes.
// redisClient may be nil, which disables idempotency replay.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	productService products.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{"database": dbP}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		readiness["redis"] = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/products/{productId}", func(r chi.Router) {
		r.Post("/quote", controllers.StorefrontQuote(productService, logg))
		r.Get("/gang-run", controllers.StorefrontGangRun(productService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Pricing.IdempotencyTTL, logg))

		r.Post("/products", controllers.AdminCreateProductConfig(productService, logg))
		r.Route("/products/{productId}", func(r chi.Router) {
			r.Get("/config", controllers.AdminGetProductConfig(productService, logg))
			r.Post("/tiers", controllers.AdminInsertTier(productService, logg))
			r.Put("/tiers", controllers.AdminReplaceTiers(productService, logg))
			r.Delete("/tiers/{index}", controllers.AdminRemoveTier(productService, logg))
			r.Post("/paper-stocks/{paperStockId}/toggle", controllers.AdminTogglePaperStock(productService, logg))
			r.Put("/paper-stocks/{paperStockId}/default", controllers.AdminSetDefaultPaperStock(productService, logg))
			r.Post("/validate", controllers.AdminValidateProductConfig(productService, logg))
			r.Post("/publish", controllers.AdminPublishProductConfig(productService, logg))
		})

		r.Get("/addons", controllers.AdminListAddOns(productService, logg))
		r.Route("/addon-sets/{setId}", func(r chi.Router) {
			r.Post("/addons/{addOnId}/toggle", controllers.AdminToggleSetAddOn(productService, logg))
			r.Post("/reorder", controllers.AdminReorderAddOnSet(productService, logg))
		})
	})

	return r
}

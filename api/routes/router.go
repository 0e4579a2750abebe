package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/controllers"
	ordercontrollers "github.com/VWin4Ever/restaurant-pos-system-sub000/api/controllers/orders"
	stockcontrollers "github.com/VWin4Ever/restaurant-pos-system-sub000/api/controllers/stocks"
	tablecontrollers "github.com/VWin4Ever/restaurant-pos-system-sub000/api/controllers/tables"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/middleware"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/orders"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/stock"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/tables"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/redis"
)

// NewRouter wires every HTTP route. redisClient may be nil, in which case
// idempotency replay is disabled and readiness skips the redis check.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	ordersSvc orders.Service,
	tablesSvc tables.Service,
	stockSvc stock.Service,
) http.Handler {
	var (
		redisP    redis.Pinger
		idemStore redis.IdempotencyStore
	)
	if redisClient != nil {
		redisP = redisClient
		idemStore = redisClient
	}
	idem := middleware.NewIdempotency(idemStore, cfg.Idempotency.LockTTL, logg)
	idempotent := idem.Require(cfg.Idempotency.TTL)
	settlement := idem.Require(cfg.Idempotency.SettlementTTL)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Actor(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActor(logg))
				r.With(idempotent).Post("/", ordercontrollers.Create(ordersSvc, logg))
				r.Put("/{orderId}", ordercontrollers.Update(ordersSvc, logg))
				r.With(settlement).Post("/{orderId}/cancel", ordercontrollers.Cancel(ordersSvc, logg))
				r.With(settlement).Post("/{orderId}/pay", ordercontrollers.Pay(ordersSvc, logg))
				r.With(idempotent).Post("/{orderId}/table", ordercontrollers.ReassignTable(ordersSvc, logg))
			})
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", tablecontrollers.List(tablesSvc, logg))
			r.With(middleware.RequireActor(logg)).Put("/{tableId}/status", tablecontrollers.SetStatus(tablesSvc, logg))
		})

		r.Route("/stocks", func(r chi.Router) {
			r.Get("/{stockId}/logs", stockcontrollers.Logs(stockSvc, logg))
			r.With(middleware.RequireActor(logg), idempotent).Post("/{stockId}/adjust", stockcontrollers.Adjust(stockSvc, logg))
		})
	})

	return r
}

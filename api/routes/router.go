package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warebound/fulfillment-backend/api/controllers"
	"github.com/warebound/fulfillment-backend/api/middleware"
	"github.com/warebound/fulfillment-backend/internal/ledger"
	"github.com/warebound/fulfillment-backend/internal/notifications"
	"github.com/warebound/fulfillment-backend/internal/pickpack"
	"github.com/warebound/fulfillment-backend/internal/shipping"
	"github.com/warebound/fulfillment-backend/internal/warehouses"
	"github.com/warebound/fulfillment-backend/pkg/config"
	"github.com/warebound/fulfillment-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	pubsubP controllers.Pinger,
	gatherer prometheus.Gatherer,
	ledgerService ledger.Service,
	pickPackService pickpack.Service,
	shippingService shipping.Service,
	internationalService shipping.InternationalService,
	notificationsService notifications.Service,
	warehouseRepo warehouses.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisP,
			"pubsub":   pubsubP,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/stock", func(r chi.Router) {
		r.Post("/adjust", controllers.StockAdjust(ledgerService, logg))
		r.Post("/transfer", controllers.StockTransfer(ledgerService, logg))
		r.Get("/balance", controllers.StockBalance(ledgerService, logg))
		r.Get("/movements", controllers.StockMovements(ledgerService, logg))
	})

	r.Route("/api/v1/pick-packs", func(r chi.Router) {
		r.Post("/", controllers.PickPackCreate(pickPackService, logg))
		r.Get("/", controllers.PickPackList(pickPackService, logg))
		r.Get("/order/{orderId}", controllers.PickPackByOrder(pickPackService, logg))
		r.Route("/{pickPackId}", func(r chi.Router) {
			r.Get("/", controllers.PickPackDetail(pickPackService, logg))
			r.Post("/start-picking", controllers.PickPackStartPicking(pickPackService, logg))
			r.Post("/complete-picking", controllers.PickPackCompletePicking(pickPackService, logg))
			r.Post("/start-packing", controllers.PickPackStartPacking(pickPackService, logg))
			r.Post("/complete-packing", controllers.PickPackCompletePacking(pickPackService, logg))
			r.Post("/ship", controllers.PickPackMarkShipped(pickPackService, logg))
			r.Post("/cancel", controllers.PickPackCancel(pickPackService, logg))
			r.Patch("/items/{itemId}", controllers.PickPackUpdateItem(pickPackService, logg))
		})
	})

	r.Route("/api/v1/shippings", func(r chi.Router) {
		r.Post("/", controllers.ShippingCreate(shippingService, logg))
		r.Get("/order/{orderId}", controllers.ShippingByOrder(shippingService, logg))
		r.Route("/{shippingId}", func(r chi.Router) {
			r.Get("/", controllers.ShippingDetail(shippingService, logg))
			r.Post("/tracking", controllers.ShippingUpdateTracking(shippingService, logg))
			r.Post("/status", controllers.ShippingUpdateStatus(shippingService, logg))
		})
	})

	r.Route("/api/v1/international-shippings", func(r chi.Router) {
		r.Post("/", controllers.InternationalCreate(internationalService, logg))
		r.Get("/order/{orderId}", controllers.InternationalByOrder(internationalService, logg))
		r.Route("/{shippingId}", func(r chi.Router) {
			r.Get("/", controllers.InternationalDetail(internationalService, logg))
			r.Post("/ship", controllers.InternationalMarkShipped(internationalService, logg))
			r.Post("/customs", controllers.InternationalMarkInCustoms(internationalService, logg))
			r.Post("/clear-customs", controllers.InternationalClearCustoms(internationalService, logg))
			r.Post("/out-for-delivery", controllers.InternationalOutForDelivery(internationalService, logg))
			r.Post("/deliver", controllers.InternationalMarkDelivered(internationalService, logg))
			r.Patch("/costs", controllers.InternationalUpdateCosts(internationalService, logg))
			r.Delete("/", controllers.InternationalDelete(internationalService, logg))
		})
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", controllers.NotificationsList(notificationsService, logg))
		r.Post("/{notificationId}/read", controllers.NotificationMarkRead(notificationsService, logg))
	})

	r.Get("/api/v1/warehouses", controllers.WarehousesList(warehouseRepo, logg))

	return r
}

package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type RouterDeps struct {
	CartService     service.CartService
	ProductService  service.ProductService
	SessionResolver service.SessionResolver
	Session         config.SessionConfig
	Metrics         *metrics.MetricsManager
	Log             logger.Logger
}

func NewRouter(deps RouterDeps) *chi.Mux {
	cartHandler := NewCartHandler(deps.CartService, deps.Log)
	productHandler := NewProductHandler(deps.ProductService, deps.Log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(Logger(deps.Log, deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	SetupCartRoutes(r, cartHandler, deps.SessionResolver, deps.Session, deps.Log)
	SetupProductRoutes(r, productHandler)

	return r
}

// SetupCartRoutes registers the session-scoped cart routes.
func SetupCartRoutes(mux *chi.Mux, h *CartHandler, resolver service.SessionResolver, cfg config.SessionConfig, log logger.Logger) {
	mux.Route("/cart", func(r chi.Router) {
		r.Use(Session(resolver, cfg, log))

		r.Get("/", h.HandleGetCart)
		r.Post("/", h.HandleAddItem)
		r.Post("/add_item", h.HandleSetItem)
		r.Delete("/remove_item", h.HandleRemoveItem)
		r.Delete("/{product_id}", h.HandleRemoveItem)
	})
}

func SetupProductRoutes(mux *chi.Mux, h *ProductHandler) {
	mux.Get("/products", h.HandleListProducts)
	mux.Get("/products/{id}", h.HandleGetProduct)
}

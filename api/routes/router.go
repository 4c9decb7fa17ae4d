package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborlane/storefront-backend/api/controllers"
	cartctrl "github.com/harborlane/storefront-backend/api/controllers/cart"
	"github.com/harborlane/storefront-backend/api/middleware"
	"github.com/harborlane/storefront-backend/pkg/config"
	"github.com/harborlane/storefront-backend/pkg/logger"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Cart     *cartctrl.Controller
	Checkout *controllers.CheckoutController
	Health   *controllers.HealthController
	Registry *prometheus.Registry
}

// New assembles the HTTP surface: operational endpoints at the root, the cart
// and checkout API under /api/v1 behind the session cookie.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Session(deps.Config.Session, deps.Logger))

		api.Route("/cart", func(cart chi.Router) {
			cart.Get("/", deps.Cart.Fetch)
			cart.Post("/items", deps.Cart.AddItem)
			cart.Patch("/items/{lineID}", deps.Cart.UpdateItem)
			cart.Delete("/items/{lineID}", deps.Cart.RemoveItem)
			cart.Delete("/", deps.Cart.Clear)
			cart.Post("/visibility", deps.Cart.Visibility)
		})

		api.Post("/checkout", deps.Checkout.Checkout)
	})

	return r
}

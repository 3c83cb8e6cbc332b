package router

import (
	"net/http"

	_ "github.com/RoyceAzure/lab/storefront/docs"
	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter wires every route. metricsHandler may be nil, then /metrics is not served.
func SetupRouter(
	server *api.Server,
	tokenMaker token.Maker,
	limiter ratelimit.Limiter,
	recorder metrics.IRecorder,
	metricsHandler http.Handler,
	logger *zerolog.Logger,
) *chi.Mux {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	r := chi.NewRouter()

	// global middleware
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(m.SessionIDMiddleware)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware)
	r.Use(m.MetricsMiddleware(recorder))

	r.Get("/healthz", server.HealthHandler.Health)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// swagger docs
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api", func(r chi.Router) {
		// gateways are configured with return urls ending in a slash
		r.Use(middleware.StripSlashes)
		if limiter != nil {
			r.Use(m.RateLimitMiddleware(limiter))
		}

		r.Get("/products", server.CatalogHandler.ListProducts)
		r.Get("/products/{slug}", server.CatalogHandler.GetProduct)
		r.Get("/categories", server.CatalogHandler.ListCategories)

		// guests are identified by X-Session-Id
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.GetCart)
			r.Post("/add", server.CartHandler.AddItem)
			r.Post("/update-qty", server.CartHandler.UpdateQuantity)
			r.Post("/remove", server.CartHandler.RemoveItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", server.AuthHandler.Register)
			r.Post("/token", server.AuthHandler.Login)
			r.Post("/refresh", server.AuthHandler.ReNewToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)

			r.Get("/addresses", server.AddressHandler.ListAddresses)
			r.Post("/addresses", server.AddressHandler.CreateAddress)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", server.OrderHandler.ListOrders)
				r.Post("/", server.OrderHandler.Checkout)
				r.Get("/{id}", server.OrderHandler.GetOrder)
				r.Post("/{id}/pay", server.OrderHandler.Pay)
				r.Post("/{id}/mark-paid", server.OrderHandler.MarkPaid)
			})

			r.Post("/payments/khalti/initiate/{orderID}", server.PaymentHandler.InitiateKhalti)
			r.Post("/payments/esewa/initiate/{orderID}", server.PaymentHandler.InitiateEsewa)
		})

		// gateway return urls, reached by the customer's browser without a token
		r.Get("/payments/khalti/callback", server.PaymentHandler.KhaltiCallback)
		r.Get("/payments/esewa/success", server.PaymentHandler.EsewaSuccess)
		r.Post("/payments/esewa/success", server.PaymentHandler.EsewaSuccess)
		r.Get("/payments/esewa/failure", server.PaymentHandler.EsewaFailure)
		r.Post("/payments/esewa/failure", server.PaymentHandler.EsewaFailure)
	})

	if logger != nil {
		_ = chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
			return nil
		})
	}
	return r
}

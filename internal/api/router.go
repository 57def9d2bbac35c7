package api

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/api/handler"
	"github.com/kopiteras/cafe/internal/api/middleware"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/cart"
	"github.com/kopiteras/cafe/internal/menu"
	"github.com/kopiteras/cafe/internal/metrics"
	"github.com/kopiteras/cafe/internal/order"
	"github.com/kopiteras/cafe/internal/wishlist"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	OpenAPISpec []byte

	AuthService   *auth.Service
	Federated     handler.FederatedProvider // nil disables /auth/oidc
	SecureCookies bool

	Accounts account.Repository
	Menu     menu.Repository
	Cart     cart.Repository
	Wishlist wishlist.Repository
	Orders   order.Repository

	Metrics *metrics.Metrics // nil disables /metrics
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	if deps.AuthService == nil {
		return r
	}

	session := middleware.Session(deps.AuthService, deps.Metrics)
	requireAdmin := middleware.RequireAdmin(deps.Metrics)

	authOpts := []handler.AuthOption{
		handler.WithSecureCookies(deps.SecureCookies),
		handler.WithAuthMetrics(deps.Metrics),
	}
	if deps.Federated != nil {
		authOpts = append(authOpts, handler.WithFederatedProvider(deps.Federated))
	}
	authHandler := handler.NewAuthHandler(deps.AuthService, authOpts...)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Get("/me", authHandler.Me)
			r.Post("/session/refresh", authHandler.Refresh)
		})

		if authHandler.FederatedEnabled() {
			r.Get("/oidc/login", authHandler.FederatedBegin)
			r.Get("/oidc/callback", authHandler.FederatedCallback)
		}
	})

	menuHandler := handler.NewMenuHandler(deps.Menu)
	cartHandler := handler.NewCartHandler(deps.Cart)
	wishlistHandler := handler.NewWishlistHandler(deps.Wishlist)
	orderHandler := handler.NewOrderHandler(deps.Orders, deps.Metrics)
	profileHandler := handler.NewProfileHandler(deps.Accounts)
	accountHandler := handler.NewAccountHandler(deps.AuthService, deps.Accounts)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", menuHandler.List)
		r.Get("/menu/{id}", menuHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(session)

			r.Get("/cart", cartHandler.List)
			r.Post("/cart", cartHandler.Add)
			r.Put("/cart", cartHandler.Update)
			r.Delete("/cart", cartHandler.Delete)

			r.Get("/wishlist", wishlistHandler.List)
			r.Post("/wishlist", wishlistHandler.Toggle)
			r.Delete("/wishlist", wishlistHandler.Delete)

			r.Get("/orders", orderHandler.ListMine)
			r.Post("/orders", orderHandler.Checkout)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)
			r.Get("/profile/image", profileHandler.Image)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)

				r.Get("/menu", menuHandler.AdminList)
				r.Post("/menu", menuHandler.Create)
				r.Put("/menu/{id}", menuHandler.Update)
				r.Delete("/menu/{id}", menuHandler.Delete)

				r.Get("/orders", orderHandler.ListAll)
				r.Put("/orders/{id}", orderHandler.UpdateStatus)

				r.Get("/stats", orderHandler.Stats)

				r.Get("/users", accountHandler.List)
				r.Post("/users", accountHandler.Create)
				r.Put("/users/{id}/role", accountHandler.SetRole)
			})
		})
	})

	return r
}

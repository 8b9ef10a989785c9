package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omerfdemir/teklifix-backend/api/controllers"
	"github.com/omerfdemir/teklifix-backend/api/middleware"
	authsvc "github.com/omerfdemir/teklifix-backend/internal/auth"
	cartsvc "github.com/omerfdemir/teklifix-backend/internal/cart"
	"github.com/omerfdemir/teklifix-backend/internal/catalog"
	quotesvc "github.com/omerfdemir/teklifix-backend/internal/quotes"
	settingsvc "github.com/omerfdemir/teklifix-backend/internal/settings"
	"github.com/omerfdemir/teklifix-backend/pkg/auth/session"
	"github.com/omerfdemir/teklifix-backend/pkg/config"
	"github.com/omerfdemir/teklifix-backend/pkg/db"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	"github.com/omerfdemir/teklifix-backend/pkg/metrics"
	pkgredis "github.com/omerfdemir/teklifix-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router needs. Metrics may be nil when the
// registry is disabled (tests).
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *pkgredis.Client
	SessionManager sessionManager
	Metrics        *metrics.HTTPMetrics
	MetricsGath    prometheus.Gatherer

	AuthService     authsvc.Service
	CatalogService  catalog.Service
	CartService     cartsvc.Service
	QuotesService   quotesvc.Service
	ReviewService   quotesvc.ReviewService
	SettingsService settingsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	submitPolicy := middleware.NewAuthRateLimitPolicy(
		"quote_submit",
		cfg.QuoteLimit.SubmitWindow,
		cfg.QuoteLimit.SubmitIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.MetricsGath != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGath, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/admin/login", controllers.AdminLogin(deps.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.CustomerRegister(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.CustomerLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/settings", controllers.GetSettings(deps.SettingsService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.CatalogService, logg))
		})
		r.Get("/categories", controllers.ListCategories(deps.CatalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.CartService, logg))
				r.Post("/items", controllers.AddCartItem(deps.CartService, logg))
				r.Put("/items/{productId}", controllers.UpdateCartItem(deps.CartService, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.CartService, logg))
				r.Delete("/", controllers.ClearCart(deps.CartService, logg))
			})

			r.With(
				middleware.AuthRateLimit(submitPolicy, deps.Redis, logg),
				middleware.Idempotency(deps.Redis, logg),
			).Post("/quotes", controllers.SubmitQuote(deps.QuotesService, logg))
		})

		r.Route("/customer", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RequireRole("customer", logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Get("/ping", controllers.CustomerPing())
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.CustomerListQuotes(deps.QuotesService, logg))
				r.Get("/{quoteId}", controllers.CustomerGetQuote(deps.QuotesService, logg))
				r.Get("/{quoteId}/review", controllers.QuoteReview(deps.ReviewService, logg))
				r.Put("/{quoteId}/review/items/{productId}", controllers.QuoteReviewSetQuantity(deps.ReviewService, logg))
				r.Post("/{quoteId}/convert-to-order", controllers.QuoteConvert(deps.ReviewService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RequireRole("admin", logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Get("/ping", controllers.AdminPing())

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.AdminListQuotes(deps.QuotesService, logg))
				r.Get("/{quoteId}", controllers.AdminGetQuote(deps.QuotesService, logg))
				r.Put("/{quoteId}/status", controllers.AdminSetQuoteStatus(deps.QuotesService, logg))
				r.Put("/{quoteId}/pricing", controllers.AdminSetQuotePricing(deps.QuotesService, logg))
				r.Put("/{quoteId}/note", controllers.AdminSetQuoteNote(deps.QuotesService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(deps.CatalogService, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.CatalogService, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(deps.CatalogService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.CatalogService, logg))
			})
			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateCategory(deps.CatalogService, logg))
				r.Put("/{categoryId}", controllers.AdminUpdateCategory(deps.CatalogService, logg))
				r.Delete("/{categoryId}", controllers.AdminDeleteCategory(deps.CatalogService, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Put("/{key}", controllers.AdminSetSetting(deps.SettingsService, logg))
				r.Delete("/{key}", controllers.AdminDeleteSetting(deps.SettingsService, logg))
			})
		})
	})

	return r
}

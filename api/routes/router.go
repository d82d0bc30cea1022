package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ratehub/ratehub-backend/api/controllers"
	"github.com/ratehub/ratehub-backend/api/middleware"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/ratings"
	"github.com/ratehub/ratehub-backend/internal/stores"
	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/auth/session"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/metrics"
	"github.com/ratehub/ratehub-backend/pkg/redis"
)

// Deps carries everything the router needs to wire handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics
	Health         map[string]controllers.Pinger
	RedisClient    *redis.Client
	SessionChecker session.AccessSessionChecker

	AuthService   auth.Service
	UserService   users.Service
	StoreService  stores.Service
	RatingService ratings.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(d.HTTPMetrics),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Health))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, d.RedisClient, logg)).
			Post("/register", controllers.Register(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, d.RedisClient, logg)).
			Post("/login", controllers.Login(d.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(d.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.SessionChecker, logg))
			r.Post("/logout", controllers.Logout(d.AuthService, logg))
			r.Get("/profile", controllers.Profile(d.AuthService, logg))
			r.Put("/change-password", controllers.ChangePassword(d.AuthService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionChecker, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
			r.Get("/dashboard-stats", controllers.DashboardStats(d.UserService, logg))
			r.Post("/create", controllers.CreateUser(d.UserService, logg))
			r.Get("/all", controllers.ListUsers(d.UserService, logg))
			r.Get("/store-owners", controllers.StoreOwners(d.UserService, logg))
			r.Get("/details/{userID}", controllers.UserDetails(d.UserService, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/all", controllers.ListStores(d.StoreService, logg))
			r.Get("/details/{storeID}", controllers.StoreDetails(d.StoreService, logg))
			r.With(middleware.RequireRole(logg, enums.RoleStoreOwner)).
				Get("/owner-dashboard", controllers.OwnerDashboard(d.StoreService, logg))
			r.With(middleware.RequireRole(logg, enums.RoleAdmin)).
				Post("/create", controllers.CreateStore(d.StoreService, logg))
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleUser))
			r.Post("/submit", controllers.SubmitRating(d.RatingService, logg))
			r.Get("/user-rating/{storeID}", controllers.GetOwnRating(d.RatingService, logg))
			r.Delete("/{storeID}", controllers.DeleteRating(d.RatingService, logg))
		})
	})

	return r
}

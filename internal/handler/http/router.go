package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Katty020/Book-Review-Platform/internal/auth"
	"github.com/Katty020/Book-Review-Platform/internal/ratelimit"
	"github.com/Katty020/Book-Review-Platform/internal/service"
	"github.com/Katty020/Book-Review-Platform/pkg/health"
	"github.com/Katty020/Book-Review-Platform/pkg/middleware"
)

// RouterDeps bundles everything NewRouter needs to wire the HTTP surface.
type RouterDeps struct {
	Books         *service.BookService
	Reviews       *service.ReviewService
	Verifier      *auth.Verifier
	UserInfo      *auth.UserInfoClient
	Limiter       *ratelimit.FixedWindowLimiter
	HealthHandler *health.Handler
	CORS          middleware.CORSConfig
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all book review routes registered.
//
// Every catalog route requires a resolved session; the write routes are
// additionally rate limited per user.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("bookreview"))
	r.Use(auth.SessionMiddleware(deps.Verifier, deps.UserInfo))

	// Health check endpoints
	r.Get("/health/live", deps.HealthHandler.LivenessHandler())
	r.Get("/health/ready", deps.HealthHandler.ReadinessHandler())

	r.Handle("/metrics", promhttp.Handler())

	bookHandler := NewBookHandler(deps.Books, deps.Logger)
	reviewHandler := NewReviewHandler(deps.Reviews, deps.Logger)

	rateLimited := ratelimit.Middleware(deps.Limiter, deps.Logger)

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(auth.RequireSession)

		r.Get("/", bookHandler.ListBooks)
		r.Get("/filters", bookHandler.FilterOptions)
		r.Get("/{id}", bookHandler.GetBook)
		r.Get("/{id}/reviews", reviewHandler.ListReviews)
		r.Get("/{id}/reviews/me", reviewHandler.GetOwnReview)

		r.Group(func(r chi.Router) {
			r.Use(rateLimited)

			r.Post("/", bookHandler.CreateBook)
			r.Put("/{id}/reviews/me", reviewHandler.SubmitReview)
		})
	})

	return r
}

package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/eventory/internal/metrics"
)

type RouterDeps struct {
	Handler *Handler
	Metrics *metrics.Metrics

	// Limiter is optional; nil disables rate limiting.
	Limiter  RateLimiter
	RLLimit  int
	RLWindow time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Metrics == nil {
		panic("rest.NewRouter: nil metrics")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	r.Use(MetricsMiddleware(d.Metrics))
	if d.Limiter != nil {
		limit, window := d.RLLimit, d.RLWindow
		if limit <= 0 {
			limit = 100
		}
		if window <= 0 {
			window = time.Minute
		}
		r.Use(RateLimitMiddleware(d.Limiter, limit, window))
	}
	r.Use(SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	h := d.Handler

	// Private surface: the acting user id travels in the path.
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/requests", h.CreateRequest)
		r.Get("/requests", h.ListMyRequests)
		r.Patch("/requests/{requestID}/cancel", h.CancelRequest)

		r.Post("/events", h.CreateEvent)
		r.Get("/events", h.ListMyEvents)
		r.Get("/events/{eventID}", h.GetMyEvent)
		r.Patch("/events/{eventID}", h.UpdateMyEvent)
		r.Get("/events/{eventID}/requests", h.ListEventRequests)
		r.Patch("/events/{eventID}/requests", h.ModerateRequests)

		r.Post("/comments", h.CreateComment)
		r.Patch("/comments/{commentID}", h.UpdateComment)
		r.Delete("/comments/{commentID}", h.DeleteComment)
	})

	// Admin surface.
	r.Route("/admin", func(r chi.Router) {
		r.Post("/users", h.AdminCreateUser)
		r.Get("/users", h.AdminListUsers)
		r.Delete("/users/{userID}", h.AdminDeleteUser)

		r.Post("/categories", h.AdminCreateCategory)
		r.Patch("/categories/{categoryID}", h.AdminUpdateCategory)
		r.Delete("/categories/{categoryID}", h.AdminDeleteCategory)

		r.Get("/events", h.AdminListEvents)
		r.Patch("/events/{eventID}", h.AdminModerateEvent)

		r.Post("/compilations", h.AdminCreateCompilation)
		r.Patch("/compilations/{compID}", h.AdminUpdateCompilation)
		r.Delete("/compilations/{compID}", h.AdminDeleteCompilation)

		r.Delete("/comments/{commentID}", h.AdminDeleteComment)
	})

	// Public surface.
	r.Get("/events", h.PublicSearchEvents)
	r.Get("/events/{eventID}", h.PublicGetEvent)
	r.Get("/events/{eventID}/comments", h.PublicListComments)
	r.Get("/categories", h.PublicListCategories)
	r.Get("/categories/{categoryID}", h.PublicGetCategory)
	r.Get("/compilations", h.PublicListCompilations)
	r.Get("/compilations/{compID}", h.PublicGetCompilation)

	return r
}

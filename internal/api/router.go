package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onego-ai/onego/internal/database"
	mw "github.com/onego-ai/onego/internal/middleware"
	inats "github.com/onego-ai/onego/internal/nats"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Course handlers
	CreateCourse      http.HandlerFunc
	ListCourses       http.HandlerFunc
	GetCourse         http.HandlerFunc
	RegenerateQuizzes http.HandlerFunc
	CourseChat        http.HandlerFunc

	// Credit handlers
	GetCredits      http.HandlerFunc
	ListCreditUsage http.HandlerFunc

	// Extraction handlers
	ExtractDocument http.HandlerFunc
	ExtractWebsite  http.HandlerFunc

	// Activity log
	ListActivity http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	// GenerationRateLimiter wraps every route that spends credits.
	GenerationRateLimiter func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, natsClient *inats.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness only, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	generationLimit := cfg.GenerationRateLimiter
	if generationLimit == nil {
		generationLimit = func(next http.Handler) http.Handler { return next }
	}

	// API v1, every route authenticated
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Route("/courses", func(r chi.Router) {
			r.With(generationLimit).Post("/", h.CreateCourse)
			r.Get("/", h.ListCourses)

			r.Route("/{courseID}", func(r chi.Router) {
				r.Get("/", h.GetCourse)
				r.With(generationLimit).Post("/quizzes", h.RegenerateQuizzes)
				r.With(generationLimit).Post("/chat", h.CourseChat)
			})
		})

		r.Route("/credits", func(r chi.Router) {
			r.Get("/", h.GetCredits)
			r.Get("/usage", h.ListCreditUsage)
		})

		r.Route("/extractions", func(r chi.Router) {
			r.Use(generationLimit)
			r.Post("/document", h.ExtractDocument)
			r.Post("/website", h.ExtractWebsite)
		})

		r.Get("/activity", h.ListActivity)
	})

	return r
}

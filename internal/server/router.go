package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault-app/mindvault/internal/api"
	"github.com/mindvault-app/mindvault/internal/api/handlers"
	"github.com/mindvault-app/mindvault/internal/api/middleware"
	"github.com/mindvault-app/mindvault/internal/ratelimit"
	"github.com/mindvault-app/mindvault/internal/telemetry"
)

// Fixed-window limits per scope. Windows are all one minute.
const (
	rateLimitWindow = time.Minute

	createLimit    = 20
	updateLimit    = 30
	deleteLimit    = 30
	similarLimit   = 40
	queryLimit     = 20
	summarizeLimit = 20
	autoTagLimit   = 20
	publicLimit    = 10
)

type RouterConfig struct {
	KnowledgeHandler *handlers.KnowledgeHandler
	AIHandler        *handlers.AIHandler
	Limiter          *ratelimit.Limiter
	Metrics          *telemetry.Metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter()
	}
	limit := func(scope string, maxRequests int) func(http.Handler) http.Handler {
		return middleware.RateLimit(limiter, scope, maxRequests, rateLimitWindow)
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/knowledge", func(r chi.Router) {
		r.With(limit("knowledge:create", createLimit)).Post("/", cfg.KnowledgeHandler.Create)
		r.Get("/", cfg.KnowledgeHandler.List)
		r.Get("/{id}", cfg.KnowledgeHandler.Get)
		r.With(limit("knowledge:update", updateLimit)).Patch("/{id}", cfg.KnowledgeHandler.Update)
		r.With(limit("knowledge:delete", deleteLimit)).Delete("/{id}", cfg.KnowledgeHandler.Delete)
		r.With(limit("knowledge:similar", similarLimit)).Get("/{id}/similar", cfg.KnowledgeHandler.Similar)
	})

	r.Route("/ai", func(r chi.Router) {
		r.With(limit("ai:query", queryLimit)).Post("/query", cfg.AIHandler.Query)
		r.With(limit("ai:summarize", summarizeLimit)).Post("/summarize", cfg.AIHandler.Summarize)
		r.With(limit("ai:auto-tag", autoTagLimit)).Post("/auto-tag", cfg.AIHandler.AutoTag)
	})

	r.With(limit("public:brain-query", publicLimit)).Get("/public/brain/query", cfg.AIHandler.PublicQuery)

	return r
}

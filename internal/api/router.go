package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/voicepost/internal/api/handlers"
	"github.com/nikhilbhutani/voicepost/internal/api/middleware"
	"github.com/nikhilbhutani/voicepost/internal/auth"
	"github.com/nikhilbhutani/voicepost/internal/config"
)

// Services are the collaborators behind the HTTP handlers. Pages and Jobs
// are optional.
type Services struct {
	Users          auth.UserLookup
	Uploads        handlers.Uploader
	Transcriptions handlers.Transcriber
	Blogs          handlers.BlogGenerator
	Posts          handlers.PostReader
	Pages          handlers.PageCache
	Jobs           handlers.BlogEnqueuer
	Webhooks       handlers.WebhookService
	Usage          handlers.UsageReader
	Models         handlers.ModelLister
	Health         *handlers.HealthHandler
}

type Router struct {
	mux     *chi.Mux
	cfg     *config.Config
	svc     Services
	jwt     *auth.JWTMiddleware
	limiter *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, svc Services) *Router {
	if svc.Health == nil {
		svc.Health = handlers.NewHealthHandler()
	}
	return &Router{
		mux:     chi.NewRouter(),
		cfg:     cfg,
		svc:     svc,
		jwt:     auth.NewJWTMiddleware(cfg.Auth.JWTSecret, svc.Users),
		limiter: middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))
	r.Use(rt.limiter.Limit)

	// Health endpoints (no auth)
	r.Get("/healthz", rt.svc.Health.Healthz)
	r.Get("/readyz", rt.svc.Health.Readyz)

	postH := handlers.NewPostHandler(rt.svc.Blogs, rt.svc.Posts, rt.svc.Pages, rt.svc.Jobs)

	// Post pages, the redirect target of post creation.
	r.With(rt.jwt.Authenticate).Get("/posts/{id}", postH.Get)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		uploadH := handlers.NewUploadHandler(rt.svc.Uploads, rt.cfg.Upload.MaxBytes)
		r.Post("/uploads", uploadH.Upload)

		transcriptionH := handlers.NewTranscriptionHandler(rt.svc.Transcriptions)
		r.Post("/transcriptions", transcriptionH.Create)

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", postH.Create)
			r.Post("/async", postH.CreateAsync)
			r.Get("/", postH.List)
		})

		webhookH := handlers.NewWebhookHandler(rt.svc.Webhooks)
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", webhookH.Create)
			r.Get("/", webhookH.List)
			r.Delete("/{id}", webhookH.Delete)
		})

		usageH := handlers.NewUsageHandler(rt.svc.Usage)
		r.Get("/usage", usageH.Usage)

		llmH := handlers.NewLLMHandler(rt.svc.Models)
		r.Get("/llm/models", llmH.Models)
	})

	return r
}

// Close stops background work started by the router.
func (rt *Router) Close() {
	rt.limiter.Stop()
}

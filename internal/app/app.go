// Package app wires the services shared by the API server and the worker.
package app

import (
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicepost/internal/audit"
	"github.com/nikhilbhutani/voicepost/internal/blog"
	"github.com/nikhilbhutani/voicepost/internal/cache"
	"github.com/nikhilbhutani/voicepost/internal/config"
	"github.com/nikhilbhutani/voicepost/internal/database"
	"github.com/nikhilbhutani/voicepost/internal/llm"
	"github.com/nikhilbhutani/voicepost/internal/post"
	"github.com/nikhilbhutani/voicepost/internal/queue"
	"github.com/nikhilbhutani/voicepost/internal/storage"
	"github.com/nikhilbhutani/voicepost/internal/stt"
	"github.com/nikhilbhutani/voicepost/internal/transcription"
	"github.com/nikhilbhutani/voicepost/internal/upload"
	"github.com/nikhilbhutani/voicepost/internal/user"
	"github.com/nikhilbhutani/voicepost/internal/webhook"
)

type App struct {
	Users          *user.Repository
	Posts          *post.Repository
	Audit          *audit.Service
	Webhooks       *webhook.Service
	Gateway        llm.Gateway
	Blogs          *blog.Service
	Uploads        *upload.Service
	Transcriptions *transcription.Service

	// Cache and Jobs are nil when Redis is not available.
	Cache *cache.Cache
	Jobs  *queue.Client

	dispatcher *webhook.Dispatcher
}

// New builds every service from cfg. rdb may be nil.
func New(cfg *config.Config, db database.DBTX, rdb *redis.Client) *App {
	a := &App{
		Users:   user.NewRepository(db),
		Posts:   post.NewRepository(db),
		Audit:   audit.NewService(db),
		Gateway: llm.NewGateway(cfg.LLM),
	}

	a.dispatcher = webhook.NewDispatcher(db)
	a.Webhooks = webhook.NewService(db, a.dispatcher)

	var pages blog.PageRevalidator
	if rdb != nil {
		a.Cache = cache.NewCache(rdb, cfg.Cache.PageTTL)
		a.Jobs = queue.NewClient(cfg.Redis)
		pages = a.Cache
	}

	provider := cfg.Blog.Provider
	if provider == "" {
		provider = cfg.LLM.DefaultProvider
	}
	model := cfg.Blog.Model
	if model == "" {
		model = config.DefaultBlogModel(provider)
	}
	generator := blog.NewGenerator(a.Gateway, blog.GeneratorConfig{
		Provider:    provider,
		Model:       model,
		Temperature: cfg.Blog.Temperature,
		MaxTokens:   cfg.Blog.MaxTokens,
	}, a.Audit)
	a.Blogs = blog.NewService(a.Posts, generator, pages, a.Webhooks, cfg.Blog.HistorySize)

	store := storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	a.Uploads = upload.NewService(store, cfg.Storage.Bucket, cfg.Upload.MaxBytes)
	a.Transcriptions = transcription.NewService(
		transcription.NewStoredFetcher(a.Uploads, transcription.NewHTTPFetcher()),
		stt.New(cfg.STT),
	)

	return a
}

// Close flushes pending webhook deliveries and releases the queue client.
func (a *App) Close() {
	a.dispatcher.Close()
	if a.Jobs != nil {
		a.Jobs.Close()
	}
}

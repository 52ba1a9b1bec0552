package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/registry"
	"appraisal/internal/platform/ai"
	"appraisal/internal/platform/cache"
	"appraisal/internal/platform/config"
	"appraisal/internal/platform/db"
	assessmentshandler "appraisal/internal/transport/http/handlers/assessments"
	authhandler "appraisal/internal/transport/http/handlers/auth"
	reviewhandler "appraisal/internal/transport/http/handlers/review"
	rosterhandler "appraisal/internal/transport/http/handlers/roster"
	"appraisal/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	Registry *registry.Registry
	Router   http.Handler

	pool     *pgxpool.Pool
	snapshot *cache.Snapshot
}

type options struct {
	localCache  registry.LocalCache
	remoteStore registry.RemoteStore
	summarizer  ai.Summarizer
}

type Option func(*options)

// WithLocalCache overrides the SQLite snapshot cache, mainly for tests.
func WithLocalCache(c registry.LocalCache) Option {
	return func(o *options) { o.localCache = c }
}

// WithRemoteStore overrides the Postgres remote store, mainly for tests.
func WithRemoteStore(r registry.RemoteStore) Option {
	return func(o *options) { o.remoteStore = r }
}

// WithSummarizer overrides the Gemini summarizer.
func WithSummarizer(s ai.Summarizer) Option {
	return func(o *options) { o.summarizer = s }
}

// New assembles the application: stores, registry, authentication gate and
// router. The remote store is optional; without DATABASE_URL the registry
// runs off the local cache alone.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg}

	localCache := o.localCache
	if localCache == nil && cfg.CachePath != "" {
		snap, err := cache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open local cache: %w", err)
		}
		app.snapshot = snap
		localCache = snap
	}

	remoteStore := o.remoteStore
	if remoteStore == nil && cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.pool = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, "migrations"); err != nil {
				app.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		remoteStore = db.NewStore(pool)
	}

	app.Registry = registry.New(localCache, remoteStore)
	if err := app.Registry.Load(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("registry load: %w", err)
	}

	summarizer := o.summarizer
	if summarizer == nil && cfg.GeminiAPIKey != "" {
		s, err := ai.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("ai summarizer unavailable", "err", err)
		} else {
			summarizer = s
		}
	}

	gate := auth.NewRegistryAuthenticator(app.Registry, cfg.SuperAdminEmail, cfg.MasterPassword, cfg.DefaultManagerPassword)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if app.pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(gate, cfg.JWTSecret, cfg.SessionTTL)
		r.Post("/auth/staff-login", authHandler.HandleStaffLogin)
		r.Post("/auth/assessor-login", authHandler.HandleAssessorLogin)

		assessmentshandler.NewHandler(app.Registry).RegisterRoutes(r)
		reviewhandler.NewHandler(app.Registry, summarizer).RegisterRoutes(r)
		rosterhandler.NewHandler(app.Registry).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.snapshot != nil {
		_ = a.snapshot.Close()
	}
}

// Run assembles the app from the environment and serves until failure.
func Run() {
	cfg := config.Load()
	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("appraisal server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}

// Package http serves the ledger UI: the full page, htmx partials for the
// entry table, form and delete endpoints, and a small JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/middleware/ratelimit"
	"kakeibo/internal/middleware/security"
	"kakeibo/internal/middleware/trace"
	"kakeibo/internal/services"
	appweb "kakeibo/web"
)

// Ledger is the part of services.LedgerService the handlers use.
type Ledger interface {
	Submit(ctx context.Context, d core.Draft) (core.Entry, error)
	PrepareDelete(id int64) (services.DeleteRequest, bool)
	ResolveDelete(ctx context.Context, req services.DeleteRequest, decision services.Decision) (int, error)
	Snapshot() services.Snapshot
}

// Options configures the server's middleware.
type Options struct {
	Logger             *log.Logger
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    Ledger
	logger    *log.Logger

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	trace       *trace.Middleware

	started      time.Time
	entriesAdded int64
	statsMu      sync.Mutex
	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:      ledger,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    security.NewDetector(),
		started:     time.Now(),
	}
	s.trace = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(log.ComponentTemplate).Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/ledger", s.handleLedgerPartial)
	mux.HandleFunc("POST /entries", s.handleCreateEntry)
	mux.HandleFunc("POST /entries/{id}/delete", s.handlePrepareDelete)
	mux.HandleFunc("POST /entries/{id}/delete/confirm", s.handleResolveDelete)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// The API answers preflight requests itself, so it is not method-bound.
	corsOpts := cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		// same-origin only
		corsOpts.AllowOriginFunc = func(string) bool { return false }
	}
	api := cors.New(corsOpts)
	mux.Handle("/api/entries", api.Handler(http.HandlerFunc(s.handleAPIEntries)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited, http.MethodPost)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.trace.Middleware(s.detector.Middleware(headers.Middleware(limited(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification("リクエストが多すぎます。しばらくしてから再度お試しください。").
		Write(w)
}

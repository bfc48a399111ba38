package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// defaultRequestTimeout bounds a request when RouterConfig leaves it unset.
// On default settings an analysis needs at most 16s (an 8s fetch followed by
// the 8s TLS and AI steps running in parallel); the rest is headroom for the
// store and the Workers AI client's own 10s request limit
const defaultRequestTimeout = 45 * time.Second

// RouterConfig holds the dependencies of the HTTP surface
type RouterConfig struct {
	// Analyzer runs analyses and serves history; requests answer 503 without it
	Analyzer Analyzer
	// Classifier serves quick verdicts; optional
	Classifier Classifier
	// MaxBodySize caps request bodies in bytes, zero disables the cap
	MaxBodySize int64
	// RequestTimeout bounds each request
	RequestTimeout time.Duration
	// UserHeader names the trusted identity header
	UserHeader string
}

// NewRouter creates a new chi router with all endpoints and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	h := &Handler{
		analyzer:    cfg.Analyzer,
		classifier:  cfg.Classifier,
		maxBodySize: cfg.MaxBodySize,
		userHeader:  cfg.UserHeader,
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	allowHeaders := "Accept, Authorization, Content-Type, X-CSRF-Token"
	if cfg.UserHeader != "" {
		allowHeaders += ", " + cfg.UserHeader
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Heartbeat("/ping"))

	// CORS for the browser front end
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", allowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/analyze", h.handleAnalyze)
		r.Get("/history", h.handleHistory)
		r.Post("/check", h.handleCheck)
	})

	r.Post("/analyze", h.handleAnalyze)

	return r
}

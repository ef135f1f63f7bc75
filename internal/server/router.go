package server

import (
	"net/http"
	"strings"

	"github.com/ashkam58/mathflix/internal/server/handlers"
	"github.com/ashkam58/mathflix/internal/server/middleware"
	"github.com/ashkam58/mathflix/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(handlers.Deps{
		App:          s.app,
		Client:       s.client,
		Cache:        s.cache,
		Broker:       s.broker,
		WSHub:        s.wsHub,
		Metrics:      s.metrics,
		Upgrader:     s.upgrader,
		Logger:       s.logger,
		CatalogSize:  &s.games,
		MaxBodyBytes: s.config.MaxBodyBytes,
		StartTime:    s.startTime,
	})

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Games
	mux.HandleFunc(prefix+"/games", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleListGames(w, r)
		case http.MethodPost:
			h.HandleCreateGame(w, r)
		default:
			response.MethodNotAllowed(w, r.Method)
		}
	})

	mux.HandleFunc(prefix+"/games/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, prefix+"/games/"))

		switch {
		case len(parts) == 1:
			switch r.Method {
			case http.MethodGet:
				h.HandleGetGame(w, r, parts[0])
			case http.MethodDelete:
				h.HandleDeleteGame(w, r, parts[0])
			default:
				response.MethodNotAllowed(w, r.Method)
			}
		case len(parts) == 2 && parts[1] == "views":
			if r.Method != http.MethodPost {
				response.MethodNotAllowed(w, r.Method)
				return
			}
			h.HandleIncrementViews(w, r, parts[0])
		default:
			response.NotFound(w, "Not found", r.URL.Path)
		}
	})

	// Admin endpoints
	mux.HandleFunc(prefix+"/reconcile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleReconcile(w, r)
	})

	mux.HandleFunc(prefix+"/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleStats(w, r)
	})

	// Realtime
	mux.HandleFunc(prefix+"/updates/ws", h.HandleWebSocket)

	if s.config.MetricsEnabled {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.limiter != nil {
		handler = middleware.RateLimit(s.limiter)(handler)
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		authConfig.HeaderName = cfg.AuthHeader
		authConfig.ProtectReads = cfg.ProtectReads
		authConfig.PublicPaths = []string{"/health", "/metrics", cfg.PathPrefix + "/health", cfg.PathPrefix + "/ready"}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// always on; Recovery is outermost
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logger(s.logger),
		middleware.Metrics(s.metrics),
	)(handler)
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Package server provides the HTTP server for the mathflix API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/server/cache"
	"github.com/ashkam58/mathflix/internal/server/events"
	"github.com/ashkam58/mathflix/internal/server/events/adapters"
	"github.com/ashkam58/mathflix/internal/server/metrics"
	"github.com/ashkam58/mathflix/internal/server/middleware"
	ws "github.com/ashkam58/mathflix/internal/server/websocket"
	"github.com/ashkam58/mathflix/pkg/catalogs"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app      application.Application
	client   mathflix.Client
	cache    *cache.Cache
	broker   *events.Broker
	wsHub    *ws.Hub
	metrics  *metrics.Metrics
	limiter  *middleware.RateLimiter
	upgrader websocket.Upgrader
	logger   *zerolog.Logger
	config   Config

	games atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// New creates a new server instance with the given configuration.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = DefaultConfig().AuthHeader
	}
	if cfg.AuthEnabled && cfg.APIKey == "" {
		return nil, fmt.Errorf("authentication enabled without an API key")
	}

	client, err := app.Client()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:    app,
		client: client,
		cache:  cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker: events.NewBroker(logger),
		wsHub:  ws.NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}
	s.metrics = metrics.New(
		func() float64 { return float64(s.wsHub.ClientCount()) },
		func() float64 { return float64(s.games.Load()) },
	)

	s.broker.Subscribe(adapters.NewWebSocketSubscriber(s.wsHub))
	s.broker.Subscribe(events.Func(func(e events.Event) {
		s.metrics.ObserveEvent(string(e.Type))
	}))
	s.connectHooks()

	logger.Debug().Msg("Server instance created")
	return s, nil
}

// connectHooks invalidates the response cache and publishes an event for
// every catalog change. Hooks run inside the client's critical section, so
// they must not call back into the client.
func (s *Server) connectHooks() {
	s.client.OnRecordAdded(func(r catalogs.Record) {
		s.cache.Clear()
		s.broker.Publish(events.GameAdded, map[string]any{"game": r})
	})

	s.client.OnRecordUpdated(func(old, updated catalogs.Record) {
		s.cache.Clear()
		s.broker.Publish(events.GameUpdated, map[string]any{
			"old_game": old,
			"new_game": updated,
		})
	})

	s.client.OnRecordRemoved(func(r catalogs.Record) {
		s.cache.Clear()
		s.broker.Publish(events.GameRemoved, map[string]any{"game": r})
	})

	s.logger.Debug().Msg("Catalog hooks connected to event broker")
}

// Start starts background services (broker, WebSocket hub, rate limiter
// sweeper).
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	if s.limiter != nil {
		go s.limiter.Run(s.ctx.Done())
	}
	s.logger.Debug().Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server for the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown stops background services.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *ws.Hub {
	return s.wsHub
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}

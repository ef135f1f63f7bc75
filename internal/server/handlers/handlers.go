// Package handlers provides HTTP request handlers for the mathflix API.
package handlers

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/cmd/application"
	"github.com/ashkam58/mathflix/internal/server/cache"
	"github.com/ashkam58/mathflix/internal/server/events"
	"github.com/ashkam58/mathflix/internal/server/metrics"
	ws "github.com/ashkam58/mathflix/internal/server/websocket"
)

// Deps are the collaborators every handler shares.
type Deps struct {
	App      application.Application
	Client   mathflix.Client
	Cache    *cache.Cache
	Broker   *events.Broker
	WSHub    *ws.Hub
	Metrics  *metrics.Metrics
	Upgrader websocket.Upgrader
	Logger   *zerolog.Logger

	// CatalogSize is updated with the size of every merged list served.
	CatalogSize *atomic.Int64

	MaxBodyBytes int64
	StartTime    time.Time
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app          application.Application
	client       mathflix.Client
	cache        *cache.Cache
	broker       *events.Broker
	wsHub        *ws.Hub
	metrics      *metrics.Metrics
	upgrader     websocket.Upgrader
	logger       *zerolog.Logger
	catalogSize  *atomic.Int64
	maxBodyBytes int64
	startTime    time.Time
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	h := &Handlers{
		app:          d.App,
		client:       d.Client,
		cache:        d.Cache,
		broker:       d.Broker,
		wsHub:        d.WSHub,
		metrics:      d.Metrics,
		upgrader:     d.Upgrader,
		logger:       d.Logger,
		catalogSize:  d.CatalogSize,
		maxBodyBytes: d.MaxBodyBytes,
		startTime:    d.StartTime,
	}
	if h.catalogSize == nil {
		h.catalogSize = new(atomic.Int64)
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = 1 << 20
	}
	if h.startTime.IsZero() {
		h.startTime = time.Now()
	}
	return h
}

// Package gateway wires the configured routing table, cache engine,
// backend registry and the full middleware pipeline into one
// http.Handler.
package gateway

import (
	"context"
	"net/http"

	"github.com/idum-proxy/idum-proxy/backend"
	"github.com/idum-proxy/idum-proxy/cache"
	"github.com/idum-proxy/idum-proxy/config"
	"github.com/idum-proxy/idum-proxy/middleware"
	"github.com/idum-proxy/idum-proxy/routing"
)

// Gateway owns every long-lived component the server needs: the compiled
// routing table, the cache engine (which runs its own disk-cleanup loop)
// and the assembled request handler.
type Gateway struct {
	Config  *config.Config
	Table   *routing.Table
	Cache   *cache.Engine
	Metrics *Metrics
	Handler http.Handler
}

// New builds a Gateway from a loaded, validated Config. The middleware
// chain is assembled outermost-first, matching the order middleware/doc.go
// documents: request id, metrics, access log, CORS, compression, response
// transform, resource filter, IP filter, bot filter, cache, circuit
// breaker, content-length rewrite, then the terminal router+dispatcher.
func New(cfg *config.Config) *Gateway {
	table := routing.NewTable(cfg)
	cacheEngine := cache.NewEngine(globalCacheConfig(cfg))
	registry := backend.NewRegistry(table, cfg.Version)
	metrics := NewMetrics(cacheEngine)

	breaker := middleware.NewCircuitBreaker(globalCircuitBreakerConfig(cfg), table)
	breaker.OnOpen = metrics.BreakerOpen

	var handler http.Handler = registry

	handler = middleware.NewContentLength().Wrap(handler)
	handler = breaker.Wrap(handler)
	handler = middleware.NewCache(cacheEngine).Wrap(handler)
	handler = middleware.NewBotFilter(globalBotFilterConfig(cfg)).Wrap(handler)
	handler = middleware.NewIPFilter(globalIPFilterConfig(cfg)).Wrap(handler)
	handler = middleware.NewResourceFilter(globalResourceFilterConfig(cfg)).Wrap(handler)
	handler = middleware.NewResponseTransform(table).Wrap(handler)
	handler = middleware.NewCompression(globalCompressionConfig(cfg), table).Wrap(handler)
	handler = middleware.NewCORS(table).Wrap(handler)
	handler = middleware.NewAccessLog(table).Wrap(handler)
	handler = metrics.Wrap(handler)
	handler = middleware.NewRequestID().Wrap(handler)

	registry.Reenter = handler.ServeHTTP

	return &Gateway{Config: cfg, Table: table, Cache: cacheEngine, Metrics: metrics, Handler: handler}
}

// Start launches the cache engine's background disk-cleanup loop. Callers
// should invoke this once before serving traffic and cancel ctx on shutdown.
func (g *Gateway) Start(ctx context.Context) {
	g.Cache.Start(ctx)
}

func globalCacheConfig(cfg *config.Config) *config.CacheMiddleware {
	if cfg.Middlewares == nil || cfg.Middlewares.Performance == nil {
		return nil
	}
	return cfg.Middlewares.Performance.Cache
}

func globalCircuitBreakerConfig(cfg *config.Config) *config.CircuitBreakerMiddleware {
	if cfg.Middlewares == nil || cfg.Middlewares.Performance == nil {
		return nil
	}
	return cfg.Middlewares.Performance.CircuitBreaking
}

func globalCompressionConfig(cfg *config.Config) *config.CompressionMiddleware {
	if cfg.Middlewares == nil || cfg.Middlewares.Performance == nil {
		return nil
	}
	return cfg.Middlewares.Performance.Compression
}

func globalResourceFilterConfig(cfg *config.Config) *config.ResourceFilterMiddleware {
	if cfg.Middlewares == nil || cfg.Middlewares.Performance == nil {
		return nil
	}
	return cfg.Middlewares.Performance.ResourceFilter
}

func globalIPFilterConfig(cfg *config.Config) *config.IPFilterMiddleware {
	if cfg.Middlewares == nil || cfg.Middlewares.Security == nil {
		return nil
	}
	return cfg.Middlewares.Security.IPFilter
}

func globalBotFilterConfig(cfg *config.Config) *config.BotFilterMiddleware {
	if cfg.Middlewares == nil || cfg.Middlewares.Security == nil {
		return nil
	}
	return cfg.Middlewares.Security.BotFilter
}

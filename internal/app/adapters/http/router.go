package http

import (
	"context"
	"errors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"navcron/internal/app/adapters/audit"
	"navcron/internal/app/adapters/http/handlers"
	"navcron/internal/app/adapters/http/middlewares"
	"navcron/internal/app/infrastructure/config"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"net/http"
	"time"
)

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log     logger.Logger
	manager *config.Manager
}

// NewRouter builds the diagnostics API. Admin routes (pprof, metrics, log
// level) exist only when an auth token is configured; the same token then
// guards the UI bridge.
func NewRouter(log logger.Logger, manager *config.Manager, cron ports.CronPort, auditor *audit.Auditor, bridge http.Handler) *Router {
	r := &Router{
		router:      gin.New(),
		handlers:    handlers.New(log, manager, cron, auditor, bridge),
		middlewares: middlewares.New(),
		log:         log,
		manager:     manager,
	}
	r.router.Use(gin.Recovery())

	cfg := manager.Get()

	if cfg.App.AuthToken != "" {
		accounts := gin.Accounts{"admin": cfg.App.AuthToken}

		pprofGroup := r.router.Group("/", gin.BasicAuth(accounts))
		pprof.Register(pprofGroup)

		r.router.GET("/metrics", gin.BasicAuth(accounts), gin.WrapH(promhttp.Handler()))
		r.router.PUT("/config/log_level", gin.BasicAuth(accounts), r.handlers.LogLevelHandler)
	}

	r.router.GET("/", r.handlers.IndexHandler)
	r.router.GET("/timers", r.handlers.TimersHandler)
	r.router.GET("/audit", r.handlers.AuditHandler)

	var bridgeChain []gin.HandlerFunc
	if cfg.Bridge.LocalOnly {
		bridgeChain = append(bridgeChain, r.middlewares.LocalOnly())
	}
	if cfg.App.AuthToken != "" {
		bridgeChain = append(bridgeChain, r.middlewares.RuntimeToken(cfg.App.AuthToken))
	}
	r.router.GET("/bridge", append(bridgeChain, r.handlers.BridgeHandler)...)

	return r
}

func (r *Router) Handler() http.Handler {
	return r.router
}

// Run serves until ctx is done.
func (r *Router) Run(ctx context.Context) error {
	srv := r.newServer(r.manager.Get().App.HTTPAddr, r.router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (r *Router) newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}

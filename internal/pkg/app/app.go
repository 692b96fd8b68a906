package app

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"navcron/internal/app/adapters/audit"
	"navcron/internal/app/adapters/cron"
	router "navcron/internal/app/adapters/http"
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/infrastructure/bridge"
	"navcron/internal/app/infrastructure/config"
	"navcron/internal/app/infrastructure/mainloop"
	"navcron/internal/app/ports"
	"navcron/pkg/logger"
	"net/http"
	"sync"
)

type App struct {
	Log      logger.Logger
	Settings *config.Manager
	Config   config.Config
	Cron     ports.CronPort
	Auditor  *audit.Auditor
	Loop     *mainloop.Loop
	Bridge   *bridge.Hub
	Router   *router.Router
}

// New is the composition root. It binds the registry to the toolkit named in
// the config; every other module gets the registry from here.
func New(configPath string) (*App, error) {
	manager, err := config.New(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	log := logger.New(logger.Options{File: cfg.App.LogFile, Level: cfg.App.LogLevel})
	if cfg.App.GinMode != "" {
		gin.SetMode(cfg.App.GinMode)
	}

	return Build(log, manager), nil
}

// Build assembles the application from an already loaded config.
func Build(log logger.Logger, manager *config.Manager) *App {
	cfg := manager.Get()
	a := &App{Log: log, Settings: manager, Config: cfg}

	var observer timer.Observer
	if cfg.Audit.Enabled {
		a.Auditor = audit.New(logger.NewTagged(log, "component", "audit"), cfg.Audit)
		observer = a.Auditor
	}

	// Both native primitives come from the same in-process loop; only the one
	// matching the toolkit is used. The bridge is created for every toolkit so
	// the facade decides alone what is supported.
	a.Loop = mainloop.New(logger.NewTagged(log, "component", "mainloop"))
	a.Bridge = bridge.New(logger.NewTagged(log, "component", "bridge"), cfg.Bridge)

	a.Cron = cron.New(cfg.App.Toolkit, log, cron.Backends{
		Sources: a.Loop,
		Timers:  a.Loop,
		Bridge:  a.Bridge,
	}, observer)

	var bridgeHandler http.Handler
	if trigger, ok := a.Cron.(ports.TriggerPort); ok {
		a.Bridge.OnTrigger(trigger.TimerTriggered)
		a.Bridge.OnAttach(trigger.Resync)
		bridgeHandler = a.Bridge
	}

	if a.Auditor != nil {
		a.Cron.AddTimeout(a.Auditor.Tick, cfg.Audit.ReportInterval, "audit", "power budget report")
	}

	a.Router = router.NewRouter(log, manager, a.Cron, a.Auditor, bridgeHandler)
	return a
}

// Run drives the main loop and the diagnostics server until ctx is done or
// one of them fails.
func (a *App) Run(ctx context.Context) error {
	if err := prometheus.Register(metrics.CallbackDuration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.Loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errs <- fmt.Errorf("main loop: %w", err)
		}
		cancel()
	}()

	if a.Config.App.HTTPAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Router.Run(ctx); err != nil {
				errs <- fmt.Errorf("http: %w", err)
			}
			cancel()
		}()
	}

	a.Log.Info("navcron started", "backend", a.Cron.Backend(), "addr", a.Config.App.HTTPAddr)
	wg.Wait()
	close(errs)

	return <-errs
}

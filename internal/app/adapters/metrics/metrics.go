package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backend - which native loop the registry is bound to.
	Backend = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cron_backend_info",
			Help: "Always 1, labelled with the active scheduling backend",
		}, []string{"backend"},
	)

	// ActiveTimers - registered timeouts per backend.
	ActiveTimers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cron_active_timers",
			Help: "Number of timeouts currently registered",
		}, []string{"backend"},
	)

	// IdleCallbacks - idle callbacks submitted per backend.
	IdleCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_idle_callbacks_total",
			Help: "Total number of idle callbacks submitted",
		}, []string{"backend"},
	)

	// TimerFires - completed fires per registering caller.
	TimerFires = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_timer_fires_total",
			Help: "Total number of timer fires per caller",
		}, []string{"caller"},
	)

	// SelfCancelled - timers that stopped themselves from their callback.
	SelfCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_timer_self_cancelled_total",
			Help: "Total number of timers removed because their callback returned stop",
		}, []string{"caller"},
	)

	// OrphanFires - fires delivered for handles no longer registered.
	OrphanFires = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cron_orphan_fires_total",
		Help: "Total number of fires for unknown timer handles",
	})

	// UnknownHandles - remove/modify called with a handle that is not registered.
	UnknownHandles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_unknown_handle_total",
			Help: "Total number of remove or modify calls with an unknown handle",
		}, []string{"op"},
	)

	// BudgetViolations - fires above the caller's power budget.
	BudgetViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_budget_violations_total",
			Help: "Total number of fires exceeding the per-caller fire budget",
		}, []string{"caller"},
	)

	// CallbackDuration - time spent inside timer callbacks.
	CallbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cron_callback_duration_milliseconds",
			Help:    "Time spent running timer callbacks",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 20),
		},
	)

	// BridgeMessages - messages sent to and received from the UI runtime.
	BridgeMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_bridge_messages_total",
			Help: "Total number of bridge protocol messages by direction and type",
		}, []string{"direction", "type"},
	)
)

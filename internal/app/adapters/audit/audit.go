// Package audit tracks how much work every registering caller schedules, so
// modules that wake the device too often can be found on battery-powered
// hardware.
package audit

import (
	"github.com/maypok86/otter/v2"
	"github.com/shirou/gopsutil/cpu"
	"golang.org/x/time/rate"
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/infrastructure/config"
	"navcron/pkg/logger"
	"sort"
	"sync"
	"time"
)

// CallerReport summarises one caller's fires since startup.
type CallerReport struct {
	Caller        string        `json:"caller"`
	Fires         uint64        `json:"fires"`
	SelfCancelled uint64        `json:"self_cancelled"`
	Busy          time.Duration `json:"busy"`
	Violations    uint64        `json:"violations"`
}

type Report struct {
	At         time.Time      `json:"at"`
	CPUPercent float64        `json:"cpu_percent"`
	Orphans    uint64         `json:"orphan_fires"`
	Unknown    uint64         `json:"unknown_handles"`
	Callers    []CallerReport `json:"callers"`
}

type callerStats struct {
	fires         uint64
	selfCancelled uint64
	busy          time.Duration
	violations    uint64
}

// Auditor implements timer.Observer.
type Auditor struct {
	log   logger.Logger
	limit rate.Limit
	burst int

	// Limiters of callers that stopped firing expire, so short-lived callers
	// do not accumulate.
	limiters *otter.Cache[string, *rate.Limiter]

	mu      sync.Mutex
	stats   map[string]*callerStats
	flagged map[string]struct{}
	orphans uint64
	unknown uint64

	cpuPercent func() (float64, error)
	now        func() time.Time
}

func New(log logger.Logger, cfg config.Audit) *Auditor {
	return &Auditor{
		log:   log,
		limit: rate.Limit(float64(cfg.FiresPerMinute) / 60),
		burst: cfg.Burst,
		limiters: otter.Must(&otter.Options[string, *rate.Limiter]{
			MaximumSize:      cfg.MaxCallers,
			ExpiryCalculator: otter.ExpiryAccessing[string, *rate.Limiter](cfg.IdleExpiry),
		}),
		stats:      make(map[string]*callerStats),
		flagged:    make(map[string]struct{}),
		cpuPercent: sampleCPU,
		now:        time.Now,
	}
}

func (a *Auditor) TimerFired(info timer.Info, took time.Duration, res timer.Result) {
	metrics.TimerFires.WithLabelValues(info.Caller).Inc()
	metrics.CallbackDuration.Observe(float64(took) / float64(time.Millisecond))
	if res == timer.Stop {
		metrics.SelfCancelled.WithLabelValues(info.Caller).Inc()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.stats[info.Caller]
	if !ok {
		st = &callerStats{}
		a.stats[info.Caller] = st
	}
	st.fires++
	st.busy += took
	if res == timer.Stop {
		st.selfCancelled++
	}

	if a.limiterLocked(info.Caller).AllowN(a.now(), 1) {
		return
	}

	st.violations++
	metrics.BudgetViolations.WithLabelValues(info.Caller).Inc()
	if _, warned := a.flagged[info.Caller]; !warned {
		a.flagged[info.Caller] = struct{}{}
		a.log.Warn("caller exceeds its timer fire budget",
			"caller", info.Caller, "id", uint64(info.Handle), "description", info.Description, "interval", info.Interval)
	}
}

func (a *Auditor) OrphanFire(timer.Handle) {
	metrics.OrphanFires.Inc()

	a.mu.Lock()
	a.orphans++
	a.mu.Unlock()
}

func (a *Auditor) UnknownHandle(op string, _ timer.Handle) {
	metrics.UnknownHandles.WithLabelValues(op).Inc()

	a.mu.Lock()
	a.unknown++
	a.mu.Unlock()
}

// Report returns per-caller statistics, busiest caller first.
func (a *Auditor) Report() Report {
	a.mu.Lock()
	r := Report{
		At:      a.now(),
		Orphans: a.orphans,
		Unknown: a.unknown,
		Callers: make([]CallerReport, 0, len(a.stats)),
	}
	for caller, st := range a.stats {
		r.Callers = append(r.Callers, CallerReport{
			Caller:        caller,
			Fires:         st.fires,
			SelfCancelled: st.selfCancelled,
			Busy:          st.busy,
			Violations:    st.violations,
		})
	}
	a.mu.Unlock()

	sort.Slice(r.Callers, func(i, j int) bool {
		if r.Callers[i].Fires == r.Callers[j].Fires {
			return r.Callers[i].Caller < r.Callers[j].Caller
		}
		return r.Callers[i].Fires > r.Callers[j].Fires
	})

	if p, err := a.cpuPercent(); err == nil {
		r.CPUPercent = p
	}
	return r
}

// Tick is registered as a periodic timeout. It logs the report and re-arms
// the once-per-period budget warnings.
func (a *Auditor) Tick(...any) timer.Result {
	r := a.Report()

	top := r.Callers
	if len(top) > 5 {
		top = top[:5]
	}
	for _, c := range top {
		a.log.Debug("timer budget", "caller", c.Caller, "fires", c.Fires, "busy", c.Busy, "violations", c.Violations)
	}
	a.log.Info("timer audit", "callers", len(r.Callers), "orphans", r.Orphans, "unknown", r.Unknown, "cpu", r.CPUPercent)

	a.mu.Lock()
	clear(a.flagged)
	a.mu.Unlock()
	return timer.Continue
}

func (a *Auditor) limiterLocked(caller string) *rate.Limiter {
	if l, ok := a.limiters.GetIfPresent(caller); ok {
		return l
	}

	l := rate.NewLimiter(a.limit, a.burst)
	a.limiters.Set(caller, l)
	return l
}

func sampleCPU() (float64, error) {
	percent, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percent) == 0 {
		return 0, nil
	}
	return percent[0], nil
}

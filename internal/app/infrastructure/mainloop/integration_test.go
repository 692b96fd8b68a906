package mainloop_test

import (
	"context"
	"github.com/stretchr/testify/assert"
	"navcron/internal/app/adapters/cron"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/infrastructure/mainloop"
	"navcron/pkg/logger"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistryOverLoop(t *testing.T) {
	for _, toolkit := range []string{"GTK", "QML"} {
		t.Run(toolkit, func(t *testing.T) {
			log := logger.NewMemory()
			loop := mainloop.New(log)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = loop.Run(ctx) }()

			c := cron.New(toolkit, log, cron.Backends{Sources: loop, Timers: loop}, nil)

			var fires atomic.Int32
			h := c.AddTimeout(func(args ...any) timer.Result {
				if fires.Add(1) == int32(args[0].(int)) {
					return timer.Stop
				}
				return timer.Continue
			}, 5*time.Millisecond, "test", "self cancel", 3)

			var idle atomic.Bool
			c.AddIdle(func(...any) timer.Result { idle.Store(true); return timer.Continue })

			assert.Eventually(t, func() bool { return len(c.Timers()) == 0 }, time.Second, time.Millisecond)
			assert.Eventually(t, idle.Load, time.Second, time.Millisecond)
			time.Sleep(30 * time.Millisecond)

			assert.Equal(t, int32(3), fires.Load())
			assert.Equal(t, 0, log.Count("error", "unknown timer triggered"))

			c.RemoveTimeout(h)
			assert.Equal(t, 1, log.Count("error", "can't remove timeout"))
			assert.Eventually(t, func() bool { return loop.Pending() == 0 }, time.Second, time.Millisecond)
		})
	}
}

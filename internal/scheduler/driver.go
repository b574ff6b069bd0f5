package scheduler

import (
	"context"
	"sync"
	"time"
)

// Driver calls a tick function on a fixed wall-clock interval, for hosts that do
// not own a simulation tick of their own. It is safe to stop via its context or
// the Stop method.
type Driver struct {
	interval time.Duration
	clock    Clock
	tick     func(now time.Time)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewDriver(interval time.Duration, clock Clock, tick func(now time.Time)) *Driver {
	if interval < minPeriod {
		interval = minPeriod
	}
	return &Driver{
		interval: interval,
		clock:    clock,
		tick:     tick,
		done:     make(chan struct{}),
	}
}

// Start begins the background loop. Calling Start twice is a no-op.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	ctx, d.cancel = context.WithCancel(ctx)
	go d.loop(ctx)
}

// Stop signals the loop to exit and waits for it. It is safe to call more than
// once, and before Start.
func (d *Driver) Stop() {
	d.mu.Lock()
	started := d.started
	cancel := d.cancel
	d.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-d.done
}

func (d *Driver) loop(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(d.clock.Now())
		}
	}
}

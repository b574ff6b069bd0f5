// Package scheduler runs delayed and repeating tasks cooperatively. Nothing runs
// until the owner calls Tick, and every task runs on the goroutine that ticks, so
// a task body never races with the simulation loop that drives it.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const minPeriod = time.Millisecond

type Clock interface {
	Now() time.Time
}

// Task is the body of a repeating task. Returning false ends it.
type Task func(now time.Time) bool

type Handle struct {
	id   uint64
	s    *Scheduler
	done atomic.Bool
}

// Cancel stops the task. It reports true only for the call that actually
// cancelled it; cancelling a finished or already cancelled task is a no-op.
func (h *Handle) Cancel() bool {
	if h == nil {
		return false
	}
	if !h.done.CompareAndSwap(false, true) {
		return false
	}
	h.s.remove(h.id)
	return true
}

func (h *Handle) Done() bool {
	return h == nil || h.done.Load()
}

type entry struct {
	handle *Handle
	due    time.Time
	period time.Duration
	task   Task
}

type Scheduler struct {
	clock   Clock
	onPanic func(recovered any)

	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]*entry
}

type Option func(*Scheduler)

// WithPanicHandler is called with the recovered value when a task panics. The
// panicking task is cancelled either way.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(s *Scheduler) {
		s.onPanic = fn
	}
}

func New(clock Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:   clock,
		entries: make(map[uint64]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every schedules task to run once per period, first one period from now.
func (s *Scheduler) Every(period time.Duration, task Task) *Handle {
	if period < minPeriod {
		period = minPeriod
	}
	return s.add(period, period, task)
}

// After schedules fn to run once, delay from now.
func (s *Scheduler) After(delay time.Duration, fn func(now time.Time)) *Handle {
	return s.add(delay, 0, func(now time.Time) bool {
		fn(now)
		return false
	})
}

func (s *Scheduler) add(delay, period time.Duration, task Task) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	h := &Handle{id: s.nextID, s: s}
	s.entries[h.id] = &entry{
		handle: h,
		due:    s.clock.Now().Add(delay),
		period: period,
		task:   task,
	}
	return h
}

func (s *Scheduler) remove(id uint64) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Pending returns the number of live tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Tick runs every task due at now and returns how many ran. Tasks are run in due
// order outside the scheduler lock, so a task may schedule or cancel others.
func (s *Scheduler) Tick(now time.Time) int {
	s.mu.Lock()
	due := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.due.After(now) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].handle.id < due[j].handle.id
		}
		return due[i].due.Before(due[j].due)
	})

	ran := 0
	for _, e := range due {
		if e.handle.Done() {
			continue
		}
		ran++

		keep := s.run(e, now)
		if !keep || e.period == 0 {
			e.handle.Cancel()
			continue
		}

		s.mu.Lock()
		if _, ok := s.entries[e.handle.id]; ok {
			next := e.due.Add(e.period)
			if !next.After(now) {
				next = now.Add(e.period)
			}
			e.due = next
		}
		s.mu.Unlock()
	}

	return ran
}

func (s *Scheduler) run(e *entry, now time.Time) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			keep = false
			if s.onPanic != nil {
				s.onPanic(fmt.Errorf("scheduled task %d: %v", e.handle.id, r))
			}
		}
	}()
	return e.task(now)
}

// CancelAll cancels every pending task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.entries))
	for _, e := range s.entries {
		handles = append(handles, e.handle)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

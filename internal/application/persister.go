package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/rs/zerolog"
)

const saveTimeout = 10 * time.Second

// Persister writes ban list snapshots on its own goroutine. Only the newest
// pending snapshot is kept, so a burst of mutations costs one write.
type Persister struct {
	repo    ports.BanRepository
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	pending  []domain.BanRecord
	queued   bool
	seq      uint64
	written  uint64
	lastErr  error
	progress chan struct{}
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewPersister(repo ports.BanRepository, logger zerolog.Logger, m *metrics.Metrics) *Persister {
	p := &Persister{
		repo:     repo,
		logger:   logger,
		metrics:  m,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.loop()
	return p
}

// Enqueue hands a snapshot to the writer and returns immediately. The caller
// must not modify records afterwards.
func (p *Persister) Enqueue(records []domain.BanRecord) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn().Int("records", len(records)).Msg("ban list write after close, writing synchronously")
		p.save(records)
		return
	}
	p.pending = records
	p.queued = true
	p.seq++
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot enqueued before the call has been written,
// and returns the error of the most recent write.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	target := p.seq
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if p.written >= target {
			err := p.lastErr
			p.mu.Unlock()
			return err
		}
		ch := p.progress
		p.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes any pending snapshot and stops the writer goroutine.
func (p *Persister) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		close(p.stop)
		<-p.done
	})
}

func (p *Persister) loop() {
	defer close(p.done)

	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *Persister) drain() {
	for {
		p.mu.Lock()
		if !p.queued {
			p.mu.Unlock()
			return
		}
		records := p.pending
		seq := p.seq
		p.pending = nil
		p.queued = false
		p.mu.Unlock()

		err := p.save(records)

		p.mu.Lock()
		p.written = seq
		p.lastErr = err
		close(p.progress)
		p.progress = make(chan struct{})
		p.mu.Unlock()
	}
}

func (p *Persister) save(records []domain.BanRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := p.repo.Save(ctx, records); err != nil {
		p.metrics.RecordPersistFailure()
		p.logger.Error().Err(err).Int("records", len(records)).Msg("failed to save ban list")
		return err
	}
	p.logger.Debug().Int("records", len(records)).Msg("saved ban list")
	return nil
}

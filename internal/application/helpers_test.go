package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/session-guard/internal/adapters/session/offline"
	"github.com/bnema/session-guard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 20, 0, 0, 0, time.Local)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type inMemoryBanRepo struct {
	mu      sync.Mutex
	records []domain.BanRecord
	exists  bool
	saves   int
	loadErr error
	saveErr error
}

func newInMemoryBanRepo(records ...domain.BanRecord) *inMemoryBanRepo {
	return &inMemoryBanRepo{records: records, exists: len(records) > 0}
}

func (r *inMemoryBanRepo) Load(context.Context) ([]domain.BanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if !r.exists {
		return nil, domain.ErrBanListNotFound
	}
	out := make([]domain.BanRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *inMemoryBanRepo) Save(_ context.Context, records []domain.BanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append([]domain.BanRecord(nil), records...)
	r.exists = true
	return nil
}

func (r *inMemoryBanRepo) snapshot() ([]domain.BanRecord, bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BanRecord(nil), r.records...), r.exists, r.saves
}

var errDiskFull = errors.New("disk full")

// hostSession returns a roster where actor 1 is the local authority.
func hostSession(others ...domain.Participant) *offline.Session {
	s := offline.New()
	s.Join(domain.Participant{ActorID: 1, DisplayName: "Host", PlatformIdentity: "76561198000000001", IsLocal: true, IsAuthority: true})
	for _, p := range others {
		s.Join(p)
	}
	return s
}

func mallory() domain.Participant {
	return domain.Participant{ActorID: 7, DisplayName: "Mallory", PlatformIdentity: "76561198000000007"}
}

type registryFixture struct {
	registry *Registry
	repo     *inMemoryBanRepo
	grace    *GraceTracker
	clock    *manualClock
}

func newRegistryFixture(t *testing.T, session *offline.Session, records ...domain.BanRecord) registryFixture {
	t.Helper()

	clock := newManualClock()
	repo := newInMemoryBanRepo(records...)
	grace := NewGraceTracker(10*time.Second, clock)
	registry := NewRegistry(context.Background(), repo, RegistryDeps{
		Session:    session,
		Identities: NewIdentityCache(nil, zerolog.Nop()),
		Grace:      grace,
		Clock:      clock,
		Logger:     zerolog.Nop(),
	})
	t.Cleanup(registry.Close)

	return registryFixture{registry: registry, repo: repo, grace: grace, clock: clock}
}

func flush(t *testing.T, r *Registry) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Flush(ctx))
}

func mockAnyContext() interface{} {
	return mock.Anything
}

package application

import (
	"context"
	"sync"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/rs/zerolog"
)

// IdentityCache maps session actors to platform identities. Lookups never call
// the resolver, so they are safe on the event filter path; Refresh and Resolve
// do the slow work.
type IdentityCache struct {
	resolver ports.IdentityResolver
	logger   zerolog.Logger

	mu      sync.RWMutex
	entries map[domain.ActorID]string
}

// NewIdentityCache accepts a nil resolver, in which case only identities
// carried on the participant itself are known.
func NewIdentityCache(resolver ports.IdentityResolver, logger zerolog.Logger) *IdentityCache {
	return &IdentityCache{
		resolver: resolver,
		logger:   logger,
		entries:  make(map[domain.ActorID]string),
	}
}

// Lookup returns the identity carried by p, else the cached one, else UnknownIdentity.
func (c *IdentityCache) Lookup(p domain.Participant) string {
	if p.HasIdentity() {
		return p.Identity()
	}
	if c == nil {
		return domain.UnknownIdentity
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id, ok := c.entries[p.ActorID]; ok {
		return id
	}
	return domain.UnknownIdentity
}

// Resolve is Lookup with a resolver fallback. Resolved identities are cached.
func (c *IdentityCache) Resolve(ctx context.Context, p domain.Participant) string {
	if id := c.Lookup(p); domain.IsKnownIdentity(id) {
		return id
	}
	if c == nil || c.resolver == nil {
		return domain.UnknownIdentity
	}

	id, err := c.resolver.ResolveIdentity(ctx, p)
	if err != nil || !domain.IsKnownIdentity(id) {
		if err != nil {
			c.logger.Debug().Err(err).Int("actor", int(p.ActorID)).Msg("identity lookup failed")
		}
		return domain.UnknownIdentity
	}

	c.mu.Lock()
	c.entries[p.ActorID] = id
	c.mu.Unlock()
	return id
}

// Refresh rebuilds the cache from the given roster.
func (c *IdentityCache) Refresh(ctx context.Context, participants []domain.Participant) int {
	fresh := make(map[domain.ActorID]string, len(participants))
	for _, p := range participants {
		if err := ctx.Err(); err != nil {
			return 0
		}
		if p.HasIdentity() {
			fresh[p.ActorID] = p.Identity()
			continue
		}
		if c.resolver == nil {
			continue
		}
		id, err := c.resolver.ResolveIdentity(ctx, p)
		if err != nil {
			c.logger.Debug().Err(err).Int("actor", int(p.ActorID)).Msg("identity lookup failed")
			continue
		}
		if domain.IsKnownIdentity(id) {
			fresh[p.ActorID] = id
		}
	}

	c.mu.Lock()
	c.entries = fresh
	c.mu.Unlock()
	return len(fresh)
}

func (c *IdentityCache) Forget(id domain.ActorID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *IdentityCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[domain.ActorID]string)
	c.mu.Unlock()
}

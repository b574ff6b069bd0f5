package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/rs/zerolog"
)

type RegistryDeps struct {
	// Session resolves the counterpart field for BanByName and
	// BanByPlatformIdentity. Optional.
	Session    ports.Session
	Identities *IdentityCache
	Grace      *GraceTracker
	Clock      ports.Clock
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// Registry is the persisted ban list plus case-insensitive name and identity
// indices. One RWMutex guards the list and both indices, so readers never see
// a half rebuilt index.
type Registry struct {
	persister  *Persister
	session    ports.Session
	identities *IdentityCache
	grace      *GraceTracker
	clock      ports.Clock
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	mu         sync.RWMutex
	records    []domain.BanRecord
	names      map[string]struct{}
	identityIx map[string]struct{}
}

// NewRegistry loads the ban list before returning. A missing list is written
// back empty; any other load failure is logged and the registry starts empty.
func NewRegistry(ctx context.Context, repo ports.BanRepository, deps RegistryDeps) *Registry {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Grace == nil {
		deps.Grace = NewGraceTracker(defaultUnbanGrace, deps.Clock)
	}

	r := &Registry{
		persister:  NewPersister(repo, deps.Logger, deps.Metrics),
		session:    deps.Session,
		identities: deps.Identities,
		grace:      deps.Grace,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		names:      make(map[string]struct{}),
		identityIx: make(map[string]struct{}),
	}

	records, err := repo.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrBanListNotFound):
		r.logger.Info().Msg("no ban list found, creating an empty one")
		r.persister.Enqueue([]domain.BanRecord{})
	case err != nil:
		r.logger.Error().Err(err).Msg("failed to load ban list, starting empty")
	default:
		for i := range records {
			if !domain.IsKnownIdentity(records[i].PlatformIdentity) {
				records[i].PlatformIdentity = domain.UnknownIdentity
			}
		}
		r.records = records
		r.logger.Info().Int("records", len(records)).Msg("loaded ban list")
	}

	r.mu.Lock()
	r.rebuildLocked()
	r.mu.Unlock()
	r.metrics.SetBanListSize(len(r.records))

	return r
}

// Ban adds p to the ban list. It does not start enforcement. Banning someone
// already listed by name or identity returns domain.ErrAlreadyBanned and changes
// nothing.
func (r *Registry) Ban(p *domain.Participant, identity, reason string) error {
	return r.banParticipant(p, identity, reason, metrics.SourceManual)
}

func (r *Registry) banParticipant(p *domain.Participant, identity, reason, source string) error {
	if err := r.checkParticipant(p); err != nil {
		return err
	}

	if !domain.IsKnownIdentity(identity) {
		identity = r.identities.Lookup(*p)
	}
	return r.add(p.DisplayName, identity, reason, source)
}

// BanByName bans name, picking up the identity of a matching roster member.
func (r *Registry) BanByName(name, reason string) error {
	if err := r.validateName(name); err != nil {
		return err
	}

	identity := domain.UnknownIdentity
	if p, ok := r.findInRoster(func(p domain.Participant) bool {
		return strings.EqualFold(strings.TrimSpace(p.DisplayName), strings.TrimSpace(name))
	}); ok {
		if err := r.checkParticipant(&p); err != nil {
			return err
		}
		identity = r.identities.Lookup(p)
	}

	return r.add(name, identity, reason, metrics.SourceManual)
}

// BanByPlatformIdentity bans identity, picking up the name of a matching roster
// member. Without one the record has no name and only matches by identity.
func (r *Registry) BanByPlatformIdentity(identity, reason string) error {
	if err := domain.ValidatePlatformIdentity(identity); err != nil {
		r.logger.Warn().Err(err).Str("identity", identity).Msg("ban rejected")
		return err
	}
	identity = strings.TrimSpace(identity)

	name := ""
	if p, ok := r.findInRoster(func(p domain.Participant) bool {
		return domain.NormalizeIdentity(r.identities.Lookup(p)) == domain.NormalizeIdentity(identity)
	}); ok {
		if err := r.checkParticipant(&p); err != nil {
			return err
		}
		name = p.DisplayName
	}

	return r.add(name, identity, reason, metrics.SourceManual)
}

func (r *Registry) checkParticipant(p *domain.Participant) error {
	var err error
	switch {
	case p == nil:
		err = domain.ErrNilParticipant
	case p.IsLocal:
		err = domain.ErrLocalParticipant
	case p.IsAuthority:
		err = domain.ErrAuthorityParticipant
	}
	if err != nil {
		r.logger.Warn().Err(err).Msg("ban rejected")
		return err
	}
	return r.validateName(p.DisplayName)
}

func (r *Registry) validateName(name string) error {
	if err := domain.ValidateName(name); err != nil {
		r.logger.Warn().Err(err).Msg("ban rejected")
		return err
	}
	return nil
}

func (r *Registry) add(name, identity, reason, source string) error {
	record := domain.NewBanRecord(name, identity, reason, r.clock.Now())

	r.mu.Lock()
	if r.matchesLocked(record.PlayerName, record.PlatformIdentity) {
		r.mu.Unlock()
		r.logger.Info().Str("player", record.Label()).Msg("player is already banned")
		return domain.ErrAlreadyBanned
	}

	r.records = append(r.records, record)
	r.rebuildLocked()
	size := len(r.records)
	r.persister.Enqueue(r.snapshotLocked())
	r.mu.Unlock()

	if r.grace.Clear(record.PlayerName) {
		r.logger.Info().Str("player", record.PlayerName).Msg("removed from unban protection because they are banned again")
	}

	r.metrics.RecordBan(source, size)
	event := r.logger.Info().
		Str("player", record.Label()).
		Str("identity", record.PlatformIdentity).
		Str("source", source)
	if record.Reason != "" {
		event = event.Str("reason", record.Reason)
	}
	event.Msg("player banned")

	return nil
}

// Unban removes the first record matching name, falling back to identity, and
// protects the removed name for the grace window. It reports false when nothing
// matched.
func (r *Registry) Unban(name, identity string) (domain.BanRecord, bool) {
	nameKey := domain.NormalizeName(name)
	identityKey := domain.NormalizeIdentity(identity)

	r.mu.Lock()
	idx := -1
	if nameKey != "" {
		for i, rec := range r.records {
			if domain.NormalizeName(rec.PlayerName) == nameKey {
				idx = i
				break
			}
		}
	}
	if idx < 0 && identityKey != "" {
		for i, rec := range r.records {
			if domain.NormalizeIdentity(rec.PlatformIdentity) == identityKey {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return domain.BanRecord{}, false
	}

	removed := r.records[idx]
	r.records = append(r.records[:idx:idx], r.records[idx+1:]...)
	r.rebuildLocked()
	size := len(r.records)
	r.persister.Enqueue(r.snapshotLocked())
	r.mu.Unlock()

	r.grace.Protect(removed.PlayerName)
	r.metrics.RecordUnban(size)
	r.logger.Info().
		Str("player", removed.Label()).
		Str("identity", removed.PlatformIdentity).
		Msg("player unbanned")

	return removed, true
}

func (r *Registry) IsBanned(name string) bool {
	key := domain.NormalizeName(name)
	if key == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[key]
	return ok
}

func (r *Registry) IsBannedByPlatformIdentity(identity string) bool {
	key := domain.NormalizeIdentity(identity)
	if key == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.identityIx[key]
	return ok
}

// IsParticipantBanned checks the display name and the resolved identity.
func (r *Registry) IsParticipantBanned(p domain.Participant) bool {
	return r.IsBanned(p.DisplayName) || r.IsBannedByPlatformIdentity(r.identities.Lookup(p))
}

// Find returns the record covering p, if any.
func (r *Registry) Find(p domain.Participant) (domain.BanRecord, bool) {
	identity := r.identities.Lookup(p)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.Matches(p.DisplayName, identity) {
			return rec, true
		}
	}
	return domain.BanRecord{}, false
}

// List returns a copy of the ban list in insertion order.
func (r *Registry) List() []domain.BanRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Reset empties the ban list and persists the empty list.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.records = nil
	r.rebuildLocked()
	r.persister.Enqueue([]domain.BanRecord{})
	r.mu.Unlock()

	r.metrics.SetBanListSize(0)
	r.logger.Info().Msg("ban list cleared")
}

// Flush waits for pending writes and returns the result of the last one.
func (r *Registry) Flush(ctx context.Context) error {
	return r.persister.Flush(ctx)
}

// Close writes pending changes and stops the background writer.
func (r *Registry) Close() {
	r.persister.Close()
}

func (r *Registry) matchesLocked(name, identity string) bool {
	if key := domain.NormalizeName(name); key != "" {
		if _, ok := r.names[key]; ok {
			return true
		}
	}
	if key := domain.NormalizeIdentity(identity); key != "" {
		if _, ok := r.identityIx[key]; ok {
			return true
		}
	}
	return false
}

func (r *Registry) rebuildLocked() {
	names := make(map[string]struct{}, len(r.records))
	identities := make(map[string]struct{}, len(r.records))
	for _, rec := range r.records {
		if key := domain.NormalizeName(rec.PlayerName); key != "" {
			names[key] = struct{}{}
		}
		if key := domain.NormalizeIdentity(rec.PlatformIdentity); key != "" {
			identities[key] = struct{}{}
		}
	}
	r.names = names
	r.identityIx = identities
}

func (r *Registry) snapshotLocked() []domain.BanRecord {
	out := make([]domain.BanRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Registry) findInRoster(match func(domain.Participant) bool) (domain.Participant, bool) {
	if r.session == nil || !r.session.InSession() {
		return domain.Participant{}, false
	}
	for _, p := range r.session.Participants() {
		if match(p) {
			return p, true
		}
	}
	return domain.Participant{}, false
}

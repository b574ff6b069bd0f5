package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/rs/zerolog"
)

const (
	defaultAuthorityCooldown = 5 * time.Second

	ReasonHostSteal           = "Auto Ban: host steal attempt"
	ReasonHostStealOutOfBand  = "Auto Ban: host steal attempt (out-of-band)"
	hijackPathTransfer        = "transfer"
	hijackPathMonitor         = "monitor"
	hostStealAnnouncementText = "Player %s was banned for attempting to steal host"
)

type AuthorityGuardDeps struct {
	Session   ports.Session
	Transport ports.AuthorityTransport
	Registry  *Registry
	// Announcer is optional.
	Announcer ports.Announcer
	Clock     ports.Clock
	Cooldown  time.Duration
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// AuthorityGuard validates authority transfers and reverses the ones that look
// like a hijack: a change to another actor within the cooldown after the last
// legitimate change, while the original holder is still present.
type AuthorityGuard struct {
	session   ports.Session
	transport ports.AuthorityTransport
	registry  *Registry
	announcer ports.Announcer
	clock     ports.Clock
	cooldown  time.Duration
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	mu    sync.Mutex
	state domain.AuthorityState
	// observed is the authority holder last seen by the monitor or let
	// through by ValidateTransfer.
	observed domain.ActorID
}

func NewAuthorityGuard(deps AuthorityGuardDeps) *AuthorityGuard {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Cooldown <= 0 {
		deps.Cooldown = defaultAuthorityCooldown
	}
	return &AuthorityGuard{
		session:   deps.Session,
		transport: deps.Transport,
		registry:  deps.Registry,
		announcer: deps.Announcer,
		clock:     deps.Clock,
		cooldown:  deps.Cooldown,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		state:     domain.NewAuthorityState(deps.Clock.Now()),
	}
}

// OnJoinSession resets the protocol state. A local participant alone in the
// session is the original authority; otherwise the current holder is.
func (g *AuthorityGuard) OnJoinSession() {
	now := g.clock.Now()
	roster := g.session.Participants()
	local, hasLocal := g.session.Local()
	holder, hasHolder := g.session.Authority()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = domain.NewAuthorityState(now)
	g.observed = domain.NoActor

	switch {
	case hasLocal && len(roster) == 1:
		g.state.OriginalAuthority = local.ActorID
		g.logger.Info().Int("actor", int(local.ActorID)).Msg("original authority set to local participant")
	case hasHolder:
		g.state.OriginalAuthority = holder.ActorID
		g.logger.Info().Int("actor", int(holder.ActorID)).Msg("original authority set to current holder")
	}
	if hasHolder {
		g.observed = holder.ActorID
	}
}

// ValidateTransfer is called before an authority transfer to requested takes
// effect. It returns false when the transfer must be refused.
func (g *AuthorityGuard) ValidateTransfer(ctx context.Context, requested domain.Participant) bool {
	if !g.session.InSession() {
		return true
	}

	now := g.clock.Now()

	g.mu.Lock()
	switch {
	case !g.state.HasOriginal():
		g.state.OriginalAuthority = requested.ActorID
		g.state.LastLegitimateChange = now
		g.observed = requested.ActorID
		g.mu.Unlock()
		g.logger.Info().Int("actor", int(requested.ActorID)).Msg("original authority initially set")
		return true

	case requested.ActorID == g.state.OriginalAuthority:
		g.state.LastLegitimateChange = now
		g.observed = requested.ActorID
		g.mu.Unlock()
		return true

	case g.state.WithinCooldown(now, g.cooldown) && g.originalPresent():
		original := g.state.OriginalAuthority
		g.state.SuspectedHijackers[requested.ActorID] = struct{}{}
		g.mu.Unlock()

		g.metrics.RecordHijackAttempt(hijackPathTransfer)
		g.logger.Warn().
			Str("player", requested.DisplayName).
			Int("actor", int(requested.ActorID)).
			Msg("possible host steal attempt detected")
		g.reclaim(ctx, original, requested, ReasonHostSteal)
		return false

	default:
		g.state.OriginalAuthority = requested.ActorID
		g.state.LastLegitimateChange = now
		g.observed = requested.ActorID
		g.mu.Unlock()
		g.logger.Info().
			Str("player", requested.DisplayName).
			Int("actor", int(requested.ActorID)).
			Msg("legitimate authority change")
		return true
	}
}

// Monitor catches authority changes that did not pass through ValidateTransfer.
// It is meant to run once per tick.
func (g *AuthorityGuard) Monitor(ctx context.Context) {
	if !g.session.InSession() {
		return
	}
	holder, ok := g.session.Authority()
	if !ok {
		return
	}
	local, hasLocal := g.session.Local()

	g.mu.Lock()
	if g.observed == domain.NoActor {
		g.observed = holder.ActorID
		g.mu.Unlock()
		return
	}
	if holder.ActorID == g.observed {
		g.mu.Unlock()
		return
	}

	previous := g.observed
	g.observed = holder.ActorID
	original := g.state.OriginalAuthority
	hijack := g.state.HasOriginal() && hasLocal && local.ActorID == original && holder.ActorID != original
	if hijack {
		g.state.SuspectedHijackers[holder.ActorID] = struct{}{}
	} else {
		g.state.OriginalAuthority = holder.ActorID
	}
	g.mu.Unlock()

	g.logger.Info().Int("from", int(previous)).Int("to", int(holder.ActorID)).Msg("authority changed")
	if !hijack {
		return
	}

	g.metrics.RecordHijackAttempt(hijackPathMonitor)
	g.logger.Warn().
		Str("player", holder.DisplayName).
		Int("actor", int(holder.ActorID)).
		Msg("authority changed outside the transfer protocol")
	g.reclaim(ctx, original, holder, ReasonHostStealOutOfBand)
}

// reclaim reasserts local authority and bans the requester. It only acts when
// the local participant is the original authority. Must be called without g.mu
// held, since the transport may call back into ValidateTransfer.
func (g *AuthorityGuard) reclaim(ctx context.Context, original domain.ActorID, requester domain.Participant, reason string) {
	local, ok := g.session.Local()
	if !ok || local.ActorID != original {
		g.logger.Info().Msg("not the original authority, cannot reclaim")
		return
	}

	g.logger.Warn().Msg("reclaiming authority")
	if err := g.transport.ClaimAuthority(ctx, local.ActorID); err != nil {
		g.logger.Error().Err(err).Msg("failed to reclaim authority")
		return
	}

	// The roster may still list the requester as authority until the reclaim
	// propagates.
	target := requester
	if fresh, ok := g.session.Participant(requester.ActorID); ok {
		target = fresh
	}
	target.IsAuthority = false
	target.IsLocal = false

	err := g.registry.banParticipant(&target, "", reason, metrics.SourceAuthority)
	switch {
	case err == nil:
		g.logger.Warn().Str("player", target.DisplayName).Msg("banned player for host steal attempt")
		g.announce(ctx, fmt.Sprintf(hostStealAnnouncementText, target.DisplayName))
	case errors.Is(err, domain.ErrAlreadyBanned):
	default:
		g.logger.Error().Err(err).Str("player", target.DisplayName).Msg("failed to ban host steal attempt")
	}
}

func (g *AuthorityGuard) announce(ctx context.Context, message string) {
	if g.announcer == nil {
		return
	}
	if err := g.announcer.Announce(ctx, message); err != nil {
		g.logger.Debug().Err(err).Msg("announcement failed")
	}
}

// originalPresent must be called with g.mu held.
func (g *AuthorityGuard) originalPresent() bool {
	_, ok := g.session.Participant(g.state.OriginalAuthority)
	return ok
}

// State returns a copy of the protocol state.
func (g *AuthorityGuard) State() domain.AuthorityState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

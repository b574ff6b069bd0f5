package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/session-guard/internal/config"
	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/logging"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/bnema/session-guard/internal/scheduler"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const autoBanAnnouncementText = "Player %s was banned: %s"

type Deps struct {
	Session    ports.Session
	Enforcer   ports.Enforcer
	Transport  ports.AuthorityTransport
	Repository ports.BanRepository

	// Optional.
	Announcer ports.Announcer
	Resolver  ports.IdentityResolver
	Clock     ports.Clock
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// Guard wires the ban registry, the enforcement engine, the event filter and
// the authority guard to one host session. The host calls Tick from its own
// loop (or uses a scheduler.Driver) and forwards session callbacks.
type Guard struct {
	settings   *config.Settings
	session    ports.Session
	announcer  ports.Announcer
	clock      ports.Clock
	baseLogger zerolog.Logger
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	statsEvery time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	Grace      *GraceTracker
	Identities *IdentityCache
	Registry   *Registry
	Scheduler  *scheduler.Scheduler
	Engine     *Engine
	Filter     *EventFilter
	Authority  *AuthorityGuard
	Admission  *AdmissionGate

	sessionID     string
	lastStatsSent int64
}

// NewGuard loads the ban list and schedules the periodic sweep, identity
// refresh and stats tasks. ctx bounds every action the guard sends.
func NewGuard(ctx context.Context, cfg config.Config, deps Deps) *Guard {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	ctx, cancel := context.WithCancel(ctx)

	g := &Guard{
		settings:   config.NewSettings(cfg),
		session:    deps.Session,
		announcer:  deps.Announcer,
		clock:      deps.Clock,
		baseLogger: logging.Component(deps.Logger, "guard"),
		logger:     logging.Component(deps.Logger, "guard"),
		metrics:    deps.Metrics,
		statsEvery: cfg.StatsInterval,
		ctx:        ctx,
		cancel:     cancel,
	}

	g.Scheduler = scheduler.New(deps.Clock, scheduler.WithPanicHandler(func(r any) {
		g.logger.Error().Interface("panic", r).Msg("scheduled task panicked")
	}))
	g.Grace = NewGraceTracker(cfg.UnbanGrace, deps.Clock)
	g.Identities = NewIdentityCache(deps.Resolver, logging.Component(deps.Logger, "identity"))
	g.Registry = NewRegistry(ctx, deps.Repository, RegistryDeps{
		Session:    deps.Session,
		Identities: g.Identities,
		Grace:      g.Grace,
		Clock:      deps.Clock,
		Logger:     logging.Component(deps.Logger, "registry"),
		Metrics:    deps.Metrics,
	})
	g.Engine = NewEngine(EngineDeps{
		Session:   deps.Session,
		Enforcer:  deps.Enforcer,
		Registry:  g.Registry,
		Grace:     g.Grace,
		Strategy:  g.settings,
		Scheduler: g.Scheduler,
		Clock:     deps.Clock,
		Logger:    logging.Component(deps.Logger, "engine"),
		Metrics:   deps.Metrics,
	})
	g.Filter = NewEventFilter(deps.Session, g.Registry, deps.Metrics)
	g.Authority = NewAuthorityGuard(AuthorityGuardDeps{
		Session:   deps.Session,
		Transport: deps.Transport,
		Registry:  g.Registry,
		Announcer: deps.Announcer,
		Clock:     deps.Clock,
		Cooldown:  cfg.AuthorityCooldown,
		Logger:    logging.Component(deps.Logger, "authority"),
		Metrics:   deps.Metrics,
	})
	g.Admission = NewAdmissionGate(deps.Session, g.Registry, logging.Component(deps.Logger, "admission"))

	g.Scheduler.Every(cfg.BanCheckInterval, func(time.Time) bool {
		g.Grace.Purge()
		g.Engine.Sweep(g.ctx)
		return true
	})
	g.Scheduler.Every(cfg.IdentityRefreshInterval, func(time.Time) bool {
		if g.session.InSession() {
			g.Identities.Refresh(g.ctx, g.session.Participants())
		}
		return true
	})
	g.Scheduler.Every(cfg.StatsInterval, func(time.Time) bool {
		g.logStats()
		return true
	})

	return g
}

// Settings exposes the runtime-adjustable settings.
func (g *Guard) Settings() *config.Settings {
	return g.settings
}

// SessionID identifies the current session in logs. It changes on every join.
func (g *Guard) SessionID() string {
	return g.sessionID
}

// OnJoinedSession resets per-session state after the local participant joins.
func (g *Guard) OnJoinedSession() {
	g.sessionID = uuid.NewString()
	g.logger = g.baseLogger.With().Str("session", g.sessionID).Logger()

	g.Engine.Reset()
	g.Identities.Reset()
	g.Identities.Refresh(g.ctx, g.session.Participants())
	g.Authority.OnJoinSession()

	g.logger.Info().Int("participants", len(g.session.Participants())).Msg("joined session")
}

// OnParticipantLeft drops the participant's target right away instead of
// waiting for the next loop iteration.
func (g *Guard) OnParticipantLeft(id domain.ActorID) {
	if g.Engine.Release(id) {
		g.logger.Info().Int("actor", int(id)).Msg("targeted player left")
	}
	g.Identities.Forget(id)
}

// Tick runs the authority monitor and every scheduled task that is due. It
// never panics.
func (g *Guard) Tick(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Interface("panic", r).Msg("recovered from panic in tick")
		}
	}()

	g.Authority.Monitor(g.ctx)
	g.Scheduler.Tick(now)
}

// ReportCheater is the callback handed to detector bridges. It bans p and
// applies the configured strategy right away. Reports for names inside the
// unban grace window are ignored. ctx only bounds the announcement; enforcement
// runs under the guard's own context.
func (g *Guard) ReportCheater(ctx context.Context, p domain.Participant, reason, identity string) error {
	if !g.settings.AutoDetect() {
		return domain.ErrAutoDetectDisabled
	}
	if local, ok := g.session.Local(); !ok || !local.IsAuthority {
		return domain.ErrNotAuthority
	}
	if g.Grace.IsProtected(p.DisplayName) {
		g.logger.Info().Str("player", p.DisplayName).Msg("ignoring report for recently unbanned player")
		return domain.ErrGraceProtected
	}

	err := g.Registry.banParticipant(&p, identity, reason, metrics.SourceDetector)
	switch {
	case err == nil:
		g.announce(ctx, fmt.Sprintf(autoBanAnnouncementText, p.DisplayName, reason))
	case errors.Is(err, domain.ErrAlreadyBanned):
	default:
		return err
	}

	return g.Engine.Enforce(g.ctx, p, g.settings.Strategy())
}

// AttachDetectors hands ReportCheater to every installed detector and returns
// how many were attached.
func (g *Guard) AttachDetectors(probes ...DetectorProbe) int {
	attached := 0
	for _, probe := range probes {
		bridge, ok := probe()
		if !ok {
			continue
		}
		if err := bridge.Attach(g.ReportCheater); err != nil {
			g.logger.Warn().Err(err).Str("detector", bridge.Name()).Msg("failed to attach detector")
			continue
		}
		g.logger.Info().Str("detector", bridge.Name()).Msg("detector attached")
		attached++
	}
	return attached
}

// Unban removes the ban and stops enforcing it against anyone in the roster it
// covered.
func (g *Guard) Unban(name, identity string) (domain.BanRecord, bool) {
	record, ok := g.Registry.Unban(name, identity)
	if !ok {
		return record, false
	}

	for _, p := range g.session.Participants() {
		if record.Matches(p.DisplayName, g.Identities.Lookup(p)) {
			g.Engine.Release(p.ActorID)
		}
	}
	return record, true
}

// Close stops every task and writes pending ban list changes.
func (g *Guard) Close() {
	g.cancel()
	g.Scheduler.CancelAll()
	g.Engine.Reset()
	g.Registry.Close()
}

func (g *Guard) logStats() {
	total := g.Engine.MessagesSent()
	delta := total - g.lastStatsSent
	g.lastStatsSent = total
	if delta <= 0 {
		return
	}
	g.logger.Info().
		Int64("messages", delta).
		Int64("total", total).
		Int("targets", len(g.Engine.TargetedActorIDs())).
		Dur("interval", g.statsEvery).
		Msg("enforcement stats")
}

func (g *Guard) announce(ctx context.Context, message string) {
	if g.announcer == nil {
		return
	}
	if err := g.announcer.Announce(ctx, message); err != nil {
		g.logger.Debug().Err(err).Msg("announcement failed")
	}
}

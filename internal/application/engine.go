package application

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/metrics"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/bnema/session-guard/internal/scheduler"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	aggressivePeriod = 200 * time.Millisecond
	recoveryDelay    = time.Second

	noopBurstSize   = 200
	noopPayloadSize = 1024
)

// Action names used in failure logs and metrics.
const (
	actionRelocate     = "relocate"
	actionIncapacitate = "incapacitate"
	actionRecover      = "recover"
	actionRemnants     = "destroy_remnants"
	actionNoop         = "noop_burst"
)

// StrategySource supplies the configured enforcement strategy. It is read once
// per sweep.
type StrategySource interface {
	Strategy() domain.Strategy
}

type EngineDeps struct {
	Session   ports.Session
	Enforcer  ports.Enforcer
	Registry  *Registry
	Grace     *GraceTracker
	Strategy  StrategySource
	Scheduler *scheduler.Scheduler
	Clock     ports.Clock
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

type target struct {
	info domain.EnforcementTarget
	loop *scheduler.Handle
	// displaced is set once the passive one-shot has been applied.
	displaced bool
}

// Engine tracks which participants are being neutralized and drives the
// strategy actions for each of them.
type Engine struct {
	session   ports.Session
	enforcer  ports.Enforcer
	registry  *Registry
	grace     *GraceTracker
	strategy  StrategySource
	scheduler *scheduler.Scheduler
	clock     ports.Clock
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	payload     []byte
	failLimiter *rate.Limiter
	sent        atomic.Int64

	mu      sync.Mutex
	targets map[domain.ActorID]*target
}

func NewEngine(deps EngineDeps) *Engine {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = scheduler.New(deps.Clock)
	}

	payload := make([]byte, noopPayloadSize)
	_, _ = rand.Read(payload)

	return &Engine{
		session:     deps.Session,
		enforcer:    deps.Enforcer,
		registry:    deps.Registry,
		grace:       deps.Grace,
		strategy:    deps.Strategy,
		scheduler:   deps.Scheduler,
		clock:       deps.Clock,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		payload:     payload,
		failLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		targets:     make(map[domain.ActorID]*target),
	}
}

// StartTargeting marks p as a target. The strategy actions start on the next
// sweep.
func (e *Engine) StartTargeting(p domain.Participant) error {
	if err := e.checkTarget(p); err != nil {
		return err
	}

	e.mu.Lock()
	if _, ok := e.targets[p.ActorID]; ok {
		e.mu.Unlock()
		e.logger.Info().Str("player", p.DisplayName).Msg("player is already targeted")
		return domain.ErrAlreadyTargeted
	}
	e.targets[p.ActorID] = &target{info: e.newTarget(p)}
	n := len(e.targets)
	e.mu.Unlock()

	e.metrics.SetActiveTargets(n)
	e.logger.Info().Str("player", p.DisplayName).Int("actor", int(p.ActorID)).Msg("started targeting player")
	return nil
}

// StopTargeting removes p from the targets and cancels its loop.
func (e *Engine) StopTargeting(p domain.Participant) error {
	if !e.localIsAuthority() {
		e.logger.Warn().Msg("only the authority can stop targeting")
		return domain.ErrNotAuthority
	}
	if !e.Release(p.ActorID) {
		return domain.ErrNotTargeted
	}
	e.logger.Info().Str("player", p.DisplayName).Int("actor", int(p.ActorID)).Msg("stopped targeting player")
	return nil
}

func (e *Engine) checkTarget(p domain.Participant) error {
	var err error
	switch {
	case !e.localIsAuthority():
		err = domain.ErrNotAuthority
	case p.IsLocal:
		err = domain.ErrLocalParticipant
	case p.IsAuthority:
		err = domain.ErrAuthorityParticipant
	}
	if err != nil {
		e.logger.Warn().Err(err).Str("player", p.DisplayName).Msg("cannot target player")
	}
	return err
}

// Release drops the target for id and cancels its loop. It reports whether a
// target existed. Unlike StopTargeting it needs no authority, since it is used
// for cleanup when a participant leaves or is unbanned.
func (e *Engine) Release(id domain.ActorID) bool {
	e.mu.Lock()
	t, ok := e.targets[id]
	if ok {
		delete(e.targets, id)
	}
	n := len(e.targets)
	e.mu.Unlock()

	if !ok {
		return false
	}
	t.loop.Cancel()
	e.metrics.SetActiveTargets(n)
	return true
}

// Reset drops every target, for example on joining a new session.
func (e *Engine) Reset() {
	e.mu.Lock()
	old := e.targets
	e.targets = make(map[domain.ActorID]*target)
	e.mu.Unlock()

	for _, t := range old {
		t.loop.Cancel()
	}
	e.metrics.SetActiveTargets(0)
}

// Sweep finds banned participants in the roster and applies the configured
// strategy to each. It does nothing unless the local participant holds
// authority in a live session.
func (e *Engine) Sweep(ctx context.Context) {
	if !e.session.InSession() || !e.localIsAuthority() {
		return
	}

	strategy := e.currentStrategy()
	roster := e.session.Participants()
	present := make(map[domain.ActorID]struct{}, len(roster))

	for _, p := range roster {
		present[p.ActorID] = struct{}{}
		if p.IsLocal || p.IsAuthority {
			continue
		}
		if e.grace.IsProtected(p.DisplayName) || !e.registry.IsParticipantBanned(p) {
			continue
		}
		e.enforce(ctx, p, strategy)
	}

	for _, id := range e.TargetedActorIDs() {
		p, ok := e.session.Participant(id)
		if _, here := present[id]; !here || !ok {
			e.Release(id)
			continue
		}
		if p.IsAuthority || e.grace.IsProtected(p.DisplayName) || !e.registry.IsParticipantBanned(p) {
			e.Release(id)
		}
	}
}

// Enforce targets p and applies strategy right away instead of waiting for the
// next sweep.
func (e *Engine) Enforce(ctx context.Context, p domain.Participant, strategy domain.Strategy) error {
	if err := e.checkTarget(p); err != nil {
		return err
	}
	e.enforce(ctx, p, strategy)
	return nil
}

func (e *Engine) enforce(ctx context.Context, p domain.Participant, strategy domain.Strategy) {
	e.mu.Lock()
	t, ok := e.targets[p.ActorID]
	if !ok {
		t = &target{info: e.newTarget(p)}
		e.targets[p.ActorID] = t
		e.logger.Info().Str("player", p.DisplayName).Int("actor", int(p.ActorID)).Msg("banned player found, targeting")
	}
	n := len(e.targets)

	applyOnce := false
	switch strategy {
	case domain.StrategyPassive:
		if t.loop != nil {
			t.loop.Cancel()
			t.loop = nil
		}
		if !t.displaced {
			t.displaced = true
			applyOnce = true
		}
	default:
		if t.loop.Done() {
			t.loop = e.scheduler.Every(aggressivePeriod, e.aggressiveStep(ctx, p.ActorID))
		}
	}
	e.mu.Unlock()

	e.metrics.SetActiveTargets(n)
	if applyOnce {
		e.ApplyToPlayer(ctx, p)
	}
}

// aggressiveStep is one iteration of the repeating loop. It ends the loop and
// drops the target once the participant is gone, unbanned or protected.
func (e *Engine) aggressiveStep(ctx context.Context, id domain.ActorID) scheduler.Task {
	return func(time.Time) bool {
		if ctx.Err() != nil {
			e.detachLoop(id)
			return false
		}

		p, ok := e.session.Participant(id)
		if !ok {
			e.logger.Info().Int("actor", int(id)).Msg("target left the session, stopping enforcement")
			e.Release(id)
			return false
		}
		if !e.localIsAuthority() || p.IsAuthority ||
			e.grace.IsProtected(p.DisplayName) || !e.registry.IsParticipantBanned(p) {
			e.logger.Info().Str("player", p.DisplayName).Msg("target no longer enforceable, stopping enforcement")
			e.Release(id)
			return false
		}

		e.ApplyToPlayer(ctx, p)
		e.sendBurst(ctx, p)
		return true
	}
}

// detachLoop forgets the loop handle but keeps the target, so the next sweep
// starts a fresh loop.
func (e *Engine) detachLoop(id domain.ActorID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.targets[id]; ok {
		t.loop = nil
	}
}

// ApplyToPlayer moves p far out of bounds, incapacitates it, schedules recovery
// one second later and destroys remnants it owns. Protected participants are
// left alone. Failures are logged and do not stop the remaining actions.
func (e *Engine) ApplyToPlayer(ctx context.Context, p domain.Participant) {
	if e.grace.IsProtected(p.DisplayName) {
		return
	}

	if err := e.enforcer.Relocate(ctx, p.ActorID, domain.FarOutOfBounds); err != nil {
		e.actionFailed(actionRelocate, p, err)
	}
	if err := e.enforcer.Incapacitate(ctx, p.ActorID); err != nil {
		e.actionFailed(actionIncapacitate, p, err)
	}

	e.scheduler.After(recoveryDelay, func(time.Time) {
		if e.grace.IsProtected(p.DisplayName) {
			return
		}
		if _, ok := e.session.Participant(p.ActorID); !ok {
			return
		}
		if err := e.enforcer.Recover(ctx, p.ActorID, domain.FarOutOfBounds); err != nil {
			e.actionFailed(actionRecover, p, err)
		}
	})

	destroyed, err := e.enforcer.DestroyRemnants(ctx, p.ActorID)
	if err != nil {
		e.actionFailed(actionRemnants, p, err)
	} else if destroyed > 0 {
		e.logger.Debug().Str("player", p.DisplayName).Int("destroyed", destroyed).Msg("destroyed remnants")
	}
}

func (e *Engine) sendBurst(ctx context.Context, p domain.Participant) {
	sent := 0
	var lastErr error
	for i := 0; i < noopBurstSize; i++ {
		if ctx.Err() != nil {
			break
		}
		if err := e.enforcer.SendNoop(ctx, p.ActorID, e.payload); err != nil {
			lastErr = err
			continue
		}
		sent++
	}

	e.sent.Add(int64(sent))
	e.metrics.AddNoopMessages(sent)
	if lastErr != nil {
		e.actionFailed(actionNoop, p, lastErr)
	}
}

func (e *Engine) actionFailed(action string, p domain.Participant, err error) {
	e.metrics.RecordActionFailure(action)
	if !e.failLimiter.Allow() {
		return
	}
	e.logger.Warn().
		Err(err).
		Str("action", action).
		Str("player", p.DisplayName).
		Int("actor", int(p.ActorID)).
		Msg("enforcement action failed")
}

// TargetedActorIDs returns the targeted actors in ascending order.
func (e *Engine) TargetedActorIDs() []domain.ActorID {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]domain.ActorID, 0, len(e.targets))
	for id := range e.targets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) Targets() []domain.EnforcementTarget {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.EnforcementTarget, 0, len(e.targets))
	for _, t := range e.targets {
		out = append(out, t.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorID < out[j].ActorID })
	return out
}

func (e *Engine) IsTargeted(id domain.ActorID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.targets[id]
	return ok
}

// looping reports whether id has a live aggressive loop.
func (e *Engine) looping(id domain.ActorID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.targets[id]
	return ok && !t.loop.Done()
}

// MessagesSent is the total number of no-op messages sent since construction.
func (e *Engine) MessagesSent() int64 {
	return e.sent.Load()
}

func (e *Engine) currentStrategy() domain.Strategy {
	if e.strategy == nil {
		return domain.StrategyAggressive
	}
	if s := e.strategy.Strategy(); s.Valid() {
		return s
	}
	return domain.StrategyAggressive
}

func (e *Engine) localIsAuthority() bool {
	local, ok := e.session.Local()
	return ok && local.IsAuthority
}

func (e *Engine) newTarget(p domain.Participant) domain.EnforcementTarget {
	return domain.EnforcementTarget{
		ActorID:     p.ActorID,
		DisplayName: p.DisplayName,
		Since:       e.clock.Now(),
	}
}

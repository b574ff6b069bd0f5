package offline

import (
	"context"
	"sync"

	"github.com/bnema/session-guard/internal/domain"
	"github.com/bnema/session-guard/internal/ports"
	"github.com/rs/zerolog"
)

// Action is one outbound call seen by a Recorder.
type Action struct {
	Kind   string
	Target domain.ActorID
}

const (
	ActionRelocate     = "relocate"
	ActionIncapacitate = "incapacitate"
	ActionRecover      = "recover"
	ActionRemnants     = "destroy_remnants"
	ActionNoop         = "noop"
	ActionClaim        = "claim_authority"
	ActionAnnounce     = "announce"
)

// Recorder stands in for the live transport. It logs and counts every action
// and applies authority claims to its Session.
type Recorder struct {
	session *Session
	logger  zerolog.Logger

	mu        sync.Mutex
	actions   []Action
	noops     int
	announced []string
}

var (
	_ ports.Enforcer           = (*Recorder)(nil)
	_ ports.AuthorityTransport = (*Recorder)(nil)
	_ ports.Announcer          = (*Recorder)(nil)
)

func NewRecorder(session *Session, logger zerolog.Logger) *Recorder {
	return &Recorder{session: session, logger: logger}
}

func (r *Recorder) Relocate(_ context.Context, target domain.ActorID, to domain.Vector) error {
	r.record(ActionRelocate, target)
	r.logger.Debug().Int("actor", int(target)).Float64("x", to.X).Float64("y", to.Y).Float64("z", to.Z).Msg("relocate")
	return nil
}

func (r *Recorder) Incapacitate(_ context.Context, target domain.ActorID) error {
	r.record(ActionIncapacitate, target)
	r.logger.Debug().Int("actor", int(target)).Msg("incapacitate")
	return nil
}

func (r *Recorder) Recover(_ context.Context, target domain.ActorID, _ domain.Vector) error {
	r.record(ActionRecover, target)
	r.logger.Debug().Int("actor", int(target)).Msg("recover")
	return nil
}

func (r *Recorder) DestroyRemnants(_ context.Context, target domain.ActorID) (int, error) {
	r.record(ActionRemnants, target)
	return 0, nil
}

// SendNoop is counted but not recorded as an Action.
func (r *Recorder) SendNoop(ctx context.Context, _ domain.ActorID, _ []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.noops++
	r.mu.Unlock()
	return nil
}

func (r *Recorder) ClaimAuthority(_ context.Context, actor domain.ActorID) error {
	r.record(ActionClaim, actor)
	if !r.session.SetAuthority(actor) {
		return domain.ErrNotAuthority
	}
	r.logger.Info().Int("actor", int(actor)).Msg("authority claimed")
	return nil
}

func (r *Recorder) Announce(_ context.Context, message string) error {
	r.mu.Lock()
	r.announced = append(r.announced, message)
	r.mu.Unlock()
	r.logger.Info().Str("message", message).Msg("announce")
	return nil
}

func (r *Recorder) record(kind string, target domain.ActorID) {
	r.mu.Lock()
	r.actions = append(r.actions, Action{Kind: kind, Target: target})
	r.mu.Unlock()
}

// Actions returns the recorded actions in call order.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Count returns how many actions of kind were recorded.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == ActionNoop {
		return r.noops
	}
	n := 0
	for _, a := range r.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Announcements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.announced...)
}

package ports

import (
	"context"

	"github.com/bnema/session-guard/internal/domain"
)

// Session is the roster view supplied by the transport layer.
type Session interface {
	InSession() bool
	Local() (domain.Participant, bool)
	Participants() []domain.Participant
	Participant(id domain.ActorID) (domain.Participant, bool)
	Authority() (domain.Participant, bool)
}

// Enforcer sends the outbound actions used to neutralize a participant.
type Enforcer interface {
	Relocate(ctx context.Context, target domain.ActorID, to domain.Vector) error
	Incapacitate(ctx context.Context, target domain.ActorID) error
	Recover(ctx context.Context, target domain.ActorID, at domain.Vector) error
	DestroyRemnants(ctx context.Context, target domain.ActorID) (int, error)
	SendNoop(ctx context.Context, target domain.ActorID, payload []byte) error
}

type AuthorityTransport interface {
	ClaimAuthority(ctx context.Context, actor domain.ActorID) error
}

// Announcer shows a message to everyone in the session.
type Announcer interface {
	Announce(ctx context.Context, message string) error
}

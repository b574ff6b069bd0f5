package ports

import (
	"context"

	"github.com/bnema/session-guard/internal/domain"
)

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, p domain.Participant) (string, error)
}

package ports

import (
	"context"

	"github.com/bnema/session-guard/internal/domain"
)

// BanRepository persists the full ban list. Load returns domain.ErrBanListNotFound
// when nothing has been stored yet.
type BanRepository interface {
	Load(ctx context.Context) ([]domain.BanRecord, error)
	Save(ctx context.Context, records []domain.BanRecord) error
}

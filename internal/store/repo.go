package store

import (
	"context"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// Repo loads and saves the full user-state snapshot. A save replaces the
// whole stored state atomically; an empty store loads as an empty snapshot.
type Repo interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, s *domain.Snapshot) error
	Close() error
}

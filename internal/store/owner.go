package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// Owner serializes every load-mutate-save cycle on a Repo, so concurrent
// commands, handshakes and scheduler ticks never overwrite each other.
type Owner struct {
	repo Repo
	mu   sync.Mutex
}

// NewOwner wraps repo.
func NewOwner(repo Repo) *Owner {
	return &Owner{repo: repo}
}

// View loads a snapshot for read-only use.
func (o *Owner) View(ctx context.Context, fn func(*domain.Snapshot) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap, err := o.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return fn(snap)
}

// Update loads a snapshot, runs fn and saves the result when fn reports a
// change. An error from fn discards the mutation.
func (o *Owner) Update(ctx context.Context, fn func(*domain.Snapshot) (bool, error)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap, err := o.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	changed, err := fn(snap)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := o.repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

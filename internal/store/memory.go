package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// MemoryRepo keeps the snapshot as an encoded document in memory.
// Loads return independent copies, like a real store would.
type MemoryRepo struct {
	mu    sync.Mutex
	doc   []byte
	saves int
}

// NewMemoryRepo returns an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Load(_ context.Context) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := domain.NewSnapshot()
	if len(r.doc) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(r.doc, snap); err != nil {
		return nil, err
	}
	if snap.Users == nil {
		snap.Users = make(map[int64]*domain.User)
	}
	return snap, nil
}

func (r *MemoryRepo) Save(_ context.Context, s *domain.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = b
	r.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (r *MemoryRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *MemoryRepo) Close() error { return nil }

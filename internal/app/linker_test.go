package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ykvlv/sidekick-bot/internal/domain"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/store"
)

func TestBuddyLinker(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepo()
	owner := store.NewOwner(repo)
	l := ledger.New()

	err := owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		_, err := l.Register(s, 1, ledger.Registration{Name: "Ann", Defaults: domain.CoreTasks()})
		return err == nil, err
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	link := buddyLinker{owner: owner, ledger: l}
	if err := link.LinkBuddy(ctx, 1, 2); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := link.LinkBuddy(ctx, 3, 1); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("want ErrNotRegistered for unknown inviter, got %v", err)
	}

	_ = owner.View(ctx, func(s *domain.Snapshot) error {
		u, _ := s.User(1)
		if u.BuddyID == nil || *u.BuddyID != 2 {
			t.Fatalf("buddy not stored: %v", u.BuddyID)
		}
		return nil
	})
}

package app

import (
	"context"

	"github.com/ykvlv/sidekick-bot/internal/domain"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/store"
)

// buddyLinker persists accepted pairings through the snapshot owner.
type buddyLinker struct {
	owner  *store.Owner
	ledger *ledger.Ledger
}

func (b buddyLinker) LinkBuddy(ctx context.Context, inviterID, buddyID int64) error {
	return b.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		if err := b.ledger.LinkBuddy(s, inviterID, buddyID); err != nil {
			return false, err
		}
		return true, nil
	})
}

package ledger

import (
	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// ResetDailyCustom clears completion on every active daily custom task of
// every user. It reports whether anything changed.
func (l *Ledger) ResetDailyCustom(s *domain.Snapshot) bool {
	return resetKind(s, domain.KindDaily)
}

// ResetWeeklyCustom clears completion on every active weekly custom task.
func (l *Ledger) ResetWeeklyCustom(s *domain.Snapshot) bool {
	return resetKind(s, domain.KindWeekly)
}

// RollAllEpochs rolls each user's daily epoch forward to today.
func (l *Ledger) RollAllEpochs(s *domain.Snapshot) bool {
	changed := false
	for _, id := range s.UserIDs() {
		if l.RollDailyEpoch(s.Users[id]) {
			changed = true
		}
	}
	return changed
}

// ResetWeeklyPoints zeroes the weekly counter of one user.
func (l *Ledger) ResetWeeklyPoints(u *domain.User) bool {
	if u.WeeklyPoints == 0 {
		return false
	}
	u.WeeklyPoints = 0
	return true
}

func resetKind(s *domain.Snapshot, kind domain.TaskKind) bool {
	changed := false
	for _, id := range s.UserIDs() {
		for _, t := range s.Users[id].ActiveCustomOfKind(kind) {
			if t.Completed {
				t.Completed = false
				changed = true
			}
		}
	}
	return changed
}

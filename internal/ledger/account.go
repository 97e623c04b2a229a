package ledger

import (
	"fmt"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// Registration carries the answers collected by the registration dialog.
type Registration struct {
	Name     string
	TZ       string // empty when skipped
	Defaults []domain.TaskTemplate
}

// Register creates a user with the chosen default set and the registration gift.
func (l *Ledger) Register(s *domain.Snapshot, userID int64, reg Registration) (*domain.User, error) {
	if _, err := s.User(userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	}
	if len(reg.Defaults) != domain.DefaultSetSize {
		return nil, fmt.Errorf("%w: need %d default tasks, got %d", domain.ErrInvalidSelection, domain.DefaultSetSize, len(reg.Defaults))
	}
	if reg.TZ != "" {
		tz, err := domain.ValidateTZ(reg.TZ)
		if err != nil {
			return nil, err
		}
		reg.TZ = tz
	}

	now := l.now().UTC()
	u := &domain.User{
		ID:           userID,
		Name:         reg.Name,
		RegisteredAt: now,
		TZ:           reg.TZ,
		Defaults:     append([]domain.TaskTemplate(nil), reg.Defaults...),
		Epoch:        domain.DailyEpoch{Date: domain.DateKey(now), Completed: []string{}},
		Custom:       []domain.CustomTask{},
	}
	u.Award(domain.RegistrationGift)
	if s.Users == nil {
		s.Users = make(map[int64]*domain.User)
	}
	s.Users[userID] = u
	return u, nil
}

// Deregister permanently removes the user record.
func (l *Ledger) Deregister(s *domain.Snapshot, userID int64) error {
	if _, err := s.User(userID); err != nil {
		return err
	}
	delete(s.Users, userID)
	return nil
}

// CanJournal fails with ErrAlreadyJournaled when today's entry was written.
func (l *Ledger) CanJournal(s *domain.Snapshot, userID int64) error {
	u, err := s.User(userID)
	if err != nil {
		return err
	}
	if u.LastJournal == l.today() {
		return domain.ErrAlreadyJournaled
	}
	return nil
}

// RecordJournal awards the journaling reward once per UTC day. The entry
// text itself is never passed in.
func (l *Ledger) RecordJournal(s *domain.Snapshot, userID int64) (int, error) {
	if err := l.CanJournal(s, userID); err != nil {
		return 0, err
	}
	u, _ := s.User(userID)
	u.LastJournal = l.today()
	u.Award(domain.JournalReward)
	return domain.JournalReward, nil
}

// SetPaused toggles scheduled sends for a user.
func (l *Ledger) SetPaused(s *domain.Snapshot, userID int64, paused bool) error {
	u, err := s.User(userID)
	if err != nil {
		return err
	}
	u.Paused = paused
	return nil
}

// SetTimezone validates and stores an IANA zone name.
func (l *Ledger) SetTimezone(s *domain.Snapshot, userID int64, tz string) (string, error) {
	u, err := s.User(userID)
	if err != nil {
		return "", err
	}
	tz, err = domain.ValidateTZ(tz)
	if err != nil {
		return "", err
	}
	u.TZ = tz
	return tz, nil
}

// LinkBuddy records buddyID as the accountability buddy of userID.
func (l *Ledger) LinkBuddy(s *domain.Snapshot, userID, buddyID int64) error {
	u, err := s.User(userID)
	if err != nil {
		return err
	}
	id := buddyID
	u.BuddyID = &id
	return nil
}

// Package ledger owns task selection, completion tracking and the point
// account of every user. All operations act on an already loaded snapshot;
// persisting it is the caller's job.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// Ledger applies task and point mutations to a snapshot.
type Ledger struct {
	now   func() time.Time
	newID func() uuid.UUID
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs overrides custom task id generation.
func WithIDs(newID func() uuid.UUID) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New creates a Ledger using the wall clock and random UUIDs by default.
func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now, newID: uuid.New}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Ledger) today() string {
	return domain.DateKey(l.now().UTC())
}

// RollDailyEpoch replaces a stale epoch with an empty one for today (UTC).
// It reports whether the epoch changed; a second call on the same day is a no-op.
func (l *Ledger) RollDailyEpoch(u *domain.User) bool {
	today := l.today()
	if u.Epoch.Date == today {
		return false
	}
	u.Epoch = domain.DailyEpoch{Date: today, Completed: []string{}}
	return true
}

// ListTasks returns defaults (checked against today's epoch) followed by
// active custom tasks, in insertion order.
func (l *Ledger) ListTasks(s *domain.Snapshot, userID int64) ([]domain.TaskView, error) {
	u, err := s.User(userID)
	if err != nil {
		return nil, err
	}
	l.RollDailyEpoch(u)
	return listing(u), nil
}

func listing(u *domain.User) []domain.TaskView {
	views := make([]domain.TaskView, 0, len(u.Defaults)+len(u.Custom))
	for i, d := range u.Defaults {
		views = append(views, domain.TaskView{
			Ref:         domain.TaskRef{Source: domain.SourceDefault, DefaultIndex: i},
			Description: d.Description,
			Difficulty:  d.Difficulty,
			Completed:   u.Epoch.Has(d.Description),
		})
	}
	for _, t := range u.ActiveCustom() {
		views = append(views, domain.TaskView{
			Ref:         domain.TaskRef{Source: domain.SourceCustom, CustomID: t.ID},
			Description: t.Description,
			Difficulty:  t.Difficulty,
			Kind:        t.Kind,
			Completed:   t.Completed,
		})
	}
	return views
}

// AddCustomTask appends a custom task. A difficulty of zero selects the
// kind's default. The very first custom task a user ever creates earns
// FirstCustomBonus; the returned bonus is zero afterwards.
func (l *Ledger) AddCustomTask(s *domain.Snapshot, userID int64, kind domain.TaskKind, description string, difficulty int) (domain.CustomTask, int, error) {
	u, err := s.User(userID)
	if err != nil {
		return domain.CustomTask{}, 0, err
	}
	if kind != domain.KindDaily && kind != domain.KindWeekly {
		return domain.CustomTask{}, 0, fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	if description == "" {
		return domain.CustomTask{}, 0, domain.ErrEmptyDescription
	}
	if difficulty == 0 {
		difficulty = kind.DefaultDifficulty()
	}
	if difficulty < 1 || difficulty > domain.MaxDifficulty {
		return domain.CustomTask{}, 0, fmt.Errorf("%w: %d", domain.ErrInvalidDifficulty, difficulty)
	}

	bonus := 0
	if len(u.Custom) == 0 {
		bonus = domain.FirstCustomBonus
	}

	task := domain.CustomTask{
		ID:          l.newID(),
		Description: description,
		Kind:        kind,
		Difficulty:  difficulty,
		CreatedAt:   l.now().UTC(),
		State:       domain.TaskActive,
	}
	u.Custom = append(u.Custom, task)
	u.Award(bonus)
	return task, bonus, nil
}

// RemoveCustomTask tombstones the custom task at the 1-based position of the
// current active list.
func (l *Ledger) RemoveCustomTask(s *domain.Snapshot, userID int64, index int) (domain.CustomTask, error) {
	u, err := s.User(userID)
	if err != nil {
		return domain.CustomTask{}, err
	}
	active := u.ActiveCustom()
	if index < 1 || index > len(active) {
		return domain.CustomTask{}, fmt.Errorf("%w: %d (have %d)", domain.ErrInvalidIndex, index, len(active))
	}
	return l.RemoveCustomTaskByID(s, userID, active[index-1].ID)
}

// RemoveCustomTaskByID tombstones a custom task by its stable id. Removing a
// task that is already deleted or unknown fails with ErrInvalidIndex.
func (l *Ledger) RemoveCustomTaskByID(s *domain.Snapshot, userID int64, id uuid.UUID) (domain.CustomTask, error) {
	u, err := s.User(userID)
	if err != nil {
		return domain.CustomTask{}, err
	}
	t := u.FindCustom(id)
	if t == nil || !t.Active() {
		return domain.CustomTask{}, fmt.Errorf("%w: task %s is not active", domain.ErrInvalidIndex, id)
	}
	now := l.now().UTC()
	t.State = domain.TaskDeleted
	t.DeletedAt = &now
	t.Completed = false
	return *t, nil
}

package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Points awarded outside task completion.
const (
	RegistrationGift = 10
	FirstCustomBonus = 5
	JournalReward    = 5
)

// TaskKind is the reset cadence of a custom task.
type TaskKind string

const (
	KindDaily  TaskKind = "daily"
	KindWeekly TaskKind = "weekly"
)

// DefaultDifficulty is used when a custom task is added without explicit points.
func (k TaskKind) DefaultDifficulty() int {
	if k == KindWeekly {
		return 2
	}
	return 1
}

// TaskState tags a custom task as live or tombstoned. Deleted is terminal.
type TaskState string

const (
	TaskActive  TaskState = "active"
	TaskDeleted TaskState = "deleted"
)

// TaskTemplate is a catalog entry; a user's default set is ten of them.
type TaskTemplate struct {
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
}

// CustomTask is a user-defined task. It is never physically removed.
type CustomTask struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	Kind        TaskKind   `json:"kind"`
	Difficulty  int        `json:"difficulty"`
	CreatedAt   time.Time  `json:"created_at"`
	State       TaskState  `json:"state"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	Completed   bool       `json:"completed"`
}

// Active reports whether the task takes part in listings and scoring.
func (t *CustomTask) Active() bool { return t.State != TaskDeleted }

// DailyEpoch tracks which default tasks were completed on one UTC date.
type DailyEpoch struct {
	Date      string   `json:"date"` // YYYY-MM-DD, UTC
	Completed []string `json:"completed"`
}

// Has reports whether the description was completed in this epoch.
func (e *DailyEpoch) Has(description string) bool {
	for _, d := range e.Completed {
		if d == description {
			return true
		}
	}
	return false
}

// Trigger names a per-user local-time notification.
type Trigger string

const (
	TriggerMorning Trigger = "morning"
	TriggerNightly Trigger = "nightly"
	TriggerWeekly  Trigger = "weekly"
)

// User is the full per-user record persisted in the snapshot.
type User struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	RegisteredAt time.Time      `json:"registered_at"`
	TZ           string         `json:"tz,omitempty"` // IANA name, empty until chosen
	Paused       bool           `json:"paused"`
	TotalPoints  int            `json:"total_points"`
	WeeklyPoints int            `json:"weekly_points"`
	BuddyID      *int64         `json:"buddy_id,omitempty"`
	Defaults     []TaskTemplate `json:"defaults"`
	Epoch        DailyEpoch     `json:"epoch"`
	Custom       []CustomTask   `json:"custom"`
	LastJournal  string         `json:"last_journal,omitempty"` // YYYY-MM-DD, UTC

	// Fired records the local calendar key of the last firing per trigger.
	Fired map[Trigger]string `json:"fired,omitempty"`
}

// ActiveCustom returns pointers to live custom tasks in insertion order.
// Tombstoned tasks are never returned.
func (u *User) ActiveCustom() []*CustomTask {
	res := make([]*CustomTask, 0, len(u.Custom))
	for i := range u.Custom {
		if u.Custom[i].Active() {
			res = append(res, &u.Custom[i])
		}
	}
	return res
}

// ActiveCustomOfKind returns live custom tasks of one kind.
func (u *User) ActiveCustomOfKind(kind TaskKind) []*CustomTask {
	var res []*CustomTask
	for _, t := range u.ActiveCustom() {
		if t.Kind == kind {
			res = append(res, t)
		}
	}
	return res
}

// FindCustom looks a custom task up by its stable id, active or not.
func (u *User) FindCustom(id uuid.UUID) *CustomTask {
	for i := range u.Custom {
		if u.Custom[i].ID == id {
			return &u.Custom[i]
		}
	}
	return nil
}

// Award adds points to both counters. Negative amounts are ignored.
func (u *User) Award(points int) {
	if points <= 0 {
		return
	}
	u.TotalPoints += points
	u.WeeklyPoints += points
}

// LastFired returns the calendar key recorded for a trigger.
func (u *User) LastFired(t Trigger) string {
	if u.Fired == nil {
		return ""
	}
	return u.Fired[t]
}

// MarkFired records the calendar key for a trigger.
func (u *User) MarkFired(t Trigger, key string) {
	if u.Fired == nil {
		u.Fired = make(map[Trigger]string)
	}
	u.Fired[t] = key
}

// TaskSource tells which structure a listed task lives in.
type TaskSource string

const (
	SourceDefault TaskSource = "default"
	SourceCustom  TaskSource = "custom"
)

// TaskRef is a stable address of a listed task: a default slot or a custom id.
type TaskRef struct {
	Source       TaskSource
	DefaultIndex int
	CustomID     uuid.UUID
}

// TaskView is one row of the combined (defaults then custom) listing.
type TaskView struct {
	Ref         TaskRef
	Description string
	Difficulty  int
	Kind        TaskKind // empty for defaults
	Completed   bool
}

// Meta holds the global UTC reset keys.
type Meta struct {
	LastDailyReset  string `json:"last_daily_reset,omitempty"`  // YYYY-MM-DD
	LastWeeklyReset string `json:"last_weekly_reset,omitempty"` // Friday that opened the week
}

// Snapshot is the whole persisted state.
type Snapshot struct {
	Users map[int64]*User `json:"users"`
	Meta  Meta            `json:"meta"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Users: make(map[int64]*User)}
}

// User returns the registered user or ErrNotRegistered.
func (s *Snapshot) User(id int64) (*User, error) {
	if s == nil || s.Users == nil {
		return nil, ErrNotRegistered
	}
	u, ok := s.Users[id]
	if !ok || u == nil {
		return nil, ErrNotRegistered
	}
	return u, nil
}

// UserIDs returns registered ids in ascending order.
func (s *Snapshot) UserIDs() []int64 {
	ids := make([]int64, 0, len(s.Users))
	for id := range s.Users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/domain"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/render"
	"github.com/ykvlv/sidekick-bot/internal/store"
)

// Sender is a minimal interface the scheduler needs to deliver a text message.
// telegram.Gateway implements it.
type Sender interface {
	SendDirect(ctx context.Context, userID int64, text string) error
}

// Config tunes the tick loop.
type Config struct {
	Interval time.Duration // tick period
	Catchup  time.Duration // how late a delayed tick may still fire a trigger
}

// Scheduler evaluates reminders, summaries and resets once per tick.
type Scheduler struct {
	owner  *store.Owner
	ledger *ledger.Ledger
	log    *zap.Logger
	sender Sender
	cfg    Config
	now    func() time.Time
}

// New creates a new Scheduler.
func New(owner *store.Owner, l *ledger.Ledger, log *zap.Logger, sender Sender, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Scheduler{
		owner:  owner,
		ledger: l,
		log:    log,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock overrides the time source; it should match the ledger's clock.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run ticks immediately and then every interval until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// outbound is a message produced by a tick, delivered after the snapshot is saved.
type outbound struct {
	userID  int64
	trigger domain.Trigger
	text    string
}

// Tick performs one scheduling cycle: one load, resets, per-user triggers,
// at most one save, then delivery.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	var outbox []outbound

	err := s.owner.Update(ctx, func(snap *domain.Snapshot) (bool, error) {
		outbox = outbox[:0]
		changed := s.runResets(snap, now.UTC())
		for _, id := range snap.UserIDs() {
			msgs, userChanged := s.evaluateUser(snap, id, now)
			outbox = append(outbox, msgs...)
			changed = changed || userChanged
		}
		return changed, nil
	})
	if err != nil {
		s.log.Error("tick failed", zap.Error(err))
		return
	}

	for _, m := range outbox {
		if err := s.sender.SendDirect(ctx, m.userID, m.text); err != nil {
			s.log.Error("send failed",
				zap.Error(err),
				zap.Int64("userID", m.userID),
				zap.String("trigger", string(m.trigger)),
			)
			continue
		}
		s.log.Debug("notification sent", zap.Int64("userID", m.userID), zap.String("trigger", string(m.trigger)))
	}
}

// runResets applies the global UTC-midnight resets that have not run yet for
// the current UTC day and UTC week.
func (s *Scheduler) runResets(snap *domain.Snapshot, nowUTC time.Time) bool {
	changed := false

	if today := domain.DateKey(nowUTC); snap.Meta.LastDailyReset != today {
		s.ledger.ResetDailyCustom(snap)
		s.ledger.RollAllEpochs(snap)
		snap.Meta.LastDailyReset = today
		changed = true
		s.log.Info("daily reset", zap.String("date", today))
	}

	if week := domain.WeekKey(nowUTC); snap.Meta.LastWeeklyReset != week {
		s.ledger.ResetWeeklyCustom(snap)
		snap.Meta.LastWeeklyReset = week
		changed = true
		s.log.Info("weekly reset", zap.String("week", week))
	}
	return changed
}

// evaluateUser checks every local-time trigger for one user. A panic or bad
// timezone only skips this user.
func (s *Scheduler) evaluateUser(snap *domain.Snapshot, id int64, now time.Time) (msgs []outbound, changed bool) {
	u := snap.Users[id]
	if u == nil || u.Paused || u.TZ == "" {
		return nil, false
	}
	log := s.log.With(zap.Int64("userID", id))

	defer func() {
		if r := recover(); r != nil {
			log.Error("user evaluation panicked", zap.Any("panic", r))
			msgs, changed = nil, false
		}
	}()

	local, err := domain.LocalNow(now, u.TZ)
	if err != nil {
		log.Warn("invalid timezone, skipping", zap.String("tz", u.TZ), zap.Error(err))
		return nil, false
	}

	for _, spec := range domain.Triggers() {
		key, due := spec.Due(local, u.LastFired(spec.Trigger), s.cfg.Catchup)
		if !due {
			continue
		}
		text, err := s.compose(snap, u, spec.Trigger)
		if err != nil {
			log.Error("compose failed", zap.String("trigger", string(spec.Trigger)), zap.Error(err))
			continue
		}
		u.MarkFired(spec.Trigger, key)
		changed = true
		msgs = append(msgs, outbound{userID: id, trigger: spec.Trigger, text: text})
	}
	return msgs, changed
}

// compose renders a trigger's message and applies its side effects.
func (s *Scheduler) compose(snap *domain.Snapshot, u *domain.User, tr domain.Trigger) (string, error) {
	switch tr {
	case domain.TriggerMorning:
		return render.MorningReminder(u), nil

	case domain.TriggerNightly:
		views, err := s.ledger.ListTasks(snap, u.ID)
		if err != nil {
			return "", err
		}
		return render.NightlySummary(views, s.ledger.PointsToday(u)), nil

	case domain.TriggerWeekly:
		views, err := s.ledger.ListTasks(snap, u.ID)
		if err != nil {
			return "", err
		}
		text := render.WeeklySummary(u, views)
		s.ledger.ResetWeeklyPoints(u)
		return text, nil
	}
	return "", fmt.Errorf("unknown trigger %q", tr)
}

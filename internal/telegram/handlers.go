package telegram

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/assets"
	"github.com/ykvlv/sidekick-bot/internal/buddy"
	"github.com/ykvlv/sidekick-bot/internal/domain"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/render"
)

// textReply accepts any typed message; button presses are left to their own prompts.
func textReply(s string) bool {
	return strings.TrimSpace(s) != "" && !strings.HasPrefix(s, tzPrefix)
}

func anyReply(s string) bool { return strings.TrimSpace(s) != "" }

// --- Generic helpers ---

// fail reports err to the user, mapping domain errors to friendly texts.
func (r *Router) fail(userID int64, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		r.reply(userID, notRegisteredText)
	case errors.Is(err, domain.ErrAlreadyRegistered):
		r.reply(userID, alreadyRegistered)
	case errors.Is(err, domain.ErrAlreadyJournaled):
		r.reply(userID, journalAlreadyText)
	case errors.Is(err, domain.ErrInvalidTimezone):
		r.reply(userID, "Invalid time zone. Please use a valid name such as Europe/Paris.")
	case errors.Is(err, domain.ErrInvalidIndex):
		r.reply(userID, "Invalid task number.")
	case errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrEmptyDescription):
		r.reply(userID, "Invalid input: "+err.Error())
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
		// another prompt took over, or we are shutting down
	default:
		r.log.Error(op+" failed", zap.Int64("userID", userID), zap.Error(err))
		r.reply(userID, storageErrorText)
	}
}

// await parks a prompt for the user with the router's prompt timeout.
func (r *Router) await(ctx context.Context, userID int64, match func(string) bool) (string, error) {
	return r.gw.AwaitReply(ctx, userID, match, r.timeouts.Prompt)
}

// menu sends text with the main reply keyboard matching the user's pause state.
func (r *Router) menu(userID int64, text string, paused bool) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = mainMenuKeyboard(paused)
	r.gw.send(userID, msg)
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, userID int64, _ string) {
	r.reply(userID, startText)
}

func (r *Router) handleHelp(ctx context.Context, userID int64, _ string) {
	r.reply(userID, helpText)
}

func (r *Router) handleRegister(ctx context.Context, userID int64, _ string) {
	err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		if _, err := s.User(userID); err == nil {
			return domain.ErrAlreadyRegistered
		}
		return nil
	})
	if err != nil {
		r.fail(userID, "register", err)
		return
	}

	r.reply(userID, askNameText)
	name, err := r.await(ctx, userID, textReply)
	if err != nil {
		r.registrationAborted(userID, err)
		return
	}
	name = strings.TrimSpace(name)

	tz, err := r.askTimezone(ctx, userID)
	if err != nil {
		r.registrationAborted(userID, err)
		return
	}

	defaults, err := r.askSelection(ctx, userID)
	if err != nil {
		r.registrationAborted(userID, err)
		return
	}

	var u domain.User
	err = r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		created, err := r.ledger.Register(s, userID, ledger.Registration{Name: name, TZ: tz, Defaults: defaults})
		if err != nil {
			return false, err
		}
		u = *created
		return true, nil
	})
	if err != nil {
		r.fail(userID, "register", err)
		return
	}
	r.log.Info("user registered", zap.Int64("userID", userID), zap.String("tz", tz))
	r.menu(userID, render.Welcome(&u), false)
}

func (r *Router) registrationAborted(userID int64, err error) {
	if errors.Is(err, domain.ErrTimeout) {
		r.reply(userID, registerTimeoutText)
		return
	}
	r.fail(userID, "register", err)
}

// askTimezone offers the preset keyboard and accepts a typed zone too. A
// timeout or "Skip" leaves the zone unset.
func (r *Router) askTimezone(ctx context.Context, userID int64) (string, error) {
	msg := tgbotapi.NewMessage(userID, askTZText)
	msg.ReplyMarkup = tzPresetsKeyboard(true)
	r.gw.send(userID, msg)

	for {
		answer, err := r.await(ctx, userID, anyReply)
		if errors.Is(err, domain.ErrTimeout) || answer == tzSkip {
			r.reply(userID, noTZText)
			return "", nil
		}
		if err != nil {
			return "", err
		}
		tz, err := domain.ValidateTZ(strings.TrimPrefix(answer, tzPrefix))
		if err == nil {
			r.reply(userID, "Time zone set to "+tz+".")
			return tz, nil
		}
		r.reply(userID, "Invalid time zone. Pick a button or type one like Europe/Paris.")
	}
}

// askSelection repeats the catalog prompt until a valid set arrives.
func (r *Router) askSelection(ctx context.Context, userID int64) ([]domain.TaskTemplate, error) {
	r.reply(userID, render.CatalogPrompt())
	for {
		answer, err := r.await(ctx, userID, textReply)
		if err != nil {
			return nil, err
		}
		defaults, err := domain.ParseTaskSelection(answer)
		if err == nil {
			return defaults, nil
		}
		r.reply(userID, fmt.Sprintf("Invalid selection. Please choose exactly %d different numbers between 1 and %d, or reply 'Default'.",
			domain.DefaultSetSize, len(domain.Catalog())))
	}
}

func (r *Router) handleList(ctx context.Context, userID int64, _ string) {
	var views []domain.TaskView
	err := r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		u, err := s.User(userID)
		if err != nil {
			return false, err
		}
		rolled := r.ledger.RollDailyEpoch(u)
		views, err = r.ledger.ListTasks(s, userID)
		return rolled, err
	})
	if err != nil {
		r.fail(userID, "list", err)
		return
	}
	r.reply(userID, render.TaskList(views))
}

func (r *Router) handleAdd(ctx context.Context, userID int64, args string) {
	if args == "" {
		r.reply(userID, "Usage: /add <daily|weekly>[:points] <description>\nExample: /add weekly:3 Call grandma")
		return
	}
	kind, difficulty, desc, err := domain.ParseAddArgs(args)
	if err != nil {
		r.fail(userID, "add", err)
		return
	}

	var (
		task  domain.CustomTask
		bonus int
	)
	err = r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		task, bonus, err = r.ledger.AddCustomTask(s, userID, kind, desc, difficulty)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "add", err)
		return
	}

	text := fmt.Sprintf("Task added: '%s' as a %s task with points: %d.", task.Description, task.Kind, task.Difficulty)
	if bonus > 0 {
		text += fmt.Sprintf("\nCongratulations on adding your first custom task! You've earned %d bonus points.", bonus)
	}
	r.reply(userID, text)
}

func (r *Router) handleRemove(ctx context.Context, userID int64, _ string) {
	var tasks []domain.CustomTask
	err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		u, err := s.User(userID)
		if err != nil {
			return err
		}
		for _, t := range u.ActiveCustom() {
			tasks = append(tasks, *t)
		}
		return nil
	})
	if err != nil {
		r.fail(userID, "remove", err)
		return
	}
	if len(tasks) == 0 {
		r.reply(userID, noCustomText)
		return
	}

	r.reply(userID, render.RemovalPrompt(tasks))
	answer, err := r.await(ctx, userID, textReply)
	if errors.Is(err, domain.ErrTimeout) {
		r.reply(userID, removeTimeoutText)
		return
	}
	if err != nil {
		r.fail(userID, "remove", err)
		return
	}
	idx, err := domain.ParseIndexList(answer)
	if err != nil || len(idx) != 1 || idx[0] < 1 || idx[0] > len(tasks) {
		r.reply(userID, "Invalid task number.")
		return
	}

	// The prompt showed a snapshot; resolve by id so concurrent edits cannot shift it.
	var removed domain.CustomTask
	err = r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		removed, err = r.ledger.RemoveCustomTaskByID(s, userID, tasks[idx[0]-1].ID)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "remove", err)
		return
	}
	r.reply(userID, fmt.Sprintf("Custom task '%s' removed.", removed.Description))
}

func (r *Router) handleComplete(ctx context.Context, userID int64, args string) {
	if args == "" {
		var views []domain.TaskView
		err := r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
			u, err := s.User(userID)
			if err != nil {
				return false, err
			}
			rolled := r.ledger.RollDailyEpoch(u)
			views, err = r.ledger.ListTasks(s, userID)
			return rolled, err
		})
		if err != nil {
			r.fail(userID, "complete", err)
			return
		}
		r.reply(userID, render.TaskList(views)+"\n"+completeAskText)
		answer, err := r.await(ctx, userID, textReply)
		if errors.Is(err, domain.ErrTimeout) {
			r.reply(userID, completeTimeoutText)
			return
		}
		if err != nil {
			r.fail(userID, "complete", err)
			return
		}
		args = answer
	}

	indices, err := domain.ParseIndexList(args)
	if err != nil {
		r.reply(userID, "Please send task numbers separated by commas, e.g. /complete 1,3,5")
		return
	}

	var rep ledger.CompletionReport
	err = r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		rep, err = r.ledger.CompleteTasks(s, userID, indices)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "complete", err)
		return
	}
	r.log.Debug("tasks completed", zap.Int64("userID", userID), zap.Int("awarded", rep.Awarded))
	r.reply(userID, render.CompletionReport(rep))
}

func (r *Router) handleBuddy(ctx context.Context, userID int64, _ string) {
	if err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		_, err := s.User(userID)
		return err
	}); err != nil {
		r.fail(userID, "buddy", err)
		return
	}

	ticket, err := r.buddy.IssueCode(ctx, userID)
	switch {
	case errors.Is(err, buddy.ErrRequestPending):
		code, _ := r.buddy.Pending(userID)
		r.reply(userID, fmt.Sprintf(buddyPendingFmt, code))
		return
	case errors.Is(err, buddy.ErrCodeSpaceExhausted):
		r.log.Warn("buddy code space exhausted", zap.Int64("userID", userID))
		r.reply(userID, "Too many buddy requests are open right now. Please try again in a few minutes.")
		return
	case err != nil:
		r.fail(userID, "buddy", err)
		return
	}
	r.reply(userID, fmt.Sprintf(buddyIssuedFmt, ticket.Code, r.timeouts.Code))
}

func (r *Router) handleJournal(ctx context.Context, userID int64, _ string) {
	if err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		return r.ledger.CanJournal(s, userID)
	}); err != nil {
		r.fail(userID, "journal", err)
		return
	}

	prompts := assets.JournalPrompts()
	r.reply(userID, fmt.Sprintf(journalIntroFmt, prompts[rand.Intn(len(prompts))]))

	// The entry is consumed and dropped; only the fact of journaling is kept.
	if _, err := r.gw.AwaitReply(ctx, userID, textReply, r.timeouts.Journal); err != nil {
		if errors.Is(err, domain.ErrTimeout) {
			r.reply(userID, journalTimeoutText)
			return
		}
		r.fail(userID, "journal", err)
		return
	}

	var points int
	err := r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		var err error
		points, err = r.ledger.RecordJournal(s, userID)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "journal", err)
		return
	}
	r.reply(userID, fmt.Sprintf(journalDoneFmt, points))
}

func (r *Router) handleDeregister(ctx context.Context, userID int64, _ string) {
	if err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		_, err := s.User(userID)
		return err
	}); err != nil {
		r.fail(userID, "deregister", err)
		return
	}

	r.reply(userID, deregisterAskText)
	answer, err := r.await(ctx, userID, textReply)
	if errors.Is(err, domain.ErrTimeout) || (err == nil && !strings.EqualFold(strings.TrimSpace(answer), "yes")) {
		r.reply(userID, deregisterStopText)
		return
	}
	if err != nil {
		r.fail(userID, "deregister", err)
		return
	}

	err = r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		err := r.ledger.Deregister(s, userID)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "deregister", err)
		return
	}
	r.log.Info("user deregistered", zap.Int64("userID", userID))
	msg := tgbotapi.NewMessage(userID, deregisterDoneText)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	r.gw.send(userID, msg)
}

func (r *Router) handlePoints(ctx context.Context, userID int64, _ string) {
	var text string
	err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		u, err := s.User(userID)
		if err != nil {
			return err
		}
		text = render.Points(u)
		return nil
	})
	if err != nil {
		r.fail(userID, "points", err)
		return
	}
	r.reply(userID, text)
}

func (r *Router) handlePause(ctx context.Context, userID int64, _ string) {
	r.setPaused(ctx, userID, true)
}

func (r *Router) handleUnpause(ctx context.Context, userID int64, _ string) {
	r.setPaused(ctx, userID, false)
}

func (r *Router) setPaused(ctx context.Context, userID int64, paused bool) {
	err := r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		err := r.ledger.SetPaused(s, userID, paused)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "pause", err)
		return
	}
	text := "✅ Reminders resumed."
	if paused {
		text = "⏸ Reminders paused. Use /unpause to resume."
	}
	r.menu(userID, text, paused)
}

func (r *Router) handleSetTimezone(ctx context.Context, userID int64, args string) {
	if args != "" {
		r.setTimezone(ctx, userID, args)
		return
	}
	if err := r.owner.View(ctx, func(s *domain.Snapshot) error {
		_, err := s.User(userID)
		return err
	}); err != nil {
		r.fail(userID, "settimezone", err)
		return
	}
	msg := tgbotapi.NewMessage(userID, "Select your time zone, or send /settimezone Region/City:")
	msg.ReplyMarkup = tzPresetsKeyboard(false)
	r.gw.send(userID, msg)
}

func (r *Router) setTimezone(ctx context.Context, userID int64, zone string) {
	var tz string
	err := r.owner.Update(ctx, func(s *domain.Snapshot) (bool, error) {
		var err error
		tz, err = r.ledger.SetTimezone(s, userID, zone)
		return err == nil, err
	})
	if err != nil {
		r.fail(userID, "settimezone", err)
		return
	}
	r.reply(userID, "Time zone set to "+tz+".")
}

func (r *Router) handleCrisis(ctx context.Context, userID int64, _ string) {
	r.reply(userID, assets.Crisis())
}

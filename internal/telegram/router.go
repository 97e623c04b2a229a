package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/buddy"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/store"
)

// Timeouts bounds every conversational prompt.
type Timeouts struct {
	Prompt  time.Duration // registration, removal, confirmations
	Journal time.Duration
	Code    time.Duration // shown to the inviter
}

// Router wires Telegram updates to command handlers. Handlers that converse
// run on their own goroutine so the update loop keeps feeding replies.
type Router struct {
	gw       *Gateway
	log      *zap.Logger
	owner    *store.Owner
	ledger   *ledger.Ledger
	buddy    *buddy.Service
	timeouts Timeouts
}

// NewRouter creates a new Telegram router.
func NewRouter(gw *Gateway, log *zap.Logger, owner *store.Owner, l *ledger.Ledger, pairing *buddy.Service, timeouts Timeouts) *Router {
	return &Router{
		gw:       gw,
		log:      log,
		owner:    owner,
		ledger:   l,
		buddy:    pairing,
		timeouts: timeouts,
	}
}

type handlerFunc func(r *Router, ctx context.Context, userID int64, args string)

var commands = map[string]handlerFunc{
	"start":       (*Router).handleStart,
	"help":        (*Router).handleHelp,
	"register":    (*Router).handleRegister,
	"list":        (*Router).handleList,
	"add":         (*Router).handleAdd,
	"remove":      (*Router).handleRemove,
	"complete":    (*Router).handleComplete,
	"buddy":       (*Router).handleBuddy,
	"journal":     (*Router).handleJournal,
	"deregister":  (*Router).handleDeregister,
	"points":      (*Router).handlePoints,
	"pause":       (*Router).handlePause,
	"unpause":     (*Router).handleUnpause,
	"resume":      (*Router).handleUnpause,
	"settimezone": (*Router).handleSetTimezone,
	"crisis":      (*Router).handleCrisis,
}

// parseCommand splits "/cmd@bot args" into ("cmd", "args").
func parseCommand(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(args), true
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil && upd.Message.From != nil {
		r.handleMessage(ctx, upd.Message)
		return
	}
	if upd.CallbackQuery != nil && upd.CallbackQuery.From != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	if msg.Chat != nil && !msg.Chat.IsPrivate() {
		if _, _, ok := parseCommand(text); ok {
			r.gw.send(userID, tgbotapi.NewMessage(msg.Chat.ID, privateOnlyText))
		}
		return
	}

	if name, args, ok := parseCommand(text); ok {
		h, known := commands[name]
		if !known {
			r.reply(userID, unknownText)
			return
		}
		go h(r, ctx, userID, args)
		return
	}

	// Free-form text: a parked prompt first, then a buddy code.
	if r.gw.deliver(userID, text) {
		return
	}
	if r.buddy.Submit(userID, text) {
		r.log.Info("buddy code matched", zap.Int64("responderID", userID))
		return
	}
	if r.gw.awaiting(userID) {
		r.reply(userID, answerPromptText)
		return
	}
	r.reply(userID, unknownText)
}

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	if _, err := r.gw.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}

	if r.gw.deliver(userID, cb.Data) {
		return
	}
	if zone, ok := strings.CutPrefix(cb.Data, tzPrefix); ok && cb.Data != tzSkip {
		go r.setTimezone(ctx, userID, zone)
	}
	// unknown callback: ignore
}

// reply sends a plain text answer to a command.
func (r *Router) reply(userID int64, text string) {
	r.gw.send(userID, tgbotapi.NewMessage(userID, text))
}

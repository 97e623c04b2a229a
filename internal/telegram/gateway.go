package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// ErrSuperseded is returned to a waiting prompt when a newer prompt for the
// same user replaces it.
var ErrSuperseded = errors.New("prompt superseded by a newer one")

// botAPI is the subset of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type waiter struct {
	match func(string) bool
	ch    chan string
}

// Gateway delivers direct messages and parks prompts waiting for a user's
// next matching reply. In private chats the chat id equals the user id.
type Gateway struct {
	bot botAPI
	log *zap.Logger

	mu      sync.Mutex
	waiting map[int64]*waiter
}

// NewGateway wraps a Telegram bot client.
func NewGateway(bot botAPI, log *zap.Logger) *Gateway {
	return &Gateway{bot: bot, log: log, waiting: make(map[int64]*waiter)}
}

// SendDirect sends a plain text message to the user's private chat.
// This makes Gateway satisfy scheduler.Sender and buddy.Messenger.
func (g *Gateway) SendDirect(_ context.Context, userID int64, text string) error {
	if _, err := g.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		return fmt.Errorf("deliver to %d: %w", userID, err)
	}
	return nil
}

// send is SendDirect for replies to commands: failures are only logged.
func (g *Gateway) send(userID int64, c tgbotapi.Chattable) {
	if _, err := g.bot.Send(c); err != nil {
		g.log.Warn("reply delivery failed", zap.Int64("userID", userID), zap.Error(err))
	}
}

// AwaitReply blocks until the user sends text accepted by match, the timeout
// elapses (domain.ErrTimeout) or ctx ends. Only one prompt per user is
// parked at a time; a newer one supersedes the older.
func (g *Gateway) AwaitReply(ctx context.Context, userID int64, match func(string) bool, timeout time.Duration) (string, error) {
	w := &waiter{match: match, ch: make(chan string, 1)}

	g.mu.Lock()
	if old, ok := g.waiting[userID]; ok {
		close(old.ch)
	}
	g.waiting[userID] = w
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		if cur, ok := g.waiting[userID]; ok && cur == w {
			delete(g.waiting, userID)
		}
		g.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case text, ok := <-w.ch:
		if !ok {
			return "", ErrSuperseded
		}
		return text, nil
	case <-timer.C:
		return "", domain.ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// deliver hands text to the user's parked prompt if it matches.
func (g *Gateway) deliver(userID int64, text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, ok := g.waiting[userID]
	if !ok || !w.match(text) {
		return false
	}
	delete(g.waiting, userID)
	w.ch <- text
	return true
}

// awaiting reports whether a prompt is parked for the user.
func (g *Gateway) awaiting(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.waiting[userID]
	return ok
}

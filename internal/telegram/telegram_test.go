package telegram

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/buddy"
	"github.com/ykvlv/sidekick-bot/internal/domain"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/store"
)

type outMsg struct {
	chatID int64
	text   string
}

type fakeBot struct {
	out chan outMsg
}

func newFakeBot() *fakeBot { return &fakeBot{out: make(chan outMsg, 100)} }

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.out <- outMsg{chatID: m.ChatID, text: m.Text}
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) expect(t *testing.T, chatID int64, substr string) string {
	t.Helper()
	select {
	case m := <-b.out:
		if m.chatID != chatID || !strings.Contains(m.text, substr) {
			t.Fatalf("want message to %d containing %q, got to %d: %q", chatID, substr, m.chatID, m.text)
		}
		return m.text
	case <-time.After(2 * time.Second):
		t.Fatalf("no message containing %q", substr)
	}
	return ""
}

type linkRecorder struct {
	mu    sync.Mutex
	links [][2]int64
}

func (l *linkRecorder) LinkBuddy(_ context.Context, inviterID, buddyID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.links = append(l.links, [2]int64{inviterID, buddyID})
	return nil
}

type fixture struct {
	bot    *fakeBot
	gw     *Gateway
	router *Router
	owner  *store.Owner
	links  *linkRecorder
}

func newFixture(t *testing.T, prompt time.Duration) *fixture {
	t.Helper()
	bot := newFakeBot()
	log := zap.NewNop()
	gw := NewGateway(bot, log)
	owner := store.NewOwner(store.NewMemoryRepo())
	links := &linkRecorder{}
	pairing := buddy.New(buddy.Config{CodeTTL: time.Minute, ConfirmTTL: time.Minute}, gw, links, log)
	router := NewRouter(gw, log, owner, ledger.New(), pairing, Timeouts{Prompt: prompt, Journal: prompt, Code: time.Minute})
	return &fixture{bot: bot, gw: gw, router: router, owner: owner, links: links}
}

func (f *fixture) text(userID int64, text string) {
	f.router.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}})
}

func (f *fixture) press(userID int64, data string) {
	f.router.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: userID},
		Data: data,
	}})
}

// waitPrompt blocks until a prompt is parked for the user.
func (f *fixture) waitPrompt(t *testing.T, userID int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !f.gw.awaiting(userID) {
		if time.Now().After(deadline) {
			t.Fatalf("no prompt parked for %d", userID)
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fixture) register(t *testing.T, userID int64, name string) {
	t.Helper()
	f.text(userID, "/register")
	f.bot.expect(t, userID, "What would you like to be called?")
	f.waitPrompt(t, userID)
	f.text(userID, name)
	f.bot.expect(t, userID, "select your time zone")
	f.waitPrompt(t, userID)
	f.press(userID, tzPrefix+"Europe/Paris")
	f.bot.expect(t, userID, "Time zone set to Europe/Paris")
	f.bot.expect(t, userID, "Please select your first 10 tasks")
	f.waitPrompt(t, userID)
	f.text(userID, "Default")
	f.bot.expect(t, userID, "Thanks "+name)
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in, cmd, args string
		ok            bool
	}{
		{"/complete 1,2", "complete", "1,2", true},
		{"/List@SidekickBot", "list", "", true},
		{"/add daily:2  Walk", "add", "daily:2  Walk", true},
		{"hello", "", "", false},
	}
	for _, c := range cases {
		cmd, args, ok := parseCommand(c.in)
		if cmd != c.cmd || args != c.args || ok != c.ok {
			t.Fatalf("parseCommand(%q) = %q, %q, %v", c.in, cmd, args, ok)
		}
	}
}

func TestAwaitReply_DeliverAndMatch(t *testing.T) {
	gw := NewGateway(newFakeBot(), zap.NewNop())
	res := make(chan string, 1)
	go func() {
		got, _ := gw.AwaitReply(context.Background(), 7, isDigits, time.Second)
		res <- got
	}()
	for !gw.awaiting(7) {
		time.Sleep(time.Millisecond)
	}
	if gw.deliver(7, "abc") {
		t.Fatalf("non-matching text must not be delivered")
	}
	if gw.deliver(8, "123") {
		t.Fatalf("text of another user must not be delivered")
	}
	if !gw.deliver(7, "123") {
		t.Fatalf("matching text not delivered")
	}
	if got := <-res; got != "123" {
		t.Fatalf("want 123, got %q", got)
	}
	if gw.awaiting(7) {
		t.Fatalf("prompt still parked after delivery")
	}
}

func isDigits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

func TestAwaitReply_Timeout(t *testing.T) {
	gw := NewGateway(newFakeBot(), zap.NewNop())
	_, err := gw.AwaitReply(context.Background(), 1, anyReply, 20*time.Millisecond)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
}

func TestAwaitReply_Superseded(t *testing.T) {
	gw := NewGateway(newFakeBot(), zap.NewNop())
	first := make(chan error, 1)
	go func() {
		_, err := gw.AwaitReply(context.Background(), 1, anyReply, time.Second)
		first <- err
	}()
	for !gw.awaiting(1) {
		time.Sleep(time.Millisecond)
	}

	second := make(chan string, 1)
	go func() {
		got, _ := gw.AwaitReply(context.Background(), 1, anyReply, time.Second)
		second <- got
	}()
	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("want ErrSuperseded, got %v", err)
	}
	for !gw.deliver(1, "hi") {
		time.Sleep(time.Millisecond)
	}
	if got := <-second; got != "hi" {
		t.Fatalf("want hi, got %q", got)
	}
}

func TestRegisterThenComplete(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.register(t, 1, "Alice")

	f.text(1, "/complete 1,1,99")
	report := f.bot.expect(t, 1, "Total points awarded: 1.")
	if !strings.Contains(report, "already completed") || !strings.Contains(report, "Task number 99 is invalid") {
		t.Fatalf("unexpected report: %q", report)
	}

	f.text(1, "/points")
	f.bot.expect(t, 1, "Total Points: 11")

	err := f.owner.View(context.Background(), func(s *domain.Snapshot) error {
		u, err := s.User(1)
		if err != nil {
			return err
		}
		if u.TZ != "Europe/Paris" || u.Name != "Alice" {
			t.Fatalf("unexpected user %+v", u)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRegisterTimeout(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	f.text(1, "/register")
	f.bot.expect(t, 1, "What would you like to be called?")
	f.bot.expect(t, 1, "Registration timed out")
}

func TestUnregisteredCommands(t *testing.T) {
	f := newFixture(t, time.Second)
	for _, cmd := range []string{"/list", "/points", "/add daily Walk", "/journal", "/buddy"} {
		f.text(1, cmd)
		f.bot.expect(t, 1, "You are not registered")
	}
}

func TestAddAndRemove(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.register(t, 1, "Bob")

	f.text(1, "/add weekly:3 Call grandma")
	msg := f.bot.expect(t, 1, "Task added: 'Call grandma' as a weekly task with points: 3.")
	if !strings.Contains(msg, "first custom task") {
		t.Fatalf("first task must earn a bonus: %q", msg)
	}
	f.text(1, "/add daily Stretch")
	msg = f.bot.expect(t, 1, "with points: 1.")
	if strings.Contains(msg, "first custom task") {
		t.Fatalf("bonus awarded twice: %q", msg)
	}

	f.text(1, "/remove")
	f.bot.expect(t, 1, "1. Call grandma")
	f.waitPrompt(t, 1)
	f.text(1, "1")
	f.bot.expect(t, 1, "Custom task 'Call grandma' removed.")

	f.text(1, "/list")
	list := f.bot.expect(t, 1, "Here are your tasks")
	if strings.Contains(list, "Call grandma") || !strings.Contains(list, "11. Stretch") {
		t.Fatalf("unexpected listing: %q", list)
	}
}

func TestJournal(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.register(t, 1, "Cleo")

	f.text(1, "/journal")
	f.bot.expect(t, 1, "Journaling Prompt:")
	f.waitPrompt(t, 1)
	f.text(1, "today was fine")
	f.bot.expect(t, 1, "awarded 5 points")

	f.text(1, "/journal")
	f.bot.expect(t, 1, "already journaled today")
}

var codeRe = regexp.MustCompile(`\d{3}-\d{3}-\d{3}`)

func TestBuddyHandshake(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.register(t, 1, "Dan")

	f.text(1, "/buddy")
	code := codeRe.FindString(f.bot.expect(t, 1, "Your buddy request code is"))
	if code == "" {
		t.Fatalf("no code issued")
	}

	f.text(1, "/buddy")
	f.bot.expect(t, 1, "pending buddy code: "+code)

	f.text(2, code)
	f.bot.expect(t, 2, "Reply 'yes' to accept")
	f.waitPrompt(t, 2)
	f.text(2, "yes")
	f.bot.expect(t, 2, "You are now registered as an accountability buddy")
	f.bot.expect(t, 1, "has been accepted")

	f.links.mu.Lock()
	defer f.links.mu.Unlock()
	if len(f.links.links) != 1 || f.links.links[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected links %v", f.links.links)
	}
}

func TestPauseToggle(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.register(t, 1, "Eve")

	f.text(1, "/pause")
	f.bot.expect(t, 1, "Reminders paused")
	f.text(1, "/resume")
	f.bot.expect(t, 1, "Reminders resumed")

	f.text(1, "/settimezone Mars/Olympus")
	f.bot.expect(t, 1, "Invalid time zone")
	f.text(1, "/settimezone Asia/Tokyo")
	f.bot.expect(t, 1, "Time zone set to Asia/Tokyo")
}

func TestDeregister(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.register(t, 1, "Finn")

	f.text(1, "/deregister")
	f.bot.expect(t, 1, "WARNING")
	f.waitPrompt(t, 1)
	f.text(1, "no")
	f.bot.expect(t, 1, "cancelled")

	f.text(1, "/deregister")
	f.bot.expect(t, 1, "WARNING")
	f.waitPrompt(t, 1)
	f.text(1, "YES")
	f.bot.expect(t, 1, "permanently removed")

	f.text(1, "/points")
	f.bot.expect(t, 1, "You are not registered")
}

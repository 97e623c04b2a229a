package buddy

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

type fakeMessenger struct {
	mu      sync.Mutex
	sent    map[int64][]string
	replies map[int64]chan string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{sent: make(map[int64][]string), replies: make(map[int64]chan string)}
}

func (m *fakeMessenger) replyChan(userID int64) chan string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.replies[userID]
	if !ok {
		ch = make(chan string, 4)
		m.replies[userID] = ch
	}
	return ch
}

func (m *fakeMessenger) SendDirect(_ context.Context, userID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[userID] = append(m.sent[userID], text)
	return nil
}

func (m *fakeMessenger) AwaitReply(ctx context.Context, userID int64, match func(string) bool, timeout time.Duration) (string, error) {
	ch := m.replyChan(userID)
	deadline := time.After(timeout)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", domain.ErrTimeout
		case r := <-ch:
			if match(r) {
				return r, nil
			}
		}
	}
}

func (m *fakeMessenger) messages(userID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent[userID]...)
}

type fakeLinker struct {
	mu    sync.Mutex
	links map[int64]int64
}

func (l *fakeLinker) LinkBuddy(_ context.Context, inviterID, buddyID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.links == nil {
		l.links = make(map[int64]int64)
	}
	l.links[inviterID] = buddyID
	return nil
}

func (l *fakeLinker) get(inviterID int64) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.links[inviterID]
	return b, ok
}

const (
	inviter   int64 = 1
	responder int64 = 2
)

func newService(t *testing.T, cfg Config, opts ...Option) (*Service, *fakeMessenger, *fakeLinker) {
	t.Helper()
	msg := newFakeMessenger()
	link := &fakeLinker{}
	return New(cfg, msg, link, zap.NewNop(), opts...), msg, link
}

func waitDone(t *testing.T, tk Ticket) State {
	t.Helper()
	select {
	case st := <-tk.Done:
		return st
	case <-time.After(2 * time.Second):
		t.Fatalf("handshake did not resolve")
		return Idle
	}
}

func TestIssueCode_Format(t *testing.T) {
	svc, _, _ := newService(t, Config{CodeTTL: time.Minute, ConfirmTTL: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tk, err := svc.IssueCode(ctx, inviter)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !regexp.MustCompile(`^\d{3}-\d{3}-\d{3}$`).MatchString(tk.Code) {
		t.Fatalf("bad code format %q", tk.Code)
	}
	if code, ok := svc.Pending(inviter); !ok || code != tk.Code {
		t.Fatalf("pending code not tracked")
	}
}

func TestIssueCode_OnePendingPerInviter(t *testing.T) {
	svc, _, _ := newService(t, Config{CodeTTL: time.Minute, ConfirmTTL: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := svc.IssueCode(ctx, inviter); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.IssueCode(ctx, inviter); !errors.Is(err, ErrRequestPending) {
		t.Fatalf("want ErrRequestPending, got %v", err)
	}
	if _, err := svc.IssueCode(ctx, responder); err != nil {
		t.Fatalf("other inviter blocked: %v", err)
	}
}

func TestIssueCode_CollisionRegenerates(t *testing.T) {
	// First 18 draws are all zeros, then ones: the second code must differ.
	draws := 0
	digits := func() int {
		draws++
		if draws <= 18 {
			return 0
		}
		return 1
	}
	svc, _, _ := newService(t, Config{CodeTTL: time.Minute, ConfirmTTL: time.Minute}, WithDigits(digits))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := svc.IssueCode(ctx, inviter)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, err := svc.IssueCode(ctx, responder)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if a.Code != "000-000-000" || b.Code != "111-111-111" {
		t.Fatalf("want distinct codes, got %s and %s", a.Code, b.Code)
	}
}

func TestIssueCode_Exhausted(t *testing.T) {
	svc, _, _ := newService(t, Config{CodeTTL: time.Minute, ConfirmTTL: time.Minute}, WithDigits(func() int { return 7 }))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := svc.IssueCode(ctx, inviter); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.IssueCode(ctx, responder); !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("want ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestHandshake_Accepted(t *testing.T) {
	svc, msg, link := newService(t, Config{CodeTTL: time.Second, ConfirmTTL: time.Second})
	ctx := context.Background()

	tk, err := svc.IssueCode(ctx, inviter)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if svc.Submit(inviter, tk.Code) {
		t.Fatalf("inviter must not answer their own code")
	}
	if svc.Submit(responder, "000-000-001x") {
		t.Fatalf("non-matching text accepted")
	}
	msg.replyChan(responder) <- "maybe"
	msg.replyChan(responder) <- " YES "
	if !svc.Submit(responder, " "+tk.Code+" ") {
		t.Fatalf("valid code rejected")
	}
	if svc.Submit(3, tk.Code) {
		t.Fatalf("second responder accepted")
	}

	if st := waitDone(t, tk); st != Accepted {
		t.Fatalf("want accepted, got %s", st)
	}
	if b, ok := link.get(inviter); !ok || b != responder {
		t.Fatalf("buddy not linked")
	}
	if got := msg.messages(inviter); len(got) != 1 || got[0] != textAcceptedInviter {
		t.Fatalf("inviter messages: %v", got)
	}
	if got := msg.messages(responder); len(got) != 2 || got[0] != textConfirmPrompt || got[1] != textAcceptedResponder {
		t.Fatalf("responder messages: %v", got)
	}
	if _, ok := svc.Pending(inviter); ok {
		t.Fatalf("request not deleted")
	}
}

func TestHandshake_Declined(t *testing.T) {
	svc, msg, link := newService(t, Config{CodeTTL: time.Second, ConfirmTTL: time.Second})
	tk, _ := svc.IssueCode(context.Background(), inviter)

	msg.replyChan(responder) <- "no"
	if !svc.Submit(responder, tk.Code) {
		t.Fatalf("valid code rejected")
	}
	if st := waitDone(t, tk); st != Declined {
		t.Fatalf("want declined, got %s", st)
	}
	if _, ok := link.get(inviter); ok {
		t.Fatalf("declined handshake linked buddies")
	}
	if got := msg.messages(inviter); len(got) != 1 || got[0] != textDeclinedInviter {
		t.Fatalf("inviter messages: %v", got)
	}
	if got := msg.messages(responder); len(got) != 2 || got[1] != textDeclinedResponder {
		t.Fatalf("responder messages: %v", got)
	}
}

func TestHandshake_ConfirmationTimeout(t *testing.T) {
	svc, msg, link := newService(t, Config{CodeTTL: time.Second, ConfirmTTL: 30 * time.Millisecond})
	tk, _ := svc.IssueCode(context.Background(), inviter)

	if !svc.Submit(responder, tk.Code) {
		t.Fatalf("valid code rejected")
	}
	if st := waitDone(t, tk); st != Expired {
		t.Fatalf("want expired, got %s", st)
	}
	if _, ok := link.get(inviter); ok {
		t.Fatalf("timed out handshake linked buddies")
	}
	if got := msg.messages(inviter); len(got) != 1 || got[0] != textNotConfirmed {
		t.Fatalf("inviter messages: %v", got)
	}
	// The responder only ever saw the prompt.
	if got := msg.messages(responder); len(got) != 1 {
		t.Fatalf("responder messages: %v", got)
	}
}

func TestHandshake_CodeExpires(t *testing.T) {
	svc, msg, link := newService(t, Config{CodeTTL: 30 * time.Millisecond, ConfirmTTL: time.Second})
	tk, _ := svc.IssueCode(context.Background(), inviter)

	if st := waitDone(t, tk); st != Expired {
		t.Fatalf("want expired, got %s", st)
	}
	if svc.Submit(responder, tk.Code) {
		t.Fatalf("expired code accepted")
	}
	if _, ok := link.get(inviter); ok {
		t.Fatalf("expired handshake linked buddies")
	}
	if got := msg.messages(inviter); len(got) != 1 || got[0] != textExpired {
		t.Fatalf("inviter messages: %v", got)
	}
	if got := msg.messages(responder); len(got) != 0 {
		t.Fatalf("responder contacted: %v", got)
	}
}

func TestSubmit_AfterDeadlineByClock(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc, _, link := newService(t, Config{CodeTTL: 5 * time.Minute, ConfirmTTL: 2 * time.Minute}, WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())

	tk, err := svc.IssueCode(ctx, inviter)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	now = now.Add(5*time.Minute + time.Second)
	if svc.Submit(responder, tk.Code) {
		t.Fatalf("code accepted 5:01 after issuance")
	}

	cancel()
	if st := waitDone(t, tk); st != Expired {
		t.Fatalf("want expired, got %s", st)
	}
	if _, ok := link.get(inviter); ok {
		t.Fatalf("late handshake linked buddies")
	}
}

func TestIndependentRequests(t *testing.T) {
	svc, msg, link := newService(t, Config{CodeTTL: time.Second, ConfirmTTL: 40 * time.Millisecond})
	a, _ := svc.IssueCode(context.Background(), 10)
	b, _ := svc.IssueCode(context.Background(), 20)

	// 11 never confirms; 21 accepts right away.
	svc.Submit(11, a.Code)
	msg.replyChan(21) <- "yes"
	svc.Submit(21, b.Code)

	if st := waitDone(t, b); st != Accepted {
		t.Fatalf("b: want accepted, got %s", st)
	}
	if st := waitDone(t, a); st != Expired {
		t.Fatalf("a: want expired, got %s", st)
	}
	if got, _ := link.get(20); got != 21 {
		t.Fatalf("b not linked")
	}
	if _, ok := link.get(10); ok {
		t.Fatalf("a linked")
	}
}

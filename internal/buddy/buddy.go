// Package buddy pairs a user with an accountability buddy through a
// two-phase timed handshake: a one-time code DMed to the bot by the
// responder, then a yes/no confirmation from that responder.
package buddy

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

var (
	ErrRequestPending     = errors.New("a buddy code is already pending for this user")
	ErrCodeSpaceExhausted = errors.New("could not generate an unused buddy code")
)

const maxCodeAttempts = 16

// State of one handshake.
type State int

const (
	Idle State = iota
	CodeIssued
	AwaitingAcceptance
	Accepted
	Declined
	Expired
)

func (s State) String() string {
	switch s {
	case CodeIssued:
		return "code-issued"
	case AwaitingAcceptance:
		return "awaiting-acceptance"
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	case Expired:
		return "expired"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == Accepted || s == Declined || s == Expired }

// Messenger is the slice of the messaging gateway the handshake needs.
type Messenger interface {
	SendDirect(ctx context.Context, userID int64, text string) error
	AwaitReply(ctx context.Context, userID int64, match func(string) bool, timeout time.Duration) (string, error)
}

// Linker persists an accepted pairing on the inviter's record.
type Linker interface {
	LinkBuddy(ctx context.Context, inviterID, buddyID int64) error
}

// Config holds handshake deadlines.
type Config struct {
	CodeTTL    time.Duration // code submission window
	ConfirmTTL time.Duration // yes/no window
}

// Ticket is handed to the inviter when a code is issued.
type Ticket struct {
	Code      string
	ExpiresAt time.Time
	// Done yields the terminal state once the handshake resolves.
	Done <-chan State
}

type request struct {
	code      string
	inviterID int64
	expiresAt time.Time
	state     State
	responder chan int64
	done      chan State
}

// Service owns the table of outstanding codes.
type Service struct {
	cfg   Config
	msg   Messenger
	link  Linker
	log   *zap.Logger
	now   func() time.Time
	digit func() int

	mu        sync.Mutex
	byCode    map[string]*request
	byInviter map[int64]*request
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithDigits overrides the random digit source (values 0..9).
func WithDigits(digit func() int) Option { return func(s *Service) { s.digit = digit } }

// New creates a pairing service.
func New(cfg Config, msg Messenger, link Linker, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		msg:       msg,
		link:      link,
		log:       log,
		now:       time.Now,
		digit:     func() int { return rand.Intn(10) },
		byCode:    make(map[string]*request),
		byInviter: make(map[int64]*request),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IssueCode registers a new code for inviterID and starts its handshake.
// An inviter may hold only one outstanding code at a time.
func (s *Service) IssueCode(ctx context.Context, inviterID int64) (Ticket, error) {
	s.mu.Lock()
	if _, ok := s.byInviter[inviterID]; ok {
		s.mu.Unlock()
		return Ticket{}, ErrRequestPending
	}
	code, err := s.newCodeLocked()
	if err != nil {
		s.mu.Unlock()
		return Ticket{}, err
	}
	req := &request{
		code:      code,
		inviterID: inviterID,
		expiresAt: s.now().Add(s.cfg.CodeTTL),
		state:     CodeIssued,
		responder: make(chan int64, 1),
		done:      make(chan State, 1),
	}
	s.byCode[code] = req
	s.byInviter[inviterID] = req
	s.mu.Unlock()

	s.log.Info("buddy code issued", zap.Int64("inviterID", inviterID), zap.Time("expiresAt", req.expiresAt))
	go s.run(ctx, req)

	return Ticket{Code: code, ExpiresAt: req.expiresAt, Done: req.done}, nil
}

// newCodeLocked draws 3-3-3 digit codes until one is not live.
func (s *Service) newCodeLocked() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		var b strings.Builder
		for i := 0; i < 9; i++ {
			b.WriteByte(byte('0' + s.digit()))
		}
		code := domain.FormatCode(b.String())
		if _, taken := s.byCode[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Submit offers an inbound private message as a code. It reports whether the
// text matched a live code from someone other than its inviter, in which case
// the handshake moves to AwaitingAcceptance.
func (s *Service) Submit(senderID int64, text string) bool {
	code := strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.byCode[code]
	if !ok || req.inviterID == senderID || req.state != CodeIssued {
		return false
	}
	if !s.now().Before(req.expiresAt) {
		return false
	}
	req.state = AwaitingAcceptance
	req.responder <- senderID
	return true
}

// Pending returns the live code of an inviter, if any.
func (s *Service) Pending(inviterID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.byInviter[inviterID]
	if !ok {
		return "", false
	}
	return req.code, true
}

// run drives one request from CodeIssued to a terminal state.
func (s *Service) run(ctx context.Context, req *request) {
	timer := time.NewTimer(s.cfg.CodeTTL)
	defer timer.Stop()

	var responderID int64
	select {
	case <-ctx.Done():
		s.finish(req, Expired)
		return
	case responderID = <-req.responder:
	case <-timer.C:
		s.mu.Lock()
		if req.state == CodeIssued {
			s.mu.Unlock()
			s.finish(req, Expired)
			s.notify(ctx, req.inviterID, textExpired)
			return
		}
		s.mu.Unlock()
		// Submit won the race against the deadline; its responder is buffered.
		responderID = <-req.responder
	}

	s.confirm(ctx, req, responderID)
}

// confirm runs the yes/no round with the responder.
func (s *Service) confirm(ctx context.Context, req *request, responderID int64) {
	log := s.log.With(zap.Int64("inviterID", req.inviterID), zap.Int64("responderID", responderID))

	if err := s.msg.SendDirect(ctx, responderID, textConfirmPrompt); err != nil {
		log.Error("buddy prompt delivery failed", zap.Error(err))
		s.finish(req, Expired)
		s.notify(ctx, req.inviterID, textUnreachable)
		return
	}

	reply, err := s.msg.AwaitReply(ctx, responderID, isYesNo, s.cfg.ConfirmTTL)
	if err != nil {
		if !errors.Is(err, domain.ErrTimeout) {
			log.Warn("buddy confirmation aborted", zap.Error(err))
		}
		s.finish(req, Expired)
		s.notify(ctx, req.inviterID, textNotConfirmed)
		return
	}

	if normalize(reply) != "yes" {
		s.finish(req, Declined)
		s.notify(ctx, responderID, textDeclinedResponder)
		s.notify(ctx, req.inviterID, textDeclinedInviter)
		return
	}

	if err := s.link.LinkBuddy(ctx, req.inviterID, responderID); err != nil {
		log.Error("buddy link failed", zap.Error(err))
		s.finish(req, Expired)
		s.notify(ctx, responderID, textLinkFailed)
		return
	}
	s.finish(req, Accepted)
	log.Info("buddy linked")
	s.notify(ctx, responderID, textAcceptedResponder)
	s.notify(ctx, req.inviterID, textAcceptedInviter)
}

// finish records the terminal state and drops the request from the table.
func (s *Service) finish(req *request, st State) {
	s.mu.Lock()
	req.state = st
	delete(s.byCode, req.code)
	if cur, ok := s.byInviter[req.inviterID]; ok && cur == req {
		delete(s.byInviter, req.inviterID)
	}
	s.mu.Unlock()

	req.done <- st
	close(req.done)
}

// notify is best effort: delivery failures are logged and dropped.
func (s *Service) notify(ctx context.Context, userID int64, text string) {
	if err := s.msg.SendDirect(ctx, userID, text); err != nil {
		s.log.Error("buddy notification failed", zap.Error(err), zap.Int64("userID", userID))
	}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isYesNo(s string) bool {
	n := normalize(s)
	return n == "yes" || n == "no"
}

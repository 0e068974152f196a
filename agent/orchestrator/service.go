package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kermits/telassist/agent/auth"
	contractx "github.com/kermits/telassist/agent/contract"
	"github.com/kermits/telassist/agent/faq"
	"github.com/kermits/telassist/agent/history"
	routerx "github.com/kermits/telassist/agent/router"
	statex "github.com/kermits/telassist/agent/state"
	"github.com/kermits/telassist/agent/wizard"
)

// DefaultMaxHops bounds how many graph edges one turn may traverse.
const DefaultMaxHops = 10

const greetingMsg = "Merhaba! Telekom dijital asistanınıza hoş geldiniz. Size nasıl yardımcı olabilirim?"

// Orchestrator drives the conversation graph. Each turn runs under a
// per-session lock: load state, walk the graph until a waiting node produces
// a reply, persist state, return the reply.
type Orchestrator struct {
	store   statex.Store
	ledger  *history.Ledger
	router  *routerx.Router
	gate    *auth.Gate
	wizards *wizard.Dispatcher
	faq     *faq.Responder

	maxHops int
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Orchestrator)

func WithMaxHops(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxHops = n
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func New(
	store statex.Store,
	ledger *history.Ledger,
	router *routerx.Router,
	gate *auth.Gate,
	wizards *wizard.Dispatcher,
	faqResponder *faq.Responder,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		ledger:  ledger,
		router:  router,
		gate:    gate,
		wizards: wizards,
		faq:     faqResponder,
		maxHops: DefaultMaxHops,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Greeting is what a new session opens with.
type Greeting struct {
	SessionID string
	Message   string
}

// TurnResult is the outcome of one submitted turn.
type TurnResult struct {
	Reply        string
	SessionEnded bool
}

// BeginSession creates a fresh session and seeds the transcript with the
// assistant's greeting.
func (o *Orchestrator) BeginSession(ctx context.Context) (Greeting, error) {
	now := o.now()
	st := statex.NewSessionState(uuid.NewString(), now)
	st.AppendTurn(statex.SpeakerAssistant, greetingMsg, now)

	if err := o.store.Save(ctx, st); err != nil {
		return Greeting{}, fmt.Errorf("begin session: %w", err)
	}
	log.Info().Str("session_id", st.SessionID).Msg("session started")
	return Greeting{SessionID: st.SessionID, Message: greetingMsg}, nil
}

// SubmitTurn feeds one customer utterance to the session's graph and returns
// the assistant's reply. Turns on the same session serialize; turns on
// different sessions run concurrently.
func (o *Orchestrator) SubmitTurn(ctx context.Context, sessionID, userText string) (TurnResult, error) {
	if sessionID == "" {
		return TurnResult{}, statex.ErrEmptySessionID
	}
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return TurnResult{}, fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
		}
		return TurnResult{}, fmt.Errorf("load session: %w", err)
	}
	if st.Ended {
		return TurnResult{}, statex.ErrSessionEnded
	}

	now := o.now()
	o.ledger.Record(ctx, st, statex.SpeakerCustomer, userText, now)

	snapshot := st.Clone()
	reply, err := o.runGraph(ctx, st, userText)
	if err != nil {
		if errors.Is(err, contractx.ErrOracleUnavailable) || errors.Is(err, contractx.ErrLoopExceeded) {
			// The turn is abandoned, not the session: every mutation the
			// graph made this turn is discarded, including a half-finished
			// gate hand-off, so the next turn retries from where this one
			// started.
			st = snapshot
			reply = retryLaterMsg
			log.Warn().Err(err).Str("session_id", sessionID).Msg("turn abandoned")
		} else {
			return TurnResult{}, err
		}
	}

	o.ledger.Record(ctx, st, statex.SpeakerAssistant, reply, o.now())
	st.Touch(o.now())

	if st.Ended {
		if err := o.store.Delete(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("session cleanup failed")
		}
		o.dropLock(sessionID)
		log.Info().Str("session_id", sessionID).Msg("session ended")
		return TurnResult{Reply: reply, SessionEnded: true}, nil
	}

	if err := o.store.Save(ctx, st); err != nil {
		return TurnResult{}, fmt.Errorf("save session: %w", err)
	}
	return TurnResult{Reply: reply, SessionEnded: false}, nil
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[sessionID] = lock
	}
	return lock
}

func (o *Orchestrator) dropLock(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.locks, sessionID)
}

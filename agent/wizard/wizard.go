package wizard

import (
	"context"
	"fmt"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

// DefaultFieldRetries is how many consecutive validation failures a single
// wizard step tolerates before the transaction is cancelled.
const DefaultFieldRetries = 3

const (
	fallbackLine   = "Müşteri hizmetlerimizi arayabilirsiniz: 532"
	cancelledMsg   = "İşlemi şu an tamamlayamadık. " + fallbackLine
	serviceDownMsg = "İşlem sırasında teknik bir sorun oluştu. Özür dileriz, biraz sonra tekrar deneyebilirsiniz. " + fallbackLine
)

// Advance is the outcome of feeding one user turn to a step machine. Done
// means the transaction was cleared (completed or cancelled) and Reply is
// terminal; otherwise Reply is a prompt and the session waits for input.
type Advance struct {
	Reply string
	Done  bool
}

// Dispatcher owns the per-kind step machines. Dispatch on the transaction
// kind is a closed switch; an unknown kind is state corruption, not user
// error.
type Dispatcher struct {
	services     contractx.Services
	notifier     contractx.Notifier
	fieldRetries int
	maxOptions   int
}

type Option func(*Dispatcher)

func WithFieldRetries(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.fieldRetries = n
		}
	}
}

func New(services contractx.Services, notifier contractx.Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		services:     services,
		notifier:     notifier,
		fieldRetries: DefaultFieldRetries,
		maxOptions:   5,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Begin installs a fresh transaction of the given kind and runs its entry
// step. userText is the utterance that triggered the transaction; entry
// steps that offer candidate lists ignore it.
func (d *Dispatcher) Begin(ctx context.Context, st *statex.SessionState, kind contractx.TransactionKind, userText string) (Advance, error) {
	if _, err := st.BeginTransaction(kind); err != nil {
		return Advance{}, err
	}
	return d.Advance(ctx, st, userText)
}

// Advance feeds one turn to the active step machine.
func (d *Dispatcher) Advance(ctx context.Context, st *statex.SessionState, userText string) (Advance, error) {
	tx := st.Active
	if tx == nil {
		return Advance{}, fmt.Errorf("%w: no active transaction", statex.ErrCorruptState)
	}

	switch tx.Kind {
	case contractx.KindRegistration:
		return d.advanceRegistration(ctx, st, tx, userText)
	case contractx.KindPlanChange:
		return d.advancePlanChange(ctx, st, tx, userText)
	case contractx.KindAppointment:
		return d.advanceAppointment(ctx, st, tx, userText)
	case contractx.KindDispute:
		return d.advanceDispute(ctx, st, tx, userText)
	case contractx.KindBillingView:
		return d.showBilling(ctx, st)
	case contractx.KindSubscriptionView:
		return d.showSubscription(ctx, st)
	default:
		return Advance{}, fmt.Errorf("%w: unknown transaction kind %q", statex.ErrCorruptState, tx.Kind)
	}
}

// reprompt re-asks the current step without advancing; exhausting the retry
// budget cancels the whole transaction.
func (d *Dispatcher) reprompt(st *statex.SessionState, tx *statex.Transaction, msg string) Advance {
	tx.Attempts++
	if tx.Attempts >= d.fieldRetries {
		st.ClearTransaction()
		return Advance{Reply: cancelledMsg, Done: true}
	}
	return Advance{Reply: msg}
}

// abort cancels the transaction with a polite, non-technical reply.
func (d *Dispatcher) abort(st *statex.SessionState, msg string) Advance {
	st.ClearTransaction()
	return Advance{Reply: msg, Done: true}
}

func (d *Dispatcher) customerID(st *statex.SessionState) int64 {
	if st.Identity == nil {
		return 0
	}
	return st.Identity.CustomerID
}

package state

import (
	"errors"
	"fmt"
	"time"

	contractx "github.com/kermits/telassist/agent/contract"
)

// Step is the orchestration-graph cursor. The set is closed so an invalid
// cursor is unrepresentable after decoding.
type Step string

const (
	StepClassify     Step = "classify"
	StepAuthenticate Step = "authenticate"
	StepTransaction  Step = "transaction"
	StepFAQ          Step = "faq"
	StepEnd          Step = "end"
)

func (s Step) Valid() bool {
	switch s {
	case StepClassify, StepAuthenticate, StepTransaction, StepFAQ, StepEnd:
		return true
	}
	return false
}

// AuthPhase tracks the authentication gate's sub-state machine.
type AuthPhase string

const (
	AuthUnauthenticated    AuthPhase = "unauthenticated"
	AuthAwaitingCredential AuthPhase = "awaiting_credential"
	AuthVerifying          AuthPhase = "verifying"
	AuthAuthenticated      AuthPhase = "authenticated"
	AuthFailedExhausted    AuthPhase = "failed_exhausted"
)

// WizardStep is a step cursor inside one transaction step machine. Each
// TransactionKind owns a fixed subset; Transaction.Validate enforces the
// pairing.
type WizardStep string

const (
	// registration
	StepCollectingID    WizardStep = "collecting_id"
	StepCollectingName  WizardStep = "collecting_name"
	StepCollectingPhone WizardStep = "collecting_phone"
	StepCollectingEmail WizardStep = "collecting_email"
	StepCollectingCity  WizardStep = "collecting_city"
	StepSelectingPlan   WizardStep = "selecting_plan"
	StepConfirming      WizardStep = "confirming"

	// plan change
	StepOfferingPlans      WizardStep = "offering_plans"
	StepAwaitingPlanChoice WizardStep = "awaiting_plan_choice"

	// appointment
	StepOfferingSlots      WizardStep = "offering_slots"
	StepAwaitingSlotChoice WizardStep = "awaiting_appointment_choice"

	// dispute
	StepOfferingBills         WizardStep = "offering_bills"
	StepAwaitingDisputeReason WizardStep = "awaiting_dispute_reason"

	// single-shot views
	StepShowingSummary WizardStep = "showing_summary"
)

// StepsFor returns the closed step set for a transaction kind, in order.
func StepsFor(kind contractx.TransactionKind) []WizardStep {
	switch kind {
	case contractx.KindRegistration:
		return []WizardStep{
			StepCollectingID, StepCollectingName, StepCollectingPhone,
			StepCollectingEmail, StepCollectingCity, StepSelectingPlan,
			StepConfirming,
		}
	case contractx.KindPlanChange:
		return []WizardStep{StepOfferingPlans, StepAwaitingPlanChoice}
	case contractx.KindAppointment:
		return []WizardStep{StepOfferingSlots, StepAwaitingSlotChoice}
	case contractx.KindDispute:
		return []WizardStep{StepOfferingBills, StepAwaitingDisputeReason}
	case contractx.KindBillingView, contractx.KindSubscriptionView:
		return []WizardStep{StepShowingSummary}
	}
	return nil
}

// Speaker labels a transcript turn.
type Speaker string

const (
	SpeakerCustomer  Speaker = "müşteri"
	SpeakerAssistant Speaker = "asistan"
)

type Turn struct {
	Speaker    Speaker   `json:"speaker"`
	Text       string    `json:"text"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Transaction is the embedded step-machine instance. Candidate lists offered
// to the user (plans, slots, bills) are session-scoped so that a later
// selection-by-number indexes exactly what was shown.
type Transaction struct {
	Kind   contractx.TransactionKind `json:"kind"`
	Step   WizardStep                `json:"step"`
	Fields map[string]string         `json:"fields,omitempty"`

	Plans       []contractx.Plan `json:"plans,omitempty"`
	CurrentPlan *contractx.Plan  `json:"current_plan,omitempty"`
	Slots       []contractx.Slot `json:"slots,omitempty"`
	Bills       []contractx.Bill `json:"bills,omitempty"`

	// Attempts counts consecutive validation failures on the current step;
	// it resets whenever the cursor advances.
	Attempts int `json:"attempts,omitempty"`
}

func (t *Transaction) SetField(key, value string) {
	if t.Fields == nil {
		t.Fields = make(map[string]string, 8)
	}
	t.Fields[key] = value
}

func (t *Transaction) Field(key string) string {
	if t == nil || t.Fields == nil {
		return ""
	}
	return t.Fields[key]
}

// MoveTo advances the wizard cursor and resets the attempt counter.
func (t *Transaction) MoveTo(step WizardStep) {
	t.Step = step
	t.Attempts = 0
}

func (t *Transaction) Validate() error {
	if t == nil {
		return nil
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", ErrCorruptState, t.Kind)
	}
	for _, s := range StepsFor(t.Kind) {
		if s == t.Step {
			return nil
		}
	}
	return fmt.Errorf("%w: step %q does not belong to %s", ErrCorruptState, t.Step, t.Kind)
}

var (
	ErrCorruptState   = errors.New("session state corrupt")
	ErrSessionEnded   = errors.New("session has ended")
	ErrEmptySessionID = errors.New("session id is empty")
)

// SessionState is the serializable record of one conversation. The session
// exclusively owns every nested structure; collaborators only ever receive
// copies of individual fields.
type SessionState struct {
	SessionID  string `json:"session_id"`
	StepCursor Step   `json:"step_cursor"`

	IsAuthenticated bool                        `json:"is_authenticated"`
	Identity        *contractx.CustomerIdentity `json:"identity,omitempty"`
	AuthPhase       AuthPhase                   `json:"auth_phase"`
	AuthAttempts    int                         `json:"auth_attempts,omitempty"`
	PendingIntent   string                      `json:"pending_intent,omitempty"`

	Active *Transaction `json:"active_transaction,omitempty"`

	Transcript        []Turn `json:"transcript,omitempty"`
	RollingSummary    string `json:"rolling_summary,omitempty"`
	SummarizedThrough int    `json:"summarized_through,omitempty"`

	Ended     bool      `json:"ended,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:  sessionID,
		StepCursor: StepClassify,
		AuthPhase:  AuthUnauthenticated,
		UpdatedAt:  now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn records a turn. The transcript is append-only; summarization
// never removes entries, it only compresses their context representation.
func (s *SessionState) AppendTurn(speaker Speaker, text string, now time.Time) {
	s.Transcript = append(s.Transcript, Turn{
		Speaker:    speaker,
		Text:       text,
		RecordedAt: now.UTC(),
	})
}

// BeginTransaction installs a fresh step machine. Starting a second
// transaction while one is active is a caller bug, not user error.
func (s *SessionState) BeginTransaction(kind contractx.TransactionKind) (*Transaction, error) {
	if s.Active != nil {
		return nil, fmt.Errorf("%w: transaction %s already active", ErrCorruptState, s.Active.Kind)
	}
	steps := StepsFor(kind)
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", ErrCorruptState, kind)
	}
	s.Active = &Transaction{Kind: kind, Step: steps[0]}
	return s.Active, nil
}

func (s *SessionState) ClearTransaction() {
	s.Active = nil
}

// Authenticate marks the session verified. Authentication is monotonic: the
// flag only ever resets through an explicit logout, never by a later turn.
func (s *SessionState) Authenticate(identity contractx.CustomerIdentity) {
	s.IsAuthenticated = true
	s.AuthPhase = AuthAuthenticated
	s.AuthAttempts = 0
	id := identity
	s.Identity = &id
}

// Clone returns a deep copy. The engine snapshots a session before walking
// the graph so an abandoned turn can restore every field, not just the
// cursor.
func (s *SessionState) Clone() *SessionState {
	cp := *s
	if s.Identity != nil {
		id := *s.Identity
		cp.Identity = &id
	}
	cp.Active = s.Active.clone()
	cp.Transcript = append([]Turn(nil), s.Transcript...)
	return &cp
}

func (t *Transaction) clone() *Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Fields != nil {
		cp.Fields = make(map[string]string, len(t.Fields))
		for k, v := range t.Fields {
			cp.Fields[k] = v
		}
	}
	cp.Plans = append([]contractx.Plan(nil), t.Plans...)
	if t.CurrentPlan != nil {
		p := *t.CurrentPlan
		cp.CurrentPlan = &p
	}
	cp.Slots = append([]contractx.Slot(nil), t.Slots...)
	cp.Bills = append([]contractx.Bill(nil), t.Bills...)
	return &cp
}

func (s *SessionState) Validate() error {
	if s.SessionID == "" {
		return ErrEmptySessionID
	}
	if !s.StepCursor.Valid() {
		return fmt.Errorf("%w: invalid step cursor %q", ErrCorruptState, s.StepCursor)
	}
	if s.IsAuthenticated != (s.Identity != nil) {
		return fmt.Errorf("%w: identity must be present iff authenticated", ErrCorruptState)
	}
	if s.PendingIntent != "" && s.IsAuthenticated {
		return fmt.Errorf("%w: pending intent survives only while unauthenticated", ErrCorruptState)
	}
	if err := s.Active.Validate(); err != nil {
		return err
	}
	return nil
}

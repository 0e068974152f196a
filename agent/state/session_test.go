package state

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/kermits/telassist/agent/contract"
)

func TestNewSessionStateDefaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	st := NewSessionState("sess-1", now)

	if st.StepCursor != StepClassify {
		t.Fatalf("expected classify cursor, got %q", st.StepCursor)
	}
	if st.AuthPhase != AuthUnauthenticated {
		t.Fatalf("expected unauthenticated phase, got %q", st.AuthPhase)
	}
	if st.IsAuthenticated {
		t.Fatal("new session must not be authenticated")
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestBeginTransactionRejectsSecond(t *testing.T) {
	t.Parallel()

	st := NewSessionState("sess-1", time.Now())
	if _, err := st.BeginTransaction(contractx.KindRegistration); err != nil {
		t.Fatalf("BeginTransaction() error = %v", err)
	}
	if st.Active.Step != StepCollectingID {
		t.Fatalf("expected entry step, got %q", st.Active.Step)
	}

	if _, err := st.BeginTransaction(contractx.KindDispute); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
}

func TestBeginTransactionUnknownKind(t *testing.T) {
	t.Parallel()

	st := NewSessionState("sess-1", time.Now())
	if _, err := st.BeginTransaction(contractx.TransactionKind("teleport")); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
}

func TestMoveToResetsAttempts(t *testing.T) {
	t.Parallel()

	st := NewSessionState("sess-1", time.Now())
	tx, err := st.BeginTransaction(contractx.KindRegistration)
	if err != nil {
		t.Fatalf("BeginTransaction() error = %v", err)
	}

	tx.Attempts = 2
	tx.MoveTo(StepCollectingName)
	if tx.Attempts != 0 {
		t.Fatalf("expected attempts reset, got %d", tx.Attempts)
	}
	if tx.Step != StepCollectingName {
		t.Fatalf("expected collecting_name, got %q", tx.Step)
	}
}

func TestAuthenticateIsMonotonic(t *testing.T) {
	t.Parallel()

	st := NewSessionState("sess-1", time.Now())
	st.Authenticate(contractx.CustomerIdentity{CustomerID: 42, FirstName: "Ayşe", LastName: "Yılmaz"})

	if !st.IsAuthenticated {
		t.Fatal("expected authenticated session")
	}
	if st.Identity == nil || st.Identity.CustomerID != 42 {
		t.Fatalf("unexpected identity: %+v", st.Identity)
	}
	if st.AuthPhase != AuthAuthenticated {
		t.Fatalf("expected authenticated phase, got %q", st.AuthPhase)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateCatchesCorruption(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*SessionState)
	}{
		{"empty session id", func(st *SessionState) { st.SessionID = "" }},
		{"bad cursor", func(st *SessionState) { st.StepCursor = Step("warp") }},
		{"authenticated without identity", func(st *SessionState) { st.IsAuthenticated = true }},
		{"pending intent while authenticated", func(st *SessionState) {
			st.Authenticate(contractx.CustomerIdentity{CustomerID: 1})
			st.PendingIntent = "faturamı göster"
		}},
		{"foreign wizard step", func(st *SessionState) {
			st.Active = &Transaction{Kind: contractx.KindDispute, Step: StepCollectingPhone}
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			st := NewSessionState("sess-1", time.Now())
			tc.mutate(st)
			if err := st.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestStepsForCoverEveryKind(t *testing.T) {
	t.Parallel()

	kinds := []contractx.TransactionKind{
		contractx.KindRegistration,
		contractx.KindPlanChange,
		contractx.KindAppointment,
		contractx.KindDispute,
		contractx.KindBillingView,
		contractx.KindSubscriptionView,
	}
	for _, kind := range kinds {
		if len(StepsFor(kind)) == 0 {
			t.Fatalf("no steps defined for %s", kind)
		}
	}
	if StepsFor(contractx.TransactionKind("teleport")) != nil {
		t.Fatal("expected nil steps for unknown kind")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	st := NewSessionState("sess-1", now)
	st.PendingIntent = "faturamı göster"
	st.AppendTurn(SpeakerCustomer, "merhaba", now)
	if _, err := st.BeginTransaction(contractx.KindRegistration); err != nil {
		t.Fatalf("BeginTransaction() error = %v", err)
	}
	st.Active.SetField("city", "Ankara")

	snap := st.Clone()

	st.Authenticate(contractx.CustomerIdentity{CustomerID: 42, FirstName: "Ayşe"})
	st.PendingIntent = ""
	st.AppendTurn(SpeakerAssistant, "buyrun", now)
	st.Active.SetField("city", "İzmir")
	st.Active.MoveTo(StepCollectingName)

	if snap.IsAuthenticated || snap.Identity != nil {
		t.Fatal("clone must not observe later authentication")
	}
	if snap.PendingIntent != "faturamı göster" {
		t.Fatalf("clone pending intent = %q", snap.PendingIntent)
	}
	if len(snap.Transcript) != 1 {
		t.Fatalf("clone transcript length = %d", len(snap.Transcript))
	}
	if snap.Active.Field("city") != "Ankara" || snap.Active.Step != StepCollectingID {
		t.Fatalf("clone transaction = %+v", snap.Active)
	}
}

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

type fakeIdentity struct {
	results map[string]contractx.AuthResult
	err     error
	calls   int
}

func (f *fakeIdentity) Authenticate(ctx context.Context, nationalID string) (contractx.AuthResult, error) {
	f.calls++
	if f.err != nil {
		return contractx.AuthResult{}, f.err
	}
	return f.results[nationalID], nil
}

func newTestSession() *statex.SessionState {
	return statex.NewSessionState("sess-1", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestInterceptParksIntent(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeIdentity{})
	st := newTestSession()

	reply := g.Intercept(st, "faturamı göster")
	if st.PendingIntent != "faturamı göster" {
		t.Fatalf("pending intent = %q", st.PendingIntent)
	}
	if st.AuthPhase != statex.AuthAwaitingCredential {
		t.Fatalf("phase = %q", st.AuthPhase)
	}
	if !strings.Contains(reply, "TC kimlik") {
		t.Fatalf("unexpected prompt: %q", reply)
	}
}

func TestAdvanceResumesParkedIntent(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{results: map[string]contractx.AuthResult{
		"12345678901": {
			Exists:   true,
			IsActive: true,
			Identity: contractx.CustomerIdentity{CustomerID: 42, FirstName: "Ayşe", LastName: "Yılmaz"},
		},
	}}
	g := NewGate(identity)
	st := newTestSession()
	g.Intercept(st, "faturamı göster")

	res, err := g.Advance(context.Background(), st, "12345678901")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if !res.Resumed || res.ResumeText != "faturamı göster" {
		t.Fatalf("expected resumed intent, got %+v", res)
	}
	if !strings.Contains(res.Greeting, "Ayşe Yılmaz") {
		t.Fatalf("greeting = %q", res.Greeting)
	}
	if !st.IsAuthenticated || st.PendingIntent != "" {
		t.Fatalf("state after resume: auth=%v pending=%q", st.IsAuthenticated, st.PendingIntent)
	}
}

func TestAdvanceWithoutPendingGreets(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{results: map[string]contractx.AuthResult{
		"12345678901": {
			Exists:   true,
			IsActive: true,
			Identity: contractx.CustomerIdentity{CustomerID: 42, FirstName: "Ayşe", LastName: "Yılmaz"},
		},
	}}
	g := NewGate(identity)
	st := newTestSession()
	st.AuthPhase = statex.AuthAwaitingCredential

	res, err := g.Advance(context.Background(), st, "12345678901")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if res.Resumed {
		t.Fatal("nothing was parked, nothing to resume")
	}
	if !strings.Contains(res.Reply, "Merhaba Ayşe Yılmaz") {
		t.Fatalf("reply = %q", res.Reply)
	}
}

func TestAdvanceUnreadableCredentialConsumesAttempt(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeIdentity{})
	st := newTestSession()
	g.Intercept(st, "paketimi göster")

	res, err := g.Advance(context.Background(), st, "bilmiyorum ki")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if st.AuthAttempts != 1 {
		t.Fatalf("attempts = %d", st.AuthAttempts)
	}
	if !strings.Contains(res.Reply, "11 haneli") {
		t.Fatalf("reply = %q", res.Reply)
	}
}

func TestAdvanceExhaustsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeIdentity{results: map[string]contractx.AuthResult{}})
	st := newTestSession()
	g.Intercept(st, "faturamı göster")

	ctx := context.Background()
	var res Result
	var err error
	for i := 0; i <= DefaultMaxAttempts; i++ {
		res, err = g.Advance(ctx, st, "11111111111")
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}

	if !g.Exhausted(st) {
		t.Fatal("expected exhausted gate")
	}
	if st.PendingIntent != "" {
		t.Fatalf("parked intent must be dropped, got %q", st.PendingIntent)
	}
	if st.IsAuthenticated {
		t.Fatal("failed authentication must not authenticate")
	}
	if !strings.Contains(res.Reply, "yeni müşteri kaydı") {
		t.Fatalf("exhaustion reply = %q", res.Reply)
	}
}

func TestAdvanceInactiveAccount(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{results: map[string]contractx.AuthResult{
		"12345678901": {Exists: true, IsActive: false},
	}}
	g := NewGate(identity)
	st := newTestSession()
	g.Intercept(st, "faturamı göster")

	res, err := g.Advance(context.Background(), st, "12345678901")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if st.IsAuthenticated {
		t.Fatal("inactive account must not authenticate")
	}
	if !strings.Contains(res.Reply, "aktif görünmüyor") {
		t.Fatalf("reply = %q", res.Reply)
	}
	if st.AuthAttempts != 1 {
		t.Fatalf("attempts = %d", st.AuthAttempts)
	}
}

func TestAdvanceServiceErrorKeepsAttempts(t *testing.T) {
	t.Parallel()

	identity := &fakeIdentity{err: errors.New("connection refused")}
	g := NewGate(identity)
	st := newTestSession()
	g.Intercept(st, "faturamı göster")

	res, err := g.Advance(context.Background(), st, "12345678901")
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if st.AuthAttempts != 0 {
		t.Fatalf("transport failure must not consume an attempt, got %d", st.AuthAttempts)
	}
	if st.AuthPhase != statex.AuthAwaitingCredential {
		t.Fatalf("phase = %q", st.AuthPhase)
	}
	if !strings.Contains(res.Reply, "tekrar deneyebilir") {
		t.Fatalf("reply = %q", res.Reply)
	}
	if st.PendingIntent != "faturamı göster" {
		t.Fatalf("parked intent must survive, got %q", st.PendingIntent)
	}
}

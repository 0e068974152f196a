package router

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

type scriptedOracle struct {
	replies []string
	errs    []error
	calls   int
}

func (o *scriptedOracle) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	i := o.calls
	o.calls++
	if i < len(o.errs) && o.errs[i] != nil {
		return "", o.errs[i]
	}
	if i < len(o.replies) {
		return o.replies[i], nil
	}
	return "", errors.New("no scripted reply left")
}

func newSession(authenticated bool) *statex.SessionState {
	st := statex.NewSessionState("sess-1", time.Now())
	if authenticated {
		st.Authenticate(contractx.CustomerIdentity{CustomerID: 1, FirstName: "Ali", LastName: "Kaya"})
	}
	return st
}

func TestRouteTransactionWhenAuthenticated(t *testing.T) {
	t.Parallel()

	r := New(&scriptedOracle{replies: []string{`{"category": "billing_view"}`}})
	dec, err := r.Route(context.Background(), newSession(true), "faturalarımı göster", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteTransaction || dec.Kind != contractx.KindBillingView {
		t.Fatalf("unexpected decision: %+v", dec)
	}
}

func TestRoutePrivilegedIntentGatesUnauthenticated(t *testing.T) {
	t.Parallel()

	r := New(&scriptedOracle{replies: []string{`{"category": "billing_view"}`}})
	dec, err := r.Route(context.Background(), newSession(false), "faturalarımı göster", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteAuthenticate {
		t.Fatalf("expected authenticate target, got %+v", dec)
	}
	if dec.OriginalIntent != "faturalarımı göster" {
		t.Fatalf("original intent = %q", dec.OriginalIntent)
	}
}

func TestRouteRegistrationOpenToAnonymous(t *testing.T) {
	t.Parallel()

	r := New(&scriptedOracle{replies: []string{`{"category": "registration"}`}})
	dec, err := r.Route(context.Background(), newSession(false), "abone olmak istiyorum", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteTransaction || dec.Kind != contractx.KindRegistration {
		t.Fatalf("unexpected decision: %+v", dec)
	}
}

func TestRouteFAQAndEnd(t *testing.T) {
	t.Parallel()

	r := New(&scriptedOracle{replies: []string{`{"category": "faq"}`}})
	dec, err := r.Route(context.Background(), newSession(false), "roaming nasıl açılır", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteFAQ {
		t.Fatalf("expected faq, got %+v", dec)
	}

	r = New(&scriptedOracle{replies: []string{`{"category": "end"}`}})
	dec, err = r.Route(context.Background(), newSession(false), "görüşürüz", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteEnd {
		t.Fatalf("expected end, got %+v", dec)
	}
}

func TestRouteClarifyCarriesQuestion(t *testing.T) {
	t.Parallel()

	r := New(&scriptedOracle{replies: []string{`{"category": "clarify", "question": "Hangi konuda yardım istersiniz?"}`}})
	dec, err := r.Route(context.Background(), newSession(true), "şey", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteClarify || dec.Question != "Hangi konuda yardım istersiniz?" {
		t.Fatalf("unexpected decision: %+v", dec)
	}
}

func TestRouteRetriesMalformedReplyOnce(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{replies: []string{
		"Tabii ki! Kategori şu olabilir...",
		`Sonuç: {"category": "appointment"}`,
	}}
	r := New(oracle)
	dec, err := r.Route(context.Background(), newSession(true), "internetim çalışmıyor", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if oracle.calls != 2 {
		t.Fatalf("expected one retry, got %d calls", oracle.calls)
	}
	if dec.Target != contractx.RouteTransaction || dec.Kind != contractx.KindAppointment {
		t.Fatalf("unexpected decision: %+v", dec)
	}
}

func TestRouteFallsBackToKeywordsOnGarbage(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{replies: []string{"ne?", "hala json değil"}}
	r := New(oracle)
	dec, err := r.Route(context.Background(), newSession(true), "faturama itiraz etmek istiyorum", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if dec.Target != contractx.RouteTransaction || dec.Kind != contractx.KindDispute {
		t.Fatalf("expected keyword fallback to dispute, got %+v", dec)
	}
}

func TestRoutePropagatesOracleUnavailable(t *testing.T) {
	t.Parallel()

	oracle := &scriptedOracle{errs: []error{contractx.ErrOracleUnavailable}}
	r := New(oracle)
	if _, err := r.Route(context.Background(), newSession(true), "fatura", ""); !errors.Is(err, contractx.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestKeywordClassifierPriorities(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"faturama itiraz ediyorum", "dispute"},
		{"faturamı görmek istiyorum", "billing_view"},
		{"paket değişikliği yapalım", "plan_change"},
		{"paketim nedir", "subscription_view"},
		{"internetim çok yavaş", "appointment"},
		{"yeni müşteri olmak istiyorum", "registration"},
		{"görüşürüz", "end"},
		{"roaming ücreti ne kadar", "faq"},
		{"asdf qwerty", "clarify"},
	}

	c := &KeywordClassifier{}
	for _, tc := range cases {
		cat, err := c.Classify(context.Background(), tc.in, "", true)
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", tc.in, err)
		}
		if cat.Name != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.in, cat.Name, tc.want)
		}
	}
}

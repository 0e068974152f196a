package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

type fakeOracle struct {
	reply string
	err   error
	calls int
}

func (o *fakeOracle) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	o.calls++
	if o.err != nil {
		return "", o.err
	}
	return o.reply, nil
}

func fillTurns(l *Ledger, st *statex.SessionState, n int) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		// Numbering continues across calls so a second fill extends the
		// same conversation.
		idx := len(st.Transcript) + 1
		speaker := statex.SpeakerCustomer
		if idx%2 == 0 {
			speaker = statex.SpeakerAssistant
		}
		l.Record(context.Background(), st, speaker, fmt.Sprintf("mesaj %d", idx), now)
	}
}

func TestContextForEmptySession(t *testing.T) {
	t.Parallel()

	l := NewLedger(&fakeOracle{})
	st := statex.NewSessionState("sess-1", time.Now())

	if got := l.ContextFor(st, 6); got != "Yeni konuşma başlıyor." {
		t.Fatalf("ContextFor() = %q", got)
	}
}

func TestContextForLimitsRawTurns(t *testing.T) {
	t.Parallel()

	l := NewLedger(&fakeOracle{}, WithBatchSize(100))
	st := statex.NewSessionState("sess-1", time.Now())
	fillTurns(l, st, 10)

	got := l.ContextFor(st, 3)
	if strings.Count(got, "\n") != 2 {
		t.Fatalf("expected 3 lines, got %q", got)
	}
	if !strings.Contains(got, "mesaj 10") || strings.Contains(got, "mesaj 7") {
		t.Fatalf("window is wrong: %q", got)
	}
}

func TestSummarizeOnBatchBoundary(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{reply: "Müşteri fatura sordu → doğrulama bekliyor"}
	l := NewLedger(oracle, WithBatchSize(4), WithTailSize(2))
	st := statex.NewSessionState("sess-1", time.Now())

	fillTurns(l, st, 3)
	if oracle.calls != 0 {
		t.Fatalf("summarization before the boundary: %d calls", oracle.calls)
	}

	fillTurns(l, st, 1)
	if oracle.calls != 1 {
		t.Fatalf("expected one summarization, got %d", oracle.calls)
	}
	if !strings.HasPrefix(st.RollingSummary, "Özet: Müşteri fatura sordu") {
		t.Fatalf("rolling summary = %q", st.RollingSummary)
	}
	if !strings.Contains(st.RollingSummary, "mesaj 4") || strings.Contains(st.RollingSummary, "mesaj 1") {
		t.Fatalf("tail is wrong: %q", st.RollingSummary)
	}
	if st.SummarizedThrough != 4 {
		t.Fatalf("SummarizedThrough = %d", st.SummarizedThrough)
	}
}

func TestSummarizeFailureKeepsState(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{err: errors.New("timeout")}
	l := NewLedger(oracle, WithBatchSize(2))
	st := statex.NewSessionState("sess-1", time.Now())

	fillTurns(l, st, 2)
	if st.RollingSummary != "" {
		t.Fatalf("failed summarization must not set a summary, got %q", st.RollingSummary)
	}
	if st.SummarizedThrough != 0 {
		t.Fatalf("SummarizedThrough = %d", st.SummarizedThrough)
	}
	if len(st.Transcript) != 2 {
		t.Fatalf("transcript must keep all turns, got %d", len(st.Transcript))
	}

	// The next boundary retries with everything still unsummarized.
	oracle.err = nil
	oracle.reply = "özet"
	fillTurns(l, st, 2)
	if st.SummarizedThrough != 4 {
		t.Fatalf("retry must cover the backlog, got %d", st.SummarizedThrough)
	}
}

func TestContextForAfterSummary(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{reply: "kısa özet"}
	l := NewLedger(oracle, WithBatchSize(4), WithTailSize(2))
	st := statex.NewSessionState("sess-1", time.Now())
	fillTurns(l, st, 4)

	got := l.ContextFor(st, 2)
	if !strings.HasPrefix(got, "Özet: kısa özet") {
		t.Fatalf("context must lead with the summary: %q", got)
	}
	if !strings.Contains(got, "Asistan: mesaj 4") {
		t.Fatalf("context must include recent turns: %q", got)
	}
}

package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

const (
	DefaultBatchSize   = 12
	DefaultTailSize    = 6
	DefaultMaxRawTurns = 6
)

const summarizerInstructions = `Sen konuşma özeti uzmanısın. Müşteri hizmetleri konuşmasını analiz et ve ÇOK KISA özet çıkar.
Önemli bilgiler: ana talep, kimlik doğrulandı mı, devam eden işlem, bekleyen süreç.
KURAL: Max 300 karakter, akış göster (→), önemli detayları koru.`

// Ledger appends turns and produces bounded oracle context via rolling
// summarization. Every batchSize-th turn it synchronously asks the oracle to
// compress everything not yet summarized; the digest plus the last tailSize
// raw turns replaces the previous rolling summary. A failed summarization is
// non-fatal: raw turns keep accumulating until the next successful attempt.
type Ledger struct {
	oracle    contractx.Oracle
	batchSize int
	tailSize  int
}

type Option func(*Ledger)

func WithBatchSize(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

func WithTailSize(n int) Option {
	return func(l *Ledger) {
		if n >= 0 {
			l.tailSize = n
		}
	}
}

func NewLedger(oracle contractx.Oracle, opts ...Option) *Ledger {
	l := &Ledger{
		oracle:    oracle,
		batchSize: DefaultBatchSize,
		tailSize:  DefaultTailSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Record appends one turn and, on batch boundaries, folds older turns into
// the rolling summary.
func (l *Ledger) Record(ctx context.Context, st *statex.SessionState, speaker statex.Speaker, text string, now time.Time) {
	st.AppendTurn(speaker, text, now)
	if len(st.Transcript)%l.batchSize != 0 {
		return
	}
	l.summarize(ctx, st)
}

// ContextFor combines the rolling summary with the last maxRawTurns raw
// turns. Output size is bounded by a constant once at least one
// summarization cycle has run.
func (l *Ledger) ContextFor(st *statex.SessionState, maxRawTurns int) string {
	if maxRawTurns <= 0 {
		maxRawTurns = DefaultMaxRawTurns
	}

	var b strings.Builder
	if st.RollingSummary != "" {
		b.WriteString(st.RollingSummary)
		b.WriteString("\n")
	}

	recent := st.Transcript
	if len(recent) > maxRawTurns {
		recent = recent[len(recent)-maxRawTurns:]
	}
	if len(recent) == 0 && st.RollingSummary == "" {
		return "Yeni konuşma başlıyor."
	}
	b.WriteString(FormatTurns(recent))
	return strings.TrimSpace(b.String())
}

func (l *Ledger) summarize(ctx context.Context, st *statex.SessionState) {
	if l.oracle == nil {
		return
	}

	unsummarized := st.Transcript[st.SummarizedThrough:]
	if len(unsummarized) == 0 {
		return
	}

	var prompt strings.Builder
	if st.RollingSummary != "" {
		prompt.WriteString("Önceki özet:\n")
		prompt.WriteString(st.RollingSummary)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("Yeni mesajlar:\n")
	prompt.WriteString(FormatTurns(unsummarized))
	prompt.WriteString("\n\nBu konuşmanın çok kısa özetini yap.")

	digest, err := l.oracle.Complete(ctx, contractx.CompletionRequest{
		Prompt:             prompt.String(),
		SystemInstructions: summarizerInstructions,
		Temperature:        0.3,
		MaxOutputTokens:    300,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", st.SessionID).Msg("rolling summarization failed, keeping raw turns")
		return
	}
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return
	}

	tail := st.Transcript
	if len(tail) > l.tailSize {
		tail = tail[len(tail)-l.tailSize:]
	}

	st.RollingSummary = fmt.Sprintf("Özet: %s\n%s", digest, FormatTurns(tail))
	st.SummarizedThrough = len(st.Transcript)
}

// FormatTurns renders turns the way the oracle prompts expect them.
func FormatTurns(turns []statex.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := "Asistan"
		if t.Speaker == statex.SpeakerCustomer {
			role = "Müşteri"
		}
		lines = append(lines, role+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

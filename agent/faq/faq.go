package faq

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kermits/telassist/agent/contract"
	promptx "github.com/kermits/telassist/agent/prompt"
)

const (
	// DefaultTopK is how many knowledge entries ground one answer.
	DefaultTopK = 3

	noMatchMsg    = "Bu konuda elimde bilgi bulamadım. Müşteri hizmetlerimizi arayarak detaylı bilgi alabilirsiniz: 532"
	knowledgeDown = "Bilgi kaynağımıza şu anda ulaşamıyorum. Lütfen biraz sonra tekrar deneyin ya da müşteri hizmetlerimizi arayın: 532"
)

// Responder answers informational questions from the knowledge base. The
// oracle rewrites the retrieved entries into a grounded reply; when it is
// unreachable the best-matching entry's stored answer goes out verbatim.
type Responder struct {
	knowledge contractx.KnowledgeBase
	oracle    contractx.Oracle
	topK      int
}

type Option func(*Responder)

func WithTopK(k int) Option {
	return func(r *Responder) {
		if k > 0 {
			r.topK = k
		}
	}
}

func NewResponder(knowledge contractx.KnowledgeBase, oracle contractx.Oracle, opts ...Option) *Responder {
	r := &Responder{knowledge: knowledge, oracle: oracle, topK: DefaultTopK}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Answer resolves one informational question. It never returns an error for
// degraded collaborators; the reply text explains the degradation instead.
func (r *Responder) Answer(ctx context.Context, question string) (string, error) {
	entries, err := r.knowledge.Search(ctx, question, r.topK)
	if err != nil {
		log.Warn().Err(err).Msg("faq: knowledge search failed")
		return knowledgeDown, nil
	}
	if len(entries) == 0 {
		return noMatchMsg, nil
	}

	reply, err := r.compose(ctx, question, entries)
	if err != nil {
		log.Warn().Err(err).Msg("faq: oracle compose failed, using stored answer")
		return entries[0].Answer, nil
	}
	return reply, nil
}

func (r *Responder) compose(ctx context.Context, question string, entries []contractx.FAQEntry) (string, error) {
	var b strings.Builder
	b.WriteString("SSS KAYITLARI:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d) Soru: %s\n   Cevap: %s\n", i+1, e.Question, e.Answer)
	}
	fmt.Fprintf(&b, "\nMÜŞTERİ SORUSU: %s", question)

	reply, err := r.oracle.Complete(ctx, contractx.CompletionRequest{
		Prompt:             b.String(),
		SystemInstructions: promptx.FAQ(),
		Temperature:        0.3,
		MaxOutputTokens:    400,
	})
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", contractx.ErrOracleMalformed)
	}
	return reply, nil
}

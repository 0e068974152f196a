package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

const DefaultMaxAttempts = 2

const (
	credentialRequestMsg = "Size yardımcı olabilmem için TC kimlik numaranızı paylaşabilir misiniz? Bu bilgi güvenli bir şekilde işlenecektir."
	credentialRetryMsg   = "Geçerli bir TC kimlik numarası bulamadım. Lütfen 11 haneli TC kimlik numaranızı yazın (örn: 12345678901):"
	notFoundMsg          = "Bu TC kimlik numarasıyla kayıtlı bir müşteri bulamadım. Numaranızı kontrol edip tekrar yazar mısınız?"
	inactiveMsg          = "Hesabınız şu anda aktif görünmüyor. Müşteri hizmetlerimizi arayarak (532) hesabınızı aktifleştirebilirsiniz."
	exhaustedMsg         = "Anlıyorum, kimlik doğrulaması tamamlanamadı. Kişisel hesap bilgilerinize erişemeyeceğim; genel hizmetler ve yeni müşteri kaydı konusunda yardımcı olabilirim."
	serviceErrMsg        = "Kimlik doğrulama sisteminde kısa süreli bir sorun oluştu. Özür dileriz, biraz sonra tekrar deneyebilir misiniz?"
)

// Result is what one gate invocation produced. Exactly one of Reply or
// ResumeText is meaningful: a non-empty ResumeText means authentication
// succeeded and the parked intent must be re-routed within the same turn.
type Result struct {
	Reply      string
	Resumed    bool
	ResumeText string
	// Greeting, when set alongside Resumed, prefixes the resumed
	// transaction's first reply.
	Greeting string
}

// Gate runs the credential sub-flow: it parks the originating request,
// verifies an extracted identifier against the identity service, and hands
// control back to the parked request on success. Only the identity-service
// call has side effects; every other transition is pure.
type Gate struct {
	identity    contractx.IdentityService
	extractor   Extractor
	maxAttempts int
}

type Option func(*Gate)

func WithExtractor(e Extractor) Option {
	return func(g *Gate) {
		if e != nil {
			g.extractor = e
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func NewGate(identity contractx.IdentityService, opts ...Option) *Gate {
	g := &Gate{
		identity:    identity,
		extractor:   DigitScanExtractor{},
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Intercept parks the original request and emits the credential prompt.
// Transition: unauthenticated -> awaiting_credential.
func (g *Gate) Intercept(st *statex.SessionState, originalIntent string) string {
	st.PendingIntent = originalIntent
	st.AuthPhase = statex.AuthAwaitingCredential
	st.AuthAttempts = 0
	return credentialRequestMsg
}

// Advance consumes the next turn while the gate owns the session.
func (g *Gate) Advance(ctx context.Context, st *statex.SessionState, userText string) (Result, error) {
	id, ok := g.extractor.Extract(ctx, userText)
	if !ok {
		return g.failAttempt(st, credentialRetryMsg), nil
	}

	st.AuthPhase = statex.AuthVerifying
	res, err := g.identity.Authenticate(ctx, id)
	if err != nil {
		// Stay in awaiting_credential so the same step retries next turn;
		// a transport failure does not consume an attempt.
		st.AuthPhase = statex.AuthAwaitingCredential
		log.Error().Err(err).Str("session_id", st.SessionID).Msg("identity lookup failed")
		return Result{Reply: serviceErrMsg}, nil
	}

	switch {
	case res.Exists && res.IsActive:
		st.Authenticate(res.Identity)
		pending := st.PendingIntent
		st.PendingIntent = ""
		greeting := fmt.Sprintf("Merhaba %s! ", res.Identity.FullName())
		if pending == "" {
			return Result{Reply: greeting + "Size nasıl yardımcı olabilirim?"}, nil
		}
		return Result{Resumed: true, ResumeText: pending, Greeting: greeting}, nil
	case res.Exists:
		return g.failAttempt(st, inactiveMsg), nil
	default:
		return g.failAttempt(st, notFoundMsg), nil
	}
}

func (g *Gate) failAttempt(st *statex.SessionState, reply string) Result {
	st.AuthAttempts++
	if st.AuthAttempts > g.maxAttempts {
		// Discard the parked intent and fall back to unauthenticated-tier
		// capabilities; the session keeps going.
		st.PendingIntent = ""
		st.AuthAttempts = 0
		st.AuthPhase = statex.AuthFailedExhausted
		return Result{Reply: exhaustedMsg}
	}
	st.AuthPhase = statex.AuthAwaitingCredential
	return Result{Reply: reply}
}

// Exhausted reports whether the last Advance gave up; the engine then routes
// the session back to classify at unauthenticated tier.
func (g *Gate) Exhausted(st *statex.SessionState) bool {
	return st.AuthPhase == statex.AuthFailedExhausted
}

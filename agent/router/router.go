package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kermits/telassist/agent/contract"
	promptx "github.com/kermits/telassist/agent/prompt"
	statex "github.com/kermits/telassist/agent/state"
)

const genericClarifyQuestion = "Tam olarak anlayamadım. Fatura, paket, arıza/randevu, yeni kayıt veya genel bir soru: hangisiyle ilgili yardımcı olabilirim?"

// Classifier maps a user utterance to one of the routing categories. Two
// implementations exist: the oracle-backed one and a deterministic keyword
// scanner used when the oracle's output cannot be parsed.
type Classifier interface {
	Classify(ctx context.Context, userText, convContext string, authenticated bool) (Category, error)
}

// Category is the classifier's raw verdict before privilege gating.
type Category struct {
	Name     string `json:"category"`
	Question string `json:"question,omitempty"`
}

// Router is a thin dispatcher: it asks the classifier for a category and
// maps it to a RoutingDecision, inserting the authentication gate in front
// of privileged transactions.
type Router struct {
	primary  Classifier
	fallback Classifier
}

func New(oracle contractx.Oracle) *Router {
	return &Router{
		primary:  &OracleClassifier{oracle: oracle},
		fallback: &KeywordClassifier{},
	}
}

// NewWithClassifiers is used by tests to substitute strategies.
func NewWithClassifiers(primary, fallback Classifier) *Router {
	return &Router{primary: primary, fallback: fallback}
}

// Route decides the next orchestration step for a turn. A turn is never
// silently dropped: unparsable oracle output degrades to the keyword
// fallback and finally to a generic clarifying question.
func (r *Router) Route(ctx context.Context, st *statex.SessionState, userText, convContext string) (contractx.RoutingDecision, error) {
	cat, err := r.primary.Classify(ctx, userText, convContext, st.IsAuthenticated)
	if err != nil {
		if errors.Is(err, contractx.ErrOracleUnavailable) {
			return contractx.RoutingDecision{}, err
		}
		log.Debug().Err(err).Msg("oracle classification unusable, using keyword fallback")
		cat, err = r.fallback.Classify(ctx, userText, convContext, st.IsAuthenticated)
		if err != nil {
			return clarifyDecision(""), nil
		}
	}
	return r.toDecision(st, userText, cat), nil
}

func (r *Router) toDecision(st *statex.SessionState, userText string, cat Category) contractx.RoutingDecision {
	kind, ok := kindForCategory(cat.Name)
	if ok {
		if kind.RequiresAuth() && !st.IsAuthenticated {
			return contractx.RoutingDecision{
				Target:         contractx.RouteAuthenticate,
				OriginalIntent: userText,
			}
		}
		return contractx.RoutingDecision{Target: contractx.RouteTransaction, Kind: kind}
	}

	switch cat.Name {
	case "faq":
		return contractx.RoutingDecision{Target: contractx.RouteFAQ}
	case "end":
		return contractx.RoutingDecision{Target: contractx.RouteEnd}
	default:
		return clarifyDecision(cat.Question)
	}
}

func kindForCategory(name string) (contractx.TransactionKind, bool) {
	kind := contractx.TransactionKind(strings.TrimSpace(strings.ToLower(name)))
	if kind.Valid() {
		return kind, true
	}
	return "", false
}

func clarifyDecision(question string) contractx.RoutingDecision {
	q := strings.TrimSpace(question)
	if q == "" {
		q = genericClarifyQuestion
	}
	return contractx.RoutingDecision{Target: contractx.RouteClarify, Question: q}
}

// OracleClassifier asks the oracle for a JSON verdict; a malformed reply is
// retried once with a stricter instruction before giving up.
type OracleClassifier struct {
	oracle contractx.Oracle
}

var jsonObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)

func (c *OracleClassifier) Classify(ctx context.Context, userText, convContext string, authenticated bool) (Category, error) {
	system := promptx.ClassifierRestricted()
	if authenticated {
		system = promptx.ClassifierFull()
	}

	prompt := fmt.Sprintf("Konuşma bağlamı:\n%s\n\nMüşterinin son mesajı: %q", convContext, userText)

	reply, err := c.oracle.Complete(ctx, contractx.CompletionRequest{
		Prompt:             prompt,
		SystemInstructions: system,
		Temperature:        0.1,
		MaxOutputTokens:    200,
	})
	if err != nil {
		return Category{}, err
	}

	cat, perr := parseCategory(reply)
	if perr == nil {
		return cat, nil
	}

	// One retry with a stricter instruction, then the caller falls back.
	reply, err = c.oracle.Complete(ctx, contractx.CompletionRequest{
		Prompt:             prompt,
		SystemInstructions: system + "\n\nSADECE geçerli bir JSON nesnesi döndür. Başka hiçbir şey yazma.",
		Temperature:        0,
		MaxOutputTokens:    200,
	})
	if err != nil {
		return Category{}, err
	}
	cat, perr = parseCategory(reply)
	if perr != nil {
		return Category{}, fmt.Errorf("%w: %v", contractx.ErrOracleMalformed, perr)
	}
	return cat, nil
}

func parseCategory(reply string) (Category, error) {
	raw := strings.TrimSpace(reply)
	if match := jsonObjectPattern.FindString(raw); match != "" {
		raw = match
	}

	var cat Category
	if err := json.Unmarshal([]byte(raw), &cat); err != nil {
		return Category{}, fmt.Errorf("decode category: %w", err)
	}
	cat.Name = strings.TrimSpace(strings.ToLower(cat.Name))
	if cat.Name == "" {
		return Category{}, errors.New("empty category")
	}
	if !knownCategory(cat.Name) {
		return Category{}, fmt.Errorf("unknown category %q", cat.Name)
	}
	return cat, nil
}

func knownCategory(name string) bool {
	switch name {
	case "billing_view", "dispute", "subscription_view", "plan_change",
		"appointment", "registration", "faq", "end", "clarify":
		return true
	}
	return false
}

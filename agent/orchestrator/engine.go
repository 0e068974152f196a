package orchestrator

import (
	"context"
	"fmt"

	contractx "github.com/kermits/telassist/agent/contract"
	"github.com/kermits/telassist/agent/history"
	statex "github.com/kermits/telassist/agent/state"
)

const (
	farewellMsg   = "Görüşmek üzere! Bize ulaştığınız için teşekkürler, iyi günler dileriz."
	retryLaterMsg = "Şu anda isteğinizi işleyemiyorum. Lütfen biraz sonra tekrar deneyin."
)

// runGraph walks the orchestration graph for one turn. Nodes either hand
// control to another node (a hop, with the current utterance possibly
// swapped for a parked one) or produce a reply and stop. The hop budget
// turns a wiring bug into an error instead of a spin.
func (o *Orchestrator) runGraph(ctx context.Context, st *statex.SessionState, userText string) (string, error) {
	text := userText
	prefix := ""

	for hop := 0; hop < o.maxHops; hop++ {
		switch st.StepCursor {
		case statex.StepClassify:
			convContext := o.ledger.ContextFor(st, history.DefaultMaxRawTurns)
			decision, err := o.router.Route(ctx, st, text, convContext)
			if err != nil {
				return "", err
			}

			switch decision.Target {
			case contractx.RouteClarify:
				return prefix + decision.Question, nil
			case contractx.RouteEnd:
				st.StepCursor = statex.StepEnd
				continue
			case contractx.RouteFAQ:
				st.StepCursor = statex.StepFAQ
				continue
			case contractx.RouteAuthenticate:
				st.StepCursor = statex.StepAuthenticate
				return prefix + o.gate.Intercept(st, decision.OriginalIntent), nil
			case contractx.RouteTransaction:
				st.StepCursor = statex.StepTransaction
				adv, err := o.wizards.Begin(ctx, st, decision.Kind, text)
				if err != nil {
					return "", err
				}
				if adv.Done {
					st.StepCursor = statex.StepClassify
				}
				return prefix + adv.Reply, nil
			default:
				return "", fmt.Errorf("%w: unknown route target %q", statex.ErrCorruptState, decision.Target)
			}

		case statex.StepAuthenticate:
			// A verified session has nothing left to prove; only the
			// cursor is stale, so classification takes over directly.
			if st.IsAuthenticated {
				st.StepCursor = statex.StepClassify
				continue
			}
			res, err := o.gate.Advance(ctx, st, text)
			if err != nil {
				return "", err
			}
			if res.Resumed {
				// Verified: the parked request replaces the credential
				// utterance and classification runs again this same turn.
				st.StepCursor = statex.StepClassify
				text = res.ResumeText
				prefix = res.Greeting
				continue
			}
			if st.IsAuthenticated || o.gate.Exhausted(st) {
				if o.gate.Exhausted(st) {
					st.AuthPhase = statex.AuthUnauthenticated
				}
				st.StepCursor = statex.StepClassify
			}
			return prefix + res.Reply, nil

		case statex.StepTransaction:
			if st.Active == nil {
				st.StepCursor = statex.StepClassify
				continue
			}
			adv, err := o.wizards.Advance(ctx, st, text)
			if err != nil {
				return "", err
			}
			if adv.Done {
				st.StepCursor = statex.StepClassify
			}
			return prefix + adv.Reply, nil

		case statex.StepFAQ:
			reply, err := o.faq.Answer(ctx, text)
			if err != nil {
				return "", err
			}
			st.StepCursor = statex.StepClassify
			return prefix + reply, nil

		case statex.StepEnd:
			st.Ended = true
			return prefix + farewellMsg, nil

		default:
			return "", fmt.Errorf("%w: unknown step cursor %q", statex.ErrCorruptState, st.StepCursor)
		}
	}

	return "", fmt.Errorf("%w: %d hops without reaching a waiting node", contractx.ErrLoopExceeded, o.maxHops)
}

package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

// advancePlanChange offers the available plan catalogue and applies the
// chosen switch. The choice matches either by list number or by plan name.
func (d *Dispatcher) advancePlanChange(ctx context.Context, st *statex.SessionState, tx *statex.Transaction, userText string) (Advance, error) {
	switch tx.Step {
	case statex.StepOfferingPlans:
		customerID := d.customerID(st)
		active, err := d.services.Subscriptions.ListActivePlans(ctx, customerID)
		if err != nil {
			log.Warn().Err(err).Int64("customer_id", customerID).Msg("plan change: active plans fetch failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		if len(active) == 0 {
			return d.abort(st, "Aktif bir tarifeniz görünmüyor. "+fallbackLine), nil
		}
		current := active[0]
		tx.CurrentPlan = &current

		available, err := d.services.Subscriptions.ListAvailablePlans(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("plan change: available plans fetch failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		candidates := make([]contractx.Plan, 0, len(available))
		for _, p := range available {
			if p.PlanID != current.PlanID {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return d.abort(st, "Şu anda geçebileceğiniz farklı bir tarife bulunmuyor."), nil
		}
		if len(candidates) > d.maxOptions {
			candidates = candidates[:d.maxOptions]
		}
		tx.Plans = candidates
		tx.MoveTo(statex.StepAwaitingPlanChoice)

		var b strings.Builder
		fmt.Fprintf(&b, "Mevcut tarifeniz: %s (%.2f TL/ay, %d GB)\n", current.Name, current.MonthlyFee, current.QuotaGB)
		b.WriteString("Geçebileceğiniz tarifeler:\n")
		b.WriteString(formatPlans(candidates))
		b.WriteString("\nHangi tarifeye geçmek istersiniz? Numarasını veya adını yazabilirsiniz.")
		return Advance{Reply: b.String()}, nil

	case statex.StepAwaitingPlanChoice:
		idx, ok := ParseSelection(userText, len(tx.Plans))
		if !ok {
			idx, ok = matchPlanByName(userText, tx.Plans)
		}
		if !ok {
			return d.reprompt(st, tx, fmt.Sprintf("Tarife seçiminizi anlayamadım. Lütfen 1 ile %d arasında bir numara veya tarife adını yazın.", len(tx.Plans))), nil
		}
		chosen := tx.Plans[idx-1]
		customerID := d.customerID(st)
		var oldPlanID int64
		if tx.CurrentPlan != nil {
			oldPlanID = tx.CurrentPlan.PlanID
		}
		if err := d.services.Subscriptions.ChangePlan(ctx, customerID, oldPlanID, chosen.PlanID); err != nil {
			log.Error().Err(err).Int64("customer_id", customerID).Int64("new_plan_id", chosen.PlanID).Msg("plan change failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		st.ClearTransaction()
		return Advance{
			Reply: fmt.Sprintf("Tarife değişikliğiniz tamamlandı! Yeni tarifeniz: %s (%.2f TL/ay, %d GB). Başka bir konuda yardımcı olabilir miyim?",
				chosen.Name, chosen.MonthlyFee, chosen.QuotaGB),
			Done: true,
		}, nil

	default:
		return Advance{}, fmt.Errorf("%w: step %q does not belong to plan change", statex.ErrCorruptState, tx.Step)
	}
}

// matchPlanByName returns the 1-based index of the plan whose name appears
// in the utterance, case-insensitively.
func matchPlanByName(text string, plans []contractx.Plan) (int, bool) {
	lowered := strings.ToLower(text)
	for i, p := range plans {
		if name := strings.ToLower(p.Name); name != "" && strings.Contains(lowered, name) {
			return i + 1, true
		}
	}
	return 0, false
}

package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	statex "github.com/kermits/telassist/agent/state"
)

const fieldDisputeBillID = "dispute_bill_id"

const maxDisputeBills = 3

// advanceDispute records a billing objection against one unpaid bill.
func (d *Dispatcher) advanceDispute(ctx context.Context, st *statex.SessionState, tx *statex.Transaction, userText string) (Advance, error) {
	switch tx.Step {
	case statex.StepOfferingBills:
		customerID := d.customerID(st)
		bills, err := d.services.Billing.ListUnpaidBills(ctx, customerID)
		if err != nil {
			log.Warn().Err(err).Int64("customer_id", customerID).Msg("dispute: unpaid bill fetch failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		if len(bills) == 0 {
			return d.abort(st, "Ödenmemiş faturanız bulunmuyor, itiraz edilebilecek bir fatura yok. Başka bir konuda yardımcı olabilir miyim?"), nil
		}
		if len(bills) > maxDisputeBills {
			bills = bills[:maxDisputeBills]
		}
		tx.Bills = bills
		tx.MoveTo(statex.StepAwaitingDisputeReason)

		var b strings.Builder
		b.WriteString("Ödenmemiş faturalarınız şunlar:\n")
		b.WriteString(formatBills(bills))
		b.WriteString("\nHangi faturaya itiraz etmek istiyorsunuz? Numarasını ve itiraz nedeninizi yazabilirsiniz.")
		return Advance{Reply: b.String()}, nil

	case statex.StepAwaitingDisputeReason:
		// First turn after the list picks the bill; the same message may
		// already carry the reason, otherwise we ask for it.
		if tx.Field(fieldDisputeBillID) == "" {
			idx, ok := ParseSelection(userText, len(tx.Bills))
			if !ok {
				return d.reprompt(st, tx, fmt.Sprintf("Fatura seçiminizi anlayamadım. Lütfen 1 ile %d arasında bir numara yazın.", len(tx.Bills))), nil
			}
			bill := tx.Bills[idx-1]
			tx.SetField(fieldDisputeBillID, strconv.FormatInt(bill.BillID, 10))
			if reason := stripSelection(userText); reason != "" {
				return d.fileDispute(ctx, st, bill.BillID, reason)
			}
			tx.Attempts = 0
			return Advance{Reply: fmt.Sprintf("Fatura #%d için itiraz nedeninizi yazar mısınız?", bill.BillID)}, nil
		}

		reason := strings.TrimSpace(userText)
		if reason == "" {
			return d.reprompt(st, tx, "İtiraz nedeninizi anlayamadım. Kısaca yazar mısınız?"), nil
		}
		billID, _ := strconv.ParseInt(tx.Field(fieldDisputeBillID), 10, 64)
		return d.fileDispute(ctx, st, billID, reason)

	default:
		return Advance{}, fmt.Errorf("%w: step %q does not belong to dispute", statex.ErrCorruptState, tx.Step)
	}
}

func (d *Dispatcher) fileDispute(ctx context.Context, st *statex.SessionState, billID int64, reason string) (Advance, error) {
	customerID := d.customerID(st)
	disputeID, err := d.services.Billing.CreateDispute(ctx, customerID, billID, "Müşteri itirazı: "+reason)
	if err != nil {
		log.Error().Err(err).Int64("customer_id", customerID).Int64("bill_id", billID).Msg("dispute: create failed")
		return Advance{Reply: serviceDownMsg}, nil
	}
	st.ClearTransaction()
	return Advance{
		Reply: fmt.Sprintf(
			"İtirazınızı kaydettim. Takip numaranız: %d. İtirazınız incelenip en geç 3 iş günü içinde size dönüş yapılacak. Başka bir konuda yardımcı olabilir miyim?",
			disputeID,
		),
		Done: true,
	}, nil
}

// stripSelection removes the leading bill number from the utterance so the
// remainder can stand as the dispute reason.
func stripSelection(text string) string {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return ""
	}
	if _, err := strconv.Atoi(strings.Trim(fields[0], ".,)-")); err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(fields[1:], " "))
}

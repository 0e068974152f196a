package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	statex "github.com/kermits/telassist/agent/state"
)

const maxBillLines = 3

// showBilling is a single-shot view: it renders the billing summary and the
// most recent bills and completes immediately. On a backend failure the view
// stays active so the next turn retries it.
func (d *Dispatcher) showBilling(ctx context.Context, st *statex.SessionState) (Advance, error) {
	customerID := d.customerID(st)
	summary, err := d.services.Billing.Summary(ctx, customerID)
	if err != nil {
		log.Warn().Err(err).Int64("customer_id", customerID).Msg("billing view: summary fetch failed")
		return Advance{Reply: serviceDownMsg}, nil
	}
	bills, err := d.services.Billing.ListBills(ctx, customerID, maxBillLines)
	if err != nil {
		log.Warn().Err(err).Int64("customer_id", customerID).Msg("billing view: bill fetch failed")
		return Advance{Reply: serviceDownMsg}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fatura durumunuz: toplam %d fatura, %d ödenmiş, %d ödenmemiş.\n", summary.TotalBills, summary.PaidBills, summary.UnpaidBills)
	if summary.UnpaidBills > 0 {
		fmt.Fprintf(&b, "Toplam borcunuz: %.2f TL.\n", summary.OutstandingAmount)
	} else {
		b.WriteString("Ödenmemiş faturanız bulunmuyor.\n")
	}
	if len(bills) > 0 {
		b.WriteString("Son faturalarınız:\n")
		for _, bill := range bills {
			fmt.Fprintf(&b, "- Fatura #%d: %.2f TL, son ödeme %s, durum: %s\n", bill.BillID, bill.Amount, bill.DueDate, bill.Status)
		}
	}
	b.WriteString("Başka bir konuda yardımcı olabilir miyim?")

	st.ClearTransaction()
	return Advance{Reply: b.String(), Done: true}, nil
}

// showSubscription is a single-shot view over the customer's active plans.
func (d *Dispatcher) showSubscription(ctx context.Context, st *statex.SessionState) (Advance, error) {
	customerID := d.customerID(st)
	plans, err := d.services.Subscriptions.ListActivePlans(ctx, customerID)
	if err != nil {
		log.Warn().Err(err).Int64("customer_id", customerID).Msg("subscription view: plan fetch failed")
		return Advance{Reply: serviceDownMsg}, nil
	}

	st.ClearTransaction()
	if len(plans) == 0 {
		return Advance{Reply: "Aktif bir tarifeniz görünmüyor. " + fallbackLine, Done: true}, nil
	}

	var b strings.Builder
	if len(plans) == 1 {
		p := plans[0]
		fmt.Fprintf(&b, "Aktif tarifeniz: %s - %.2f TL/ay, %d GB internet.\n", p.Name, p.MonthlyFee, p.QuotaGB)
	} else {
		b.WriteString("Aktif tarifeleriniz:\n")
		for _, p := range plans {
			fmt.Fprintf(&b, "- %s: %.2f TL/ay, %d GB internet\n", p.Name, p.MonthlyFee, p.QuotaGB)
		}
	}
	b.WriteString("Başka bir konuda yardımcı olabilir miyim?")
	return Advance{Reply: b.String(), Done: true}, nil
}

package wizard

import (
	"fmt"
	"strings"

	contractx "github.com/kermits/telassist/agent/contract"
)

// smsMaxRunes is the single-segment GSM message length.
const smsMaxRunes = 160

func formatPlans(plans []contractx.Plan) string {
	var b strings.Builder
	for i, p := range plans {
		fmt.Fprintf(&b, "%d. %s - %.2f TL/ay (%d GB)\n", i+1, p.Name, p.MonthlyFee, p.QuotaGB)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSlots(slots []contractx.Slot) string {
	var b strings.Builder
	for i, s := range slots {
		fmt.Fprintf(&b, "%d. %s %s saat %s (%s)\n", i+1, s.Date, s.DayName, s.Time, s.Team)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatBills(bills []contractx.Bill) string {
	var b strings.Builder
	for i, bill := range bills {
		fmt.Fprintf(&b, "%d. Fatura #%d - %.2f TL (son ödeme: %s)\n", i+1, bill.BillID, bill.Amount, bill.DueDate)
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncateSMS clips a message to one SMS segment on a rune boundary.
func truncateSMS(body string) string {
	runes := []rune(body)
	if len(runes) <= smsMaxRunes {
		return body
	}
	return string(runes[:smsMaxRunes])
}

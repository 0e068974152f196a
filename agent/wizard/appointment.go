package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

const appointmentNotes = "Müşteri talebi - teknik destek"

// advanceAppointment books a technical-support visit. A customer with an
// appointment already on the books is turned away before any slots are
// offered.
func (d *Dispatcher) advanceAppointment(ctx context.Context, st *statex.SessionState, tx *statex.Transaction, userText string) (Advance, error) {
	switch tx.Step {
	case statex.StepOfferingSlots:
		customerID := d.customerID(st)
		active, err := d.services.Appointments.ActiveAppointment(ctx, customerID)
		if err != nil {
			log.Warn().Err(err).Int64("customer_id", customerID).Msg("appointment: active lookup failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		if active != nil {
			return d.abort(st, fmt.Sprintf(
				"Zaten planlanmış bir randevunuz var: %s saat %s (%s). Yeni bir randevu için önce mevcut randevunuzun tamamlanması gerekiyor.",
				active.Date, active.Hour, active.Team,
			)), nil
		}

		slots, err := d.services.Appointments.AvailableSlots(ctx, 7)
		if err != nil {
			log.Warn().Err(err).Msg("appointment: slot fetch failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		if len(slots) == 0 {
			return d.abort(st, "Önümüzdeki günler için uygun randevu saati bulamadım. "+fallbackLine), nil
		}
		if len(slots) > d.maxOptions {
			slots = slots[:d.maxOptions]
		}
		tx.Slots = slots
		tx.MoveTo(statex.StepAwaitingSlotChoice)

		var b strings.Builder
		b.WriteString("Uygun randevu saatlerimiz şunlar:\n")
		b.WriteString(formatSlots(slots))
		b.WriteString("\nHangi saat size uygun? Numarasını yazmanız yeterli.")
		return Advance{Reply: b.String()}, nil

	case statex.StepAwaitingSlotChoice:
		idx, ok := ParseSelection(userText, len(tx.Slots))
		if !ok {
			return d.reprompt(st, tx, fmt.Sprintf("Randevu seçiminizi anlayamadım. Lütfen 1 ile %d arasında bir numara yazın.", len(tx.Slots))), nil
		}
		slot := tx.Slots[idx-1]
		customerID := d.customerID(st)
		appointmentID, err := d.services.Appointments.CreateAppointment(ctx, customerID, slot.Date, slot.Time, slot.Team, appointmentNotes)
		if err != nil {
			log.Error().Err(err).Int64("customer_id", customerID).Msg("appointment: create failed")
			return Advance{Reply: serviceDownMsg}, nil
		}

		d.sendAppointmentSMS(ctx, st, slot, appointmentID)

		st.ClearTransaction()
		return Advance{
			Reply: fmt.Sprintf(
				"Randevunuz oluşturuldu! %s %s saat %s, %s ekibimiz adresinize gelecek. Randevu numaranız: %d. Başka bir konuda yardımcı olabilir miyim?",
				slot.Date, slot.DayName, slot.Time, slot.Team, appointmentID,
			),
			Done: true,
		}, nil

	default:
		return Advance{}, fmt.Errorf("%w: step %q does not belong to appointment", statex.ErrCorruptState, tx.Step)
	}
}

// sendAppointmentSMS confirms the booking out of band. Delivery problems are
// logged and swallowed; the appointment itself already exists.
func (d *Dispatcher) sendAppointmentSMS(ctx context.Context, st *statex.SessionState, slot contractx.Slot, appointmentID int64) {
	if d.notifier == nil || st.Identity == nil || st.Identity.PhoneNumber == "" {
		return
	}
	body := truncateSMS(fmt.Sprintf(
		"Randevunuz onaylandi: %s saat %s, %s. Randevu no: %d.",
		slot.Date, slot.Time, slot.Team, appointmentID,
	))
	receipt, err := d.notifier.SendMessage(ctx, st.Identity.PhoneNumber, body)
	if err != nil {
		log.Warn().Err(err).Int64("appointment_id", appointmentID).Msg("appointment: confirmation sms failed")
		return
	}
	if !receipt.Success {
		log.Warn().Str("error", receipt.Error).Int64("appointment_id", appointmentID).Msg("appointment: confirmation sms rejected")
	}
}

package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kermits/telassist/agent/auth"
	contractx "github.com/kermits/telassist/agent/contract"
	statex "github.com/kermits/telassist/agent/state"
)

const (
	fieldNationalID = "national_id"
	fieldFirstName  = "first_name"
	fieldLastName   = "last_name"
	fieldPhone      = "phone_number"
	fieldEmail      = "email"
	fieldCity       = "city"
	fieldPlanID     = "plan_id"
	fieldPlanName   = "plan_name"
	fieldAskedID    = "asked_id"
)

// advanceRegistration walks the new-customer wizard. It is the only machine
// open to anonymous callers; completing it authenticates the session.
func (d *Dispatcher) advanceRegistration(ctx context.Context, st *statex.SessionState, tx *statex.Transaction, userText string) (Advance, error) {
	switch tx.Step {
	case statex.StepCollectingID:
		id, ok := auth.ScanNationalID(userText)
		if !ok {
			// The triggering utterance rarely carries the number; the
			// first miss is the opening question, not a failed retry.
			if tx.Field(fieldAskedID) == "" {
				tx.SetField(fieldAskedID, "1")
				return Advance{Reply: "Yeni abonelik kaydınız için TC kimlik numaranızı alabilir miyim?"}, nil
			}
			return d.reprompt(st, tx, "TC kimlik numaranızı anlayamadım. Lütfen 11 haneli TC kimlik numaranızı yazar mısınız?"), nil
		}
		exists, err := d.services.Registration.NationalIDExists(ctx, id)
		if err != nil {
			log.Warn().Err(err).Msg("registration: national id lookup failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		if exists {
			return d.abort(st, "Bu TC kimlik numarası ile zaten kayıtlı bir müşterimiz var. Mevcut hesabınızla işlem yapmak için kimlik doğrulaması yapabilirsiniz."), nil
		}
		tx.SetField(fieldNationalID, id)
		tx.MoveTo(statex.StepCollectingName)
		return Advance{Reply: "Teşekkürler. Adınızı ve soyadınızı alabilir miyim?"}, nil

	case statex.StepCollectingName:
		first, last, ok := ParseName(userText)
		if !ok {
			return d.reprompt(st, tx, "Adınızı ve soyadınızı birlikte yazar mısınız? Örneğin: Ayşe Yılmaz"), nil
		}
		tx.SetField(fieldFirstName, first)
		tx.SetField(fieldLastName, last)
		tx.MoveTo(statex.StepCollectingPhone)
		return Advance{Reply: fmt.Sprintf("Memnun oldum %s! Telefon numaranızı alabilir miyim?", first)}, nil

	case statex.StepCollectingPhone:
		phone, ok := NormalizePhone(userText)
		if !ok {
			return d.reprompt(st, tx, "Telefon numaranızı anlayamadım. Lütfen 05XX ile başlayan numaranızı yazar mısınız?"), nil
		}
		tx.SetField(fieldPhone, phone)
		tx.MoveTo(statex.StepCollectingEmail)
		return Advance{Reply: "E-posta adresinizi alabilir miyim?"}, nil

	case statex.StepCollectingEmail:
		email, ok := NormalizeEmail(userText)
		if !ok {
			return d.reprompt(st, tx, "E-posta adresinizi anlayamadım. Lütfen geçerli bir e-posta adresi yazar mısınız?"), nil
		}
		tx.SetField(fieldEmail, email)
		tx.MoveTo(statex.StepCollectingCity)
		return Advance{Reply: "Hangi şehirde oturuyorsunuz?"}, nil

	case statex.StepCollectingCity:
		city, ok := ParseCity(userText)
		if !ok {
			return d.reprompt(st, tx, "Şehir bilgisini anlayamadım. Hangi şehirde oturuyorsunuz?"), nil
		}
		tx.SetField(fieldCity, city)
		plans, err := d.services.Subscriptions.ListAvailablePlans(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("registration: available plans fetch failed")
			return Advance{Reply: serviceDownMsg}, nil
		}
		if len(plans) == 0 {
			return d.abort(st, "Şu anda yeni abonelik için uygun tarife bulunmuyor. "+fallbackLine), nil
		}
		if len(plans) > d.maxOptions {
			plans = plans[:d.maxOptions]
		}
		tx.Plans = plans
		tx.MoveTo(statex.StepSelectingPlan)
		var b strings.Builder
		b.WriteString("Harika! Size uygun tarifelerimiz şunlar:\n")
		b.WriteString(formatPlans(plans))
		b.WriteString("\nHangi tarifeyi istersiniz? Numarasını yazmanız yeterli.")
		return Advance{Reply: b.String()}, nil

	case statex.StepSelectingPlan:
		idx, ok := ParseSelection(userText, len(tx.Plans))
		if !ok {
			return d.reprompt(st, tx, fmt.Sprintf("Lütfen 1 ile %d arasında bir tarife numarası yazın.", len(tx.Plans))), nil
		}
		plan := tx.Plans[idx-1]
		tx.SetField(fieldPlanID, fmt.Sprintf("%d", plan.PlanID))
		tx.SetField(fieldPlanName, plan.Name)
		tx.MoveTo(statex.StepConfirming)
		return Advance{Reply: fmt.Sprintf(
			"Bilgilerinizi özetliyorum:\n- Ad Soyad: %s %s\n- Telefon: %s\n- E-posta: %s\n- Şehir: %s\n- Tarife: %s (%.2f TL/ay, %d GB)\nOnaylıyor musunuz? (EVET yazarsanız kaydınızı tamamlıyorum)",
			tx.Field(fieldFirstName), tx.Field(fieldLastName),
			tx.Field(fieldPhone), tx.Field(fieldEmail), tx.Field(fieldCity),
			plan.Name, plan.MonthlyFee, plan.QuotaGB,
		)}, nil

	case statex.StepConfirming:
		if !IsConfirmation(userText) {
			return d.abort(st, "Kaydınızı iptal ettim. Başka bir konuda yardımcı olabilir miyim?"), nil
		}
		return d.completeRegistration(ctx, st, tx)

	default:
		return Advance{}, fmt.Errorf("%w: step %q does not belong to registration", statex.ErrCorruptState, tx.Step)
	}
}

func registrationRequest(tx *statex.Transaction) contractx.RegistrationRequest {
	planID, _ := strconv.ParseInt(tx.Field(fieldPlanID), 10, 64)
	return contractx.RegistrationRequest{
		NationalID:    tx.Field(fieldNationalID),
		FirstName:     tx.Field(fieldFirstName),
		LastName:      tx.Field(fieldLastName),
		PhoneNumber:   tx.Field(fieldPhone),
		Email:         tx.Field(fieldEmail),
		City:          tx.Field(fieldCity),
		InitialPlanID: planID,
	}
}

func (d *Dispatcher) completeRegistration(ctx context.Context, st *statex.SessionState, tx *statex.Transaction) (Advance, error) {
	req := registrationRequest(tx)
	res, err := d.services.Registration.RegisterCustomer(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("registration: register customer failed")
		return Advance{Reply: serviceDownMsg}, nil
	}

	identity := res.Identity
	identity.CustomerID = res.CustomerID
	st.ClearTransaction()
	st.Authenticate(identity)

	planLine := ""
	if res.InitialPlan != nil {
		planLine = fmt.Sprintf(" %s tarifeniz aktif edildi.", res.InitialPlan.Name)
	}
	return Advance{
		Reply: fmt.Sprintf(
			"Tebrikler %s, aboneliğiniz oluşturuldu! Müşteri numaranız: %d.%s Başka bir konuda yardımcı olabilir miyim?",
			identity.FirstName, res.CustomerID, planLine,
		),
		Done: true,
	}, nil
}

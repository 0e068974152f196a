package contract

import "context"

// Oracle is the natural-language reasoning collaborator. Its output is
// untrusted free text; every call site parses defensively. Transport errors
// and timeouts surface as ErrOracleUnavailable.
type Oracle interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type IdentityService interface {
	Authenticate(ctx context.Context, nationalID string) (AuthResult, error)
}

type SubscriptionService interface {
	ListActivePlans(ctx context.Context, customerID int64) ([]Plan, error)
	ListAvailablePlans(ctx context.Context) ([]Plan, error)
	ChangePlan(ctx context.Context, customerID, oldPlanID, newPlanID int64) error
}

type BillingService interface {
	ListBills(ctx context.Context, customerID int64, limit int) ([]Bill, error)
	ListUnpaidBills(ctx context.Context, customerID int64) ([]Bill, error)
	Summary(ctx context.Context, customerID int64) (BillingSummary, error)
	CreateDispute(ctx context.Context, customerID, billID int64, reason string) (int64, error)
}

type AppointmentService interface {
	ActiveAppointment(ctx context.Context, customerID int64) (*Appointment, error)
	AvailableSlots(ctx context.Context, daysAhead int) ([]Slot, error)
	CreateAppointment(ctx context.Context, customerID int64, date, hour, team, notes string) (int64, error)
}

type RegistrationService interface {
	NationalIDExists(ctx context.Context, nationalID string) (bool, error)
	RegisterCustomer(ctx context.Context, req RegistrationRequest) (RegistrationResult, error)
}

// Services bundles the domain collaborators handed to the step machines.
type Services struct {
	Identity      IdentityService
	Subscriptions SubscriptionService
	Billing       BillingService
	Appointments  AppointmentService
	Registration  RegistrationService
}

type KnowledgeBase interface {
	Search(ctx context.Context, query string, topK int) ([]FAQEntry, error)
}

type Notifier interface {
	SendMessage(ctx context.Context, destination, body string) (MessageReceipt, error)
}

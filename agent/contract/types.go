package contract

// TransactionKind identifies which step machine owns a session's active
// transaction. The set is closed: wizards dispatch on it exhaustively.
type TransactionKind string

const (
	KindRegistration     TransactionKind = "registration"
	KindPlanChange       TransactionKind = "plan_change"
	KindAppointment      TransactionKind = "appointment"
	KindDispute          TransactionKind = "dispute"
	KindBillingView      TransactionKind = "billing_view"
	KindSubscriptionView TransactionKind = "subscription_view"
)

// RequiresAuth reports whether the kind needs a verified identity.
// Registration is the only transaction open to anonymous callers.
func (k TransactionKind) RequiresAuth() bool {
	return k != KindRegistration
}

func (k TransactionKind) Valid() bool {
	switch k {
	case KindRegistration, KindPlanChange, KindAppointment, KindDispute,
		KindBillingView, KindSubscriptionView:
		return true
	}
	return false
}

// RouteTarget is the router's verdict on where the turn goes next.
type RouteTarget string

const (
	RouteAuthenticate RouteTarget = "authenticate"
	RouteTransaction  RouteTarget = "transaction"
	RouteFAQ          RouteTarget = "faq"
	RouteClarify      RouteTarget = "clarify"
	RouteEnd          RouteTarget = "end"
)

type RoutingDecision struct {
	Target RouteTarget
	// Kind is set when Target is RouteTransaction.
	Kind TransactionKind
	// Question is set when Target is RouteClarify.
	Question string
	// OriginalIntent carries the parked free-text request when Target is
	// RouteAuthenticate, so the gate can resume it after verification.
	OriginalIntent string
}

// CompletionRequest is one call to the reasoning oracle.
type CompletionRequest struct {
	Prompt             string
	SystemInstructions string
	Temperature        float32
	MaxOutputTokens    int
}

type CustomerIdentity struct {
	CustomerID  int64  `json:"customer_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	City        string `json:"city"`
}

func (c CustomerIdentity) FullName() string {
	return c.FirstName + " " + c.LastName
}

type AuthResult struct {
	Exists     bool
	IsActive   bool
	CustomerID int64
	Identity   CustomerIdentity
}

type Plan struct {
	PlanID     int64   `json:"plan_id"`
	Name       string  `json:"plan_name"`
	MonthlyFee float64 `json:"monthly_fee"`
	QuotaGB    int     `json:"quota_gb"`
}

type Bill struct {
	BillID  int64   `json:"bill_id"`
	Amount  float64 `json:"amount"`
	DueDate string  `json:"due_date"`
	Status  string  `json:"status"`
}

type BillingSummary struct {
	TotalBills        int
	PaidBills         int
	UnpaidBills       int
	OutstandingAmount float64
	PaymentRate       float64
}

type Appointment struct {
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"appointment_date"`
	Hour          string `json:"appointment_hour"`
	Team          string `json:"team_name"`
	Status        string `json:"appointment_status"`
}

type Slot struct {
	Date    string `json:"date"`
	DayName string `json:"day_name"`
	Time    string `json:"time"`
	Team    string `json:"team"`
}

type RegistrationRequest struct {
	NationalID    string
	FirstName     string
	LastName      string
	PhoneNumber   string
	Email         string
	City          string
	District      string
	InitialPlanID int64
}

type RegistrationResult struct {
	CustomerID  int64
	Identity    CustomerIdentity
	InitialPlan *Plan
}

type FAQEntry struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Source   string  `json:"source"`
	Score    float32 `json:"score"`
}

type MessageReceipt struct {
	Success   bool
	MessageID string
	Error     string
}

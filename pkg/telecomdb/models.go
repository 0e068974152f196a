package telecomdb

import (
	"time"

	"github.com/uptrace/bun"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	CustomerID     int64     `bun:"customer_id,pk,autoincrement"`
	NationalID     string    `bun:"tc_kimlik_no,notnull"`
	FirstName      string    `bun:"first_name,notnull"`
	LastName       string    `bun:"last_name,notnull"`
	PhoneNumber    string    `bun:"phone_number"`
	Email          string    `bun:"email"`
	City           string    `bun:"city"`
	District       string    `bun:"district"`
	CustomerSince  time.Time `bun:"customer_since"`
	CustomerStatus string    `bun:"customer_status,default:'active'"`
}

type Plan struct {
	bun.BaseModel `bun:"table:plans,alias:p"`

	PlanID     int64   `bun:"plan_id,pk,autoincrement"`
	PlanType   string  `bun:"plan_type"`
	PlanName   string  `bun:"plan_name,notnull"`
	MonthlyFee float64 `bun:"monthly_fee"`
	QuotaGB    int     `bun:"quota_gb"`
}

type CustomerPlan struct {
	bun.BaseModel `bun:"table:customer_plans,alias:cp"`

	CustomerID int64 `bun:"customer_id,notnull"`
	PlanID     int64 `bun:"plan_id,notnull"`
	IsActive   bool  `bun:"is_active,default:true"`

	Plan *Plan `bun:"rel:belongs-to,join:plan_id=plan_id"`
}

type Bill struct {
	bun.BaseModel `bun:"table:billing,alias:b"`

	BillID     int64     `bun:"bill_id,pk,autoincrement"`
	CustomerID int64     `bun:"customer_id,notnull"`
	Amount     float64   `bun:"amount,notnull"`
	DueDate    time.Time `bun:"due_date"`
	Status     string    `bun:"status,default:'unpaid'"`
}

type BillDispute struct {
	bun.BaseModel `bun:"table:bill_disputes,alias:d"`

	DisputeID  int64     `bun:"dispute_id,pk,autoincrement"`
	CustomerID int64     `bun:"customer_id,notnull"`
	BillID     int64     `bun:"bill_id,notnull"`
	Reason     string    `bun:"reason,notnull"`
	Status     string    `bun:"status,default:'submitted'"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

type Appointment struct {
	bun.BaseModel `bun:"table:technical_appointments,alias:a"`

	AppointmentID int64     `bun:"appointment_id,pk,autoincrement"`
	CustomerID    int64     `bun:"customer_id,notnull"`
	TeamName      string    `bun:"team_name,notnull"`
	Date          time.Time `bun:"appointment_date,notnull"`
	Hour          string    `bun:"appointment_hour,notnull"`
	Status        string    `bun:"appointment_status,default:'scheduled'"`
	Notes         string    `bun:"notes"`
}

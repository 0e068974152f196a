package telecomdb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/kermits/telassist/agent/contract"
)

const billDateLayout = "2006-01-02"

// BillingStore reads bills and records disputes.
type BillingStore struct {
	db *bun.DB
}

var _ contractx.BillingService = (*BillingStore)(nil)

func NewBillingStore(db *bun.DB) *BillingStore {
	return &BillingStore{db: db}
}

func (s *BillingStore) ListBills(ctx context.Context, customerID int64, limit int) ([]contractx.Bill, error) {
	var models []Bill
	q := s.db.NewSelect().
		Model(&models).
		Where("customer_id = ?", customerID).
		Order("due_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list bills: %v", contractx.ErrDomainService, err)
	}
	return billsOf(models), nil
}

func (s *BillingStore) ListUnpaidBills(ctx context.Context, customerID int64) ([]contractx.Bill, error) {
	var models []Bill
	err := s.db.NewSelect().
		Model(&models).
		Where("customer_id = ?", customerID).
		Where("status = 'unpaid'").
		Order("due_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list unpaid bills: %v", contractx.ErrDomainService, err)
	}
	return billsOf(models), nil
}

func (s *BillingStore) Summary(ctx context.Context, customerID int64) (contractx.BillingSummary, error) {
	var row struct {
		TotalBills        int     `bun:"total_bills"`
		PaidBills         int     `bun:"paid_bills"`
		UnpaidBills       int     `bun:"unpaid_bills"`
		OutstandingAmount float64 `bun:"outstanding_amount"`
	}
	err := s.db.NewSelect().
		Model((*Bill)(nil)).
		ColumnExpr("COUNT(*) AS total_bills").
		ColumnExpr("COUNT(CASE WHEN status = 'paid' THEN 1 END) AS paid_bills").
		ColumnExpr("COUNT(CASE WHEN status = 'unpaid' THEN 1 END) AS unpaid_bills").
		ColumnExpr("COALESCE(SUM(CASE WHEN status = 'unpaid' THEN amount ELSE 0 END), 0) AS outstanding_amount").
		Where("customer_id = ?", customerID).
		Scan(ctx, &row)
	if err != nil {
		return contractx.BillingSummary{}, fmt.Errorf("%w: billing summary: %v", contractx.ErrDomainService, err)
	}

	summary := contractx.BillingSummary{
		TotalBills:        row.TotalBills,
		PaidBills:         row.PaidBills,
		UnpaidBills:       row.UnpaidBills,
		OutstandingAmount: row.OutstandingAmount,
	}
	if summary.TotalBills > 0 {
		summary.PaymentRate = float64(summary.PaidBills) / float64(summary.TotalBills)
	}
	return summary, nil
}

// CreateDispute files one objection per customer and bill; a second attempt
// on the same bill is rejected.
func (s *BillingStore) CreateDispute(ctx context.Context, customerID, billID int64, reason string) (int64, error) {
	exists, err := s.db.NewSelect().
		Model((*BillDispute)(nil)).
		Where("customer_id = ?", customerID).
		Where("bill_id = ?", billID).
		Exists(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: check existing dispute: %v", contractx.ErrDomainService, err)
	}
	if exists {
		return 0, fmt.Errorf("%w: dispute already filed for bill %d", contractx.ErrDomainService, billID)
	}

	dispute := &BillDispute{
		CustomerID: customerID,
		BillID:     billID,
		Reason:     reason,
		Status:     "submitted",
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().
		Model(dispute).
		Returning("dispute_id").
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: create dispute: %v", contractx.ErrDomainService, err)
	}
	return dispute.DisputeID, nil
}

func billsOf(models []Bill) []contractx.Bill {
	bills := make([]contractx.Bill, 0, len(models))
	for _, m := range models {
		bills = append(bills, contractx.Bill{
			BillID:  m.BillID,
			Amount:  m.Amount,
			DueDate: m.DueDate.Format(billDateLayout),
			Status:  m.Status,
		})
	}
	return bills
}

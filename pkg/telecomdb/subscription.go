package telecomdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	contractx "github.com/kermits/telassist/agent/contract"
)

// SubscriptionStore manages the customer-to-plan assignments.
type SubscriptionStore struct {
	db *bun.DB
}

var _ contractx.SubscriptionService = (*SubscriptionStore)(nil)

func NewSubscriptionStore(db *bun.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func (s *SubscriptionStore) ListActivePlans(ctx context.Context, customerID int64) ([]contractx.Plan, error) {
	var assignments []CustomerPlan
	err := s.db.NewSelect().
		Model(&assignments).
		Relation("Plan").
		Where("cp.customer_id = ?", customerID).
		Where("cp.is_active = TRUE").
		Order("plan.plan_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list active plans: %v", contractx.ErrDomainService, err)
	}

	plans := make([]contractx.Plan, 0, len(assignments))
	for _, a := range assignments {
		if a.Plan == nil {
			continue
		}
		plans = append(plans, planOf(*a.Plan))
	}
	return plans, nil
}

func (s *SubscriptionStore) ListAvailablePlans(ctx context.Context) ([]contractx.Plan, error) {
	var models []Plan
	err := s.db.NewSelect().
		Model(&models).
		Order("monthly_fee ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list available plans: %v", contractx.ErrDomainService, err)
	}

	plans := make([]contractx.Plan, 0, len(models))
	for _, m := range models {
		plans = append(plans, planOf(m))
	}
	return plans, nil
}

// ChangePlan deactivates the old assignment and activates the new one in a
// single transaction.
func (s *SubscriptionStore) ChangePlan(ctx context.Context, customerID, oldPlanID, newPlanID int64) error {
	hasOld, err := s.db.NewSelect().
		Model((*CustomerPlan)(nil)).
		Where("customer_id = ?", customerID).
		Where("plan_id = ?", oldPlanID).
		Where("is_active = TRUE").
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: verify active plan: %v", contractx.ErrDomainService, err)
	}
	if !hasOld {
		return fmt.Errorf("%w: customer %d has no active plan %d", contractx.ErrDomainService, customerID, oldPlanID)
	}

	newExists, err := s.db.NewSelect().
		Model((*Plan)(nil)).
		Where("plan_id = ?", newPlanID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: verify new plan: %v", contractx.ErrDomainService, err)
	}
	if !newExists {
		return fmt.Errorf("%w: plan %d not found", contractx.ErrDomainService, newPlanID)
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*CustomerPlan)(nil)).
			Set("is_active = FALSE").
			Where("customer_id = ?", customerID).
			Where("plan_id = ?", oldPlanID).
			Exec(ctx); err != nil {
			return err
		}

		had, err := tx.NewSelect().
			Model((*CustomerPlan)(nil)).
			Where("customer_id = ?", customerID).
			Where("plan_id = ?", newPlanID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if had {
			_, err = tx.NewUpdate().
				Model((*CustomerPlan)(nil)).
				Set("is_active = TRUE").
				Where("customer_id = ?", customerID).
				Where("plan_id = ?", newPlanID).
				Exec(ctx)
			return err
		}
		_, err = tx.NewInsert().
			Model(&CustomerPlan{CustomerID: customerID, PlanID: newPlanID, IsActive: true}).
			Exec(ctx)
		return err
	})
	if err != nil && !errors.Is(err, contractx.ErrDomainService) {
		return fmt.Errorf("%w: change plan: %v", contractx.ErrDomainService, err)
	}
	return err
}

func planOf(m Plan) contractx.Plan {
	return contractx.Plan{
		PlanID:     m.PlanID,
		Name:       m.PlanName,
		MonthlyFee: m.MonthlyFee,
		QuotaGB:    m.QuotaGB,
	}
}

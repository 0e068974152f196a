package telecomdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/kermits/telassist/agent/contract"
)

// RegistrationStore creates customer accounts.
type RegistrationStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ contractx.RegistrationService = (*RegistrationStore)(nil)

func NewRegistrationStore(db *bun.DB) *RegistrationStore {
	return &RegistrationStore{db: db, now: time.Now}
}

func (s *RegistrationStore) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*Customer)(nil)).
		Where("tc_kimlik_no = ?", nationalID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: national id lookup: %v", contractx.ErrDomainService, err)
	}
	return exists, nil
}

// RegisterCustomer creates the account and, when an initial plan was chosen,
// its first plan assignment, atomically.
func (s *RegistrationStore) RegisterCustomer(ctx context.Context, req contractx.RegistrationRequest) (contractx.RegistrationResult, error) {
	exists, err := s.NationalIDExists(ctx, req.NationalID)
	if err != nil {
		return contractx.RegistrationResult{}, err
	}
	if exists {
		return contractx.RegistrationResult{}, fmt.Errorf("%w: national id already registered", contractx.ErrDomainService)
	}

	var initialPlan *contractx.Plan
	if req.InitialPlanID > 0 {
		var planModel Plan
		err := s.db.NewSelect().
			Model(&planModel).
			Where("plan_id = ?", req.InitialPlanID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return contractx.RegistrationResult{}, fmt.Errorf("%w: plan %d not found", contractx.ErrDomainService, req.InitialPlanID)
		}
		if err != nil {
			return contractx.RegistrationResult{}, fmt.Errorf("%w: plan lookup: %v", contractx.ErrDomainService, err)
		}
		p := planOf(planModel)
		initialPlan = &p
	}

	customer := &Customer{
		NationalID:     req.NationalID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		City:           req.City,
		District:       req.District,
		CustomerSince:  s.now().UTC(),
		CustomerStatus: "active",
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(customer).
			Returning("customer_id").
			Exec(ctx); err != nil {
			return err
		}
		if req.InitialPlanID > 0 {
			_, err := tx.NewInsert().
				Model(&CustomerPlan{
					CustomerID: customer.CustomerID,
					PlanID:     req.InitialPlanID,
					IsActive:   true,
				}).
				Exec(ctx)
			return err
		}
		return nil
	})
	if err != nil {
		return contractx.RegistrationResult{}, fmt.Errorf("%w: register customer: %v", contractx.ErrDomainService, err)
	}

	return contractx.RegistrationResult{
		CustomerID:  customer.CustomerID,
		Identity:    identityOf(*customer),
		InitialPlan: initialPlan,
	}, nil
}

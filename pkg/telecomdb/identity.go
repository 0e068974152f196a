package telecomdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/kermits/telassist/agent/contract"
)

// IdentityStore resolves national identifiers against the customer table.
type IdentityStore struct {
	db *bun.DB
}

var _ contractx.IdentityService = (*IdentityStore)(nil)

func NewIdentityStore(db *bun.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

func (s *IdentityStore) Authenticate(ctx context.Context, nationalID string) (contractx.AuthResult, error) {
	var customer Customer
	err := s.db.NewSelect().
		Model(&customer).
		Where("tc_kimlik_no = ?", nationalID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.AuthResult{}, nil
	}
	if err != nil {
		return contractx.AuthResult{}, fmt.Errorf("%w: authenticate: %v", contractx.ErrDomainService, err)
	}

	return contractx.AuthResult{
		Exists:     true,
		IsActive:   strings.EqualFold(customer.CustomerStatus, "active"),
		CustomerID: customer.CustomerID,
		Identity:   identityOf(customer),
	}, nil
}

func identityOf(c Customer) contractx.CustomerIdentity {
	return contractx.CustomerIdentity{
		CustomerID:  c.CustomerID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		City:        c.City,
	}
}

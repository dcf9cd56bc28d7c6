// Package depositcode defines the single-use credit voucher. A code is
// redeemable exactly once and never by the user who generated it; once used
// the record is immutable.
package depositcode

import (
	"errors"
	"time"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/google/uuid"
)

// CodeLength is the fixed length of generated codes.
const CodeLength = 8

// DepositCode is a one-time voucher worth Amount, created by GeneratorID.
type DepositCode struct {
	ID          uuid.UUID
	Code        string
	Amount      money.Money
	GeneratorID uuid.UUID
	Used        bool
	UsedBy      uuid.UUID
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// New creates an unused code owned by the generator.
func New(code string, amount money.Money, generatorID uuid.UUID) (*DepositCode, error) {
	if len(code) != CodeLength {
		return nil, errors.New("deposit code must be 8 characters")
	}
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if generatorID == uuid.Nil {
		return nil, errors.New("generator is required")
	}
	return &DepositCode{
		ID:          uuid.New(),
		Code:        code,
		Amount:      amount,
		GeneratorID: generatorID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewFromData hydrates a DepositCode from a data store.
func NewFromData(
	id uuid.UUID,
	code string,
	amount money.Money,
	generatorID uuid.UUID,
	used bool,
	usedBy uuid.UUID,
	usedAt *time.Time,
	created time.Time,
) *DepositCode {
	return &DepositCode{
		ID:          id,
		Code:        code,
		Amount:      amount,
		GeneratorID: generatorID,
		Used:        used,
		UsedBy:      usedBy,
		UsedAt:      usedAt,
		CreatedAt:   created,
	}
}

// MarkUsed flips the code to used for the given redeemer. It fails if the
// code was already redeemed or if the redeemer generated it.
func (d *DepositCode) MarkUsed(userID uuid.UUID) error {
	if d.Used {
		return domain.ErrCodeAlreadyUsed
	}
	if userID == d.GeneratorID {
		return domain.ErrSelfRedemption
	}
	now := time.Now().UTC()
	d.Used = true
	d.UsedBy = userID
	d.UsedAt = &now
	return nil
}

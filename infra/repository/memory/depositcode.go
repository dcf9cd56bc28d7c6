package memory

import (
	"context"
	"fmt"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/google/uuid"
)

type depositCodeRepository struct {
	tx *storeTx
}

func (r *depositCodeRepository) Create(ctx context.Context, d *depositcode.DepositCode) error {
	if _, ok := r.lookupByCode(d.Code); ok {
		return fmt.Errorf("deposit code %s: %w", d.Code, domain.ErrAlreadyExists)
	}
	r.tx.codes[d.ID] = cloneCode(d)
	return nil
}

func (r *depositCodeRepository) Update(ctx context.Context, d *depositcode.DepositCode) error {
	if _, ok := r.lookup(d.ID); !ok {
		return fmt.Errorf("deposit code %s: %w", d.ID, domain.ErrNotFound)
	}
	r.tx.codes[d.ID] = cloneCode(d)
	return nil
}

func (r *depositCodeRepository) GetByCode(ctx context.Context, code string) (*depositcode.DepositCode, error) {
	d, ok := r.lookupByCode(code)
	if !ok {
		return nil, fmt.Errorf("deposit code %s: %w", code, domain.ErrNotFound)
	}
	return cloneCode(d), nil
}

// GetByCodeForUpdate is GetByCode: the store mutex held by the unit of work
// already provides exclusive access.
func (r *depositCodeRepository) GetByCodeForUpdate(ctx context.Context, code string) (*depositcode.DepositCode, error) {
	return r.GetByCode(ctx, code)
}

func (r *depositCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := r.lookupByCode(code)
	return ok, nil
}

func (r *depositCodeRepository) lookup(id uuid.UUID) (*depositcode.DepositCode, bool) {
	if d, ok := r.tx.codes[id]; ok {
		return d, true
	}
	d, ok := r.tx.store.codes[id]
	return d, ok
}

func (r *depositCodeRepository) lookupByCode(code string) (*depositcode.DepositCode, bool) {
	for _, d := range r.tx.codes {
		if d.Code == code {
			return d, true
		}
	}
	if id, ok := r.tx.store.codeByCode[code]; ok {
		return r.tx.store.codes[id], true
	}
	return nil, false
}

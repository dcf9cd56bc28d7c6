package memory

import (
	"context"
	"fmt"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/account"
	"github.com/google/uuid"
)

type accountRepository struct {
	tx *storeTx
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	if _, ok := r.lookupByNumber(a.Number); ok {
		return fmt.Errorf("account number %s: %w", a.Number, domain.ErrAlreadyExists)
	}
	if a.UserID != uuid.Nil {
		if _, ok := r.lookupByUser(a.UserID); ok {
			return fmt.Errorf("user %s already has an account: %w", a.UserID, domain.ErrAlreadyExists)
		}
	}
	r.tx.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	if _, ok := r.lookup(a.ID); !ok {
		return fmt.Errorf("account %s: %w", a.ID, domain.ErrNotFound)
	}
	r.tx.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	return cloneAccount(a), nil
}

// GetForUpdate is Get: the store mutex held by the unit of work already
// provides exclusive access.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.Get(ctx, id)
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	a, ok := r.lookupByNumber(number)
	if !ok {
		return nil, fmt.Errorf("account number %s: %w", number, domain.ErrNotFound)
	}
	return cloneAccount(a), nil
}

func (r *accountRepository) GetByNumberForUpdate(ctx context.Context, number string) (*account.Account, error) {
	return r.GetByNumber(ctx, number)
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	a, ok := r.lookupByUser(userID)
	if !ok {
		return nil, fmt.Errorf("account for user %s: %w", userID, domain.ErrNotFound)
	}
	return cloneAccount(a), nil
}

func (r *accountRepository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *accountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	_, ok := r.lookupByNumber(number)
	return ok, nil
}

func (r *accountRepository) lookup(id uuid.UUID) (*account.Account, bool) {
	if a, ok := r.tx.accounts[id]; ok {
		return a, true
	}
	a, ok := r.tx.store.accounts[id]
	return a, ok
}

func (r *accountRepository) lookupByNumber(number string) (*account.Account, bool) {
	for _, a := range r.tx.accounts {
		if a.Number == number {
			return a, true
		}
	}
	if id, ok := r.tx.store.accountByNumber[number]; ok {
		return r.tx.store.accounts[id], true
	}
	return nil, false
}

func (r *accountRepository) lookupByUser(userID uuid.UUID) (*account.Account, bool) {
	for _, a := range r.tx.accounts {
		if a.UserID == userID {
			return a, true
		}
	}
	if id, ok := r.tx.store.accountByUser[userID]; ok {
		return r.tx.store.accounts[id], true
	}
	return nil, false
}

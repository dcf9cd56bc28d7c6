// Package repository defines the persistence contracts consumed by the core.
// Implementations translate the locking requirements of the *ForUpdate
// methods into the storage engine's primitives (row-level pessimistic locks
// for SQL, a serialized critical section for the in-memory store).
package repository

import (
	"context"

	"github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/google/uuid"
)

// AccountRepository is the storage contract for accounts. The *ForUpdate
// variants acquire an exclusive lock on the account row for the remainder of
// the enclosing unit of work; every read-check-write sequence on a balance
// must go through one of them. Create surfaces domain.ErrAlreadyExists when
// the account number is taken.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	Update(ctx context.Context, a *account.Account) error
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	GetByNumberForUpdate(ctx context.Context, number string) (*account.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error)
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*account.Account, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// UserRepository is the storage contract for users. Email and CPF are unique
// keys; Create surfaces domain.ErrAlreadyExists on duplicates.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByCPF(ctx context.Context, cpf string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
}

// TransactionRepository is the storage contract for transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	Update(ctx context.Context, t *transaction.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error)
}

// DepositCodeRepository is the storage contract for deposit codes. Code is a
// unique key; GetByCodeForUpdate locks the code row so the used-flag flip and
// the credit commit together.
type DepositCodeRepository interface {
	Create(ctx context.Context, d *depositcode.DepositCode) error
	Update(ctx context.Context, d *depositcode.DepositCode) error
	GetByCode(ctx context.Context, code string) (*depositcode.DepositCode, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*depositcode.DepositCode, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

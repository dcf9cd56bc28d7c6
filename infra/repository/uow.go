package repository

import (
	"context"
	"errors"

	"github.com/bankbr/baas/pkg/repository"
	"gorm.io/gorm"
)

// ErrNoTransaction is returned when a repository accessor is used outside a
// Do boundary.
var ErrNoTransaction = errors.New("repository access outside a unit of work")

// UoW implements repository.UnitOfWork on a gorm database. Repositories
// obtained inside Do share the transaction session, so row locks taken by
// *ForUpdate reads are held until the transaction commits or rolls back.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a unit of work factory for the given database.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside one database transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// AccountRepository returns the account repository bound to the current
// transaction.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewAccountRepository(u.tx), nil
}

// UserRepository returns the user repository bound to the current
// transaction.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewUserRepository(u.tx), nil
}

// TransactionRepository returns the transaction repository bound to the
// current transaction.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewTransactionRepository(u.tx), nil
}

// DepositCodeRepository returns the deposit code repository bound to the
// current transaction.
func (u *UoW) DepositCodeRepository() (repository.DepositCodeRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return NewDepositCodeRepository(u.tx), nil
}

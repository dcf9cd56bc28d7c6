package repository

import "context"

// UnitOfWork is the transaction boundary for the core's operations.
//
// Do runs fn inside one storage transaction: if fn returns an error the
// transaction rolls back, otherwise it commits. Repositories obtained from
// the UnitOfWork passed to fn are bound to that transaction, so every
// repository call inside fn shares one session. That shared session is what
// makes the multi-account transfer atomic and what scopes the row locks taken
// by the *ForUpdate reads.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	UserRepository() (UserRepository, error)
	TransactionRepository() (TransactionRepository, error)
	DepositCodeRepository() (DepositCodeRepository, error)
}

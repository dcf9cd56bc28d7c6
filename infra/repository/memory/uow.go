package memory

import (
	"context"
	"errors"

	"github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/bankbr/baas/pkg/repository"
	"github.com/google/uuid"
)

// ErrNoTransaction is returned when a repository accessor is used outside a
// Do boundary.
var ErrNoTransaction = errors.New("repository access outside a unit of work")

// UnitOfWork implements repository.UnitOfWork on a Store. Do holds the store
// mutex for the whole critical section and stages writes in a per-call
// writeset that is applied only when fn succeeds.
type UnitOfWork struct {
	store *Store
	tx    *storeTx
}

// NewUnitOfWork creates a unit of work factory for the store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Do runs fn in a serialized critical section with rollback on error.
func (u *UnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		// Already inside a transaction; reuse it.
		return fn(u)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	tx := newStoreTx(u.store)
	if err := fn(&UnitOfWork{store: u.store, tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// AccountRepository returns the account repository bound to the current
// transaction.
func (u *UnitOfWork) AccountRepository() (repository.AccountRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return &accountRepository{tx: u.tx}, nil
}

// UserRepository returns the user repository bound to the current
// transaction.
func (u *UnitOfWork) UserRepository() (repository.UserRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return &userRepository{tx: u.tx}, nil
}

// TransactionRepository returns the transaction repository bound to the
// current transaction.
func (u *UnitOfWork) TransactionRepository() (repository.TransactionRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return &transactionRepository{tx: u.tx}, nil
}

// DepositCodeRepository returns the deposit code repository bound to the
// current transaction.
func (u *UnitOfWork) DepositCodeRepository() (repository.DepositCodeRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return &depositCodeRepository{tx: u.tx}, nil
}

// storeTx is the staged writeset of one unit of work. Reads see staged
// writes first, then the committed store.
type storeTx struct {
	store        *Store
	accounts     map[uuid.UUID]*account.Account
	users        map[uuid.UUID]*user.User
	transactions map[uuid.UUID]*transaction.Transaction
	codes        map[uuid.UUID]*depositcode.DepositCode
}

func newStoreTx(store *Store) *storeTx {
	return &storeTx{
		store:        store,
		accounts:     make(map[uuid.UUID]*account.Account),
		users:        make(map[uuid.UUID]*user.User),
		transactions: make(map[uuid.UUID]*transaction.Transaction),
		codes:        make(map[uuid.UUID]*depositcode.DepositCode),
	}
}

// commit applies the writeset to the store and refreshes the unique indexes.
// Uniqueness was already validated against store plus writeset at staging
// time, while the store mutex was held.
func (tx *storeTx) commit() {
	for id, a := range tx.accounts {
		tx.store.accounts[id] = a
		tx.store.accountByNumber[a.Number] = id
		if a.UserID != uuid.Nil {
			tx.store.accountByUser[a.UserID] = id
		}
	}
	for id, u := range tx.users {
		tx.store.users[id] = u
		tx.store.userByEmail[u.Email] = id
		tx.store.userByCPF[u.CPF] = id
	}
	for id, t := range tx.transactions {
		tx.store.transactions[id] = t
	}
	for id, d := range tx.codes {
		tx.store.codes[id] = d
		tx.store.codeByCode[d.Code] = id
	}
}

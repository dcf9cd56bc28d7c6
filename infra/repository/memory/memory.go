// Package memory implements the core's storage contracts on in-process maps.
// A single mutex serializes units of work, which is the in-memory
// translation of the row-lock discipline: every read-check-write sequence
// runs in its own critical section. Writes are staged per unit of work and
// applied only on commit, so a failed operation rolls back completely.
//
// The store backs the service and concurrency test suites and the CLI's
// ephemeral mode.
package memory

import (
	"sync"

	"github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/google/uuid"
)

// Store is the shared in-memory database.
type Store struct {
	mu sync.Mutex

	accounts        map[uuid.UUID]*account.Account
	accountByNumber map[string]uuid.UUID
	accountByUser   map[uuid.UUID]uuid.UUID

	users       map[uuid.UUID]*user.User
	userByEmail map[string]uuid.UUID
	userByCPF   map[string]uuid.UUID

	transactions map[uuid.UUID]*transaction.Transaction

	codes      map[uuid.UUID]*depositcode.DepositCode
	codeByCode map[string]uuid.UUID
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:        make(map[uuid.UUID]*account.Account),
		accountByNumber: make(map[string]uuid.UUID),
		accountByUser:   make(map[uuid.UUID]uuid.UUID),
		users:           make(map[uuid.UUID]*user.User),
		userByEmail:     make(map[string]uuid.UUID),
		userByCPF:       make(map[string]uuid.UUID),
		transactions:    make(map[uuid.UUID]*transaction.Transaction),
		codes:           make(map[uuid.UUID]*depositcode.DepositCode),
		codeByCode:      make(map[string]uuid.UUID),
	}
}

func cloneAccount(a *account.Account) *account.Account {
	cp := *a
	return &cp
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

func cloneTransaction(t *transaction.Transaction) *transaction.Transaction {
	cp := *t
	return &cp
}

func cloneCode(d *depositcode.DepositCode) *depositcode.DepositCode {
	cp := *d
	if d.UsedAt != nil {
		at := *d.UsedAt
		cp.UsedAt = &at
	}
	return &cp
}

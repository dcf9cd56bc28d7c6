// Package account defines the balance-holding aggregate. All balance
// mutations go through invariant-checked methods: the balance can never end
// up negative and every mutation is all-or-nothing relative to its own check.
package account

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/google/uuid"
)

// DefaultAgency is the single agency used for new bank accounts.
const DefaultAgency = "0001"

// OpeningBalancePolicy decides the starting balance of a freshly created
// account.
type OpeningBalancePolicy string

const (
	// PolicyBank opens accounts with a zero balance.
	PolicyBank OpeningBalancePolicy = "bank"
	// PolicyCard opens card-style accounts with a fixed bonus balance.
	PolicyCard OpeningBalancePolicy = "card"
)

// cardBonus is the legacy card opening bonus.
var cardBonus = money.MustParse("500.00")

// OpeningBalance returns the starting balance for the policy.
func (p OpeningBalancePolicy) OpeningBalance() money.Money {
	if p == PolicyCard {
		return cardBonus
	}
	return money.Zero
}

// Valid reports whether p is a known policy.
func (p OpeningBalancePolicy) Valid() bool {
	return p == PolicyBank || p == PolicyCard
}

// Account is the aggregate holding identity, credential and balance.
//
// Invariants:
//   - Number is immutable and globally unique.
//   - Balance is never negative after any committed mutation.
//   - UpdatedAt moves forward on every balance mutation.
//
// UserID is a non-owning foreign key to the owning user; it is uuid.Nil for
// legacy card accounts that have no user.
type Account struct {
	ID        uuid.UUID
	Number    string
	Agency    string
	UserID    uuid.UUID
	Password  string
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder constructs Account instances. New accounts get a fresh UUID and
// their opening balance from the policy; hydration from a data store sets
// every field explicitly.
type Builder struct {
	id        uuid.UUID
	number    string
	agency    string
	userID    uuid.UUID
	password  string
	balance   money.Money
	policy    OpeningBalancePolicy
	hydrated  bool
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Builder with a fresh UUID and the bank opening policy.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		agency:    DefaultAgency,
		policy:    PolicyBank,
		createdAt: time.Now().UTC(),
	}
}

// WithID sets the account ID (hydration only).
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithNumber sets the unique external account number. Mandatory.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithAgency overrides the default agency.
func (b *Builder) WithAgency(agency string) *Builder {
	b.agency = agency
	return b
}

// WithUserID links the account to its owning user.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithPassword sets the account credential. Mandatory.
func (b *Builder) WithPassword(password string) *Builder {
	b.password = password
	return b
}

// WithOpeningPolicy selects the starting balance policy for a new account.
func (b *Builder) WithOpeningPolicy(p OpeningBalancePolicy) *Builder {
	b.policy = p
	return b
}

// WithBalance sets an explicit balance, bypassing the opening policy.
// Hydration and test setup only.
func (b *Builder) WithBalance(balance money.Money) *Builder {
	b.balance = balance
	b.hydrated = true
	return b
}

// WithCreatedAt sets the creation timestamp (hydration only).
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp (hydration only).
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.number == "" {
		return nil, errors.New("account number is required")
	}
	if b.password == "" {
		return nil, errors.New("account password is required")
	}
	if !b.policy.Valid() {
		return nil, errors.New("unknown opening balance policy")
	}
	balance := b.balance
	if !b.hydrated {
		balance = b.policy.OpeningBalance()
	}
	if balance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	return &Account{
		ID:        b.id,
		Number:    b.number,
		Agency:    b.agency,
		UserID:    b.userID,
		Password:  b.password,
		Balance:   balance,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// IncreaseBalance credits the account. The amount must be strictly positive.
func (a *Account) IncreaseBalance(amount money.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// DecreaseBalance debits the account. The amount must be strictly positive
// and covered by the current balance; otherwise the balance is left
// untouched.
func (a *Account) DecreaseBalance(amount money.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !a.HasSufficientFunds(amount) {
		return domain.ErrInsufficientFunds
	}
	newBalance, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	a.Balance = newBalance
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// VerifyPassword compares the candidate against the stored credential in
// constant time.
func (a *Account) VerifyPassword(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(a.Password), []byte(candidate)) == 1
}

// HasSufficientFunds reports whether the balance covers the amount.
func (a *Account) HasSufficientFunds(amount money.Money) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// ChangePassword replaces the credential after verifying the current one.
func (a *Account) ChangePassword(current, updated string) error {
	if !a.VerifyPassword(current) {
		return domain.ErrInvalidCredential
	}
	if updated == "" {
		return errors.New("account password is required")
	}
	a.Password = updated
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Owned reports whether the account is linked to a user.
func (a *Account) Owned() bool {
	return a.UserID != uuid.Nil
}

// Package repository implements the core's storage contracts on gorm with
// postgres. Row-level pessimistic locks (SELECT ... FOR UPDATE) back the
// *ForUpdate reads; unique indexes back the uniqueness invariants.
package repository

import (
	"strings"
	"time"

	"github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/google/uuid"
)

// Account is the accounts table row. Balance is stored in centavos.
type Account struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number    string     `gorm:"uniqueIndex;not null"`
	Agency    string     `gorm:"not null;default:'0001'"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Password  string     `gorm:"not null"`
	Balance   int64      `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

// User is the users table row. Roles are stored comma separated.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	CPF          string    `gorm:"uniqueIndex;not null;column:cpf"`
	PasswordHash string
	Roles        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string { return "users" }

// Transaction is the transactions table row. Transfer rows set sender and
// receiver; debit rows set account_id.
type Transaction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SenderID   *uuid.UUID `gorm:"type:uuid;index"`
	ReceiverID *uuid.UUID `gorm:"type:uuid;index"`
	AccountID  *uuid.UUID `gorm:"type:uuid;index"`
	Amount     int64      `gorm:"not null"`
	Status     string     `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string { return "transactions" }

// DepositCode is the deposit_codes table row.
type DepositCode struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Amount      int64     `gorm:"not null"`
	GeneratorID uuid.UUID `gorm:"type:uuid;not null"`
	Used        bool      `gorm:"not null;default:false"`
	UsedBy      *uuid.UUID
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// TableName specifies the table name for the DepositCode model.
func (DepositCode) TableName() string { return "deposit_codes" }

func accountToModel(a *account.Account) Account {
	m := Account{
		ID:        a.ID,
		Number:    a.Number,
		Agency:    a.Agency,
		Password:  a.Password,
		Balance:   a.Balance.Cents(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.UserID != uuid.Nil {
		userID := a.UserID
		m.UserID = &userID
	}
	return m
}

func accountToDomain(m *Account) *account.Account {
	userID := uuid.Nil
	if m.UserID != nil {
		userID = *m.UserID
	}
	a, _ := account.New().
		WithID(m.ID).
		WithNumber(m.Number).
		WithAgency(m.Agency).
		WithUserID(userID).
		WithPassword(m.Password).
		WithBalance(money.FromCents(m.Balance)).
		WithCreatedAt(m.CreatedAt).
		WithUpdatedAt(m.UpdatedAt).
		Build()
	return a
}

func userToModel(u *user.User) User {
	return User{
		ID:           u.ID,
		Email:        u.Email,
		CPF:          u.CPF,
		PasswordHash: u.PasswordHash,
		Roles:        strings.Join(u.Roles, ","),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userToDomain(m *User) *user.User {
	var roles []string
	if m.Roles != "" {
		roles = strings.Split(m.Roles, ",")
	}
	return user.NewFromData(m.ID, m.Email, m.CPF, m.PasswordHash, roles, m.CreatedAt, m.UpdatedAt)
}

func transactionToModel(t *transaction.Transaction) Transaction {
	m := Transaction{
		ID:        t.ID,
		Amount:    t.Amount.Cents(),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.SenderID != uuid.Nil {
		id := t.SenderID
		m.SenderID = &id
	}
	if t.ReceiverID != uuid.Nil {
		id := t.ReceiverID
		m.ReceiverID = &id
	}
	if t.AccountID != uuid.Nil {
		id := t.AccountID
		m.AccountID = &id
	}
	return m
}

func transactionToDomain(m *Transaction) *transaction.Transaction {
	deref := func(p *uuid.UUID) uuid.UUID {
		if p == nil {
			return uuid.Nil
		}
		return *p
	}
	return transaction.NewFromData(
		m.ID,
		deref(m.SenderID),
		deref(m.ReceiverID),
		deref(m.AccountID),
		money.FromCents(m.Amount),
		transaction.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func depositCodeToModel(d *depositcode.DepositCode) DepositCode {
	m := DepositCode{
		ID:          d.ID,
		Code:        d.Code,
		Amount:      d.Amount.Cents(),
		GeneratorID: d.GeneratorID,
		Used:        d.Used,
		UsedAt:      d.UsedAt,
		CreatedAt:   d.CreatedAt,
	}
	if d.UsedBy != uuid.Nil {
		id := d.UsedBy
		m.UsedBy = &id
	}
	return m
}

func depositCodeToDomain(m *DepositCode) *depositcode.DepositCode {
	usedBy := uuid.Nil
	if m.UsedBy != nil {
		usedBy = *m.UsedBy
	}
	return depositcode.NewFromData(
		m.ID,
		m.Code,
		money.FromCents(m.Amount),
		m.GeneratorID,
		m.Used,
		usedBy,
		m.UsedAt,
		m.CreatedAt,
	)
}

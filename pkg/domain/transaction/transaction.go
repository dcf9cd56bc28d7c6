// Package transaction defines the audit record produced by money movement.
// Two forms exist: a single-account debit record written by the authorization
// engine, and a peer-to-peer transfer record linking sender and receiver
// users. Status moves through explicit transitions; terminal states are
// immutable.
package transaction

import (
	"errors"
	"time"

	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a transaction record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// ErrAlreadyFinalized is returned when a terminal transaction is transitioned
// again.
var ErrAlreadyFinalized = errors.New("transaction already finalized")

// Transaction is a persisted movement record. For the transfer form SenderID
// and ReceiverID are set; for the debit form only AccountID is. The credential
// used to authorize a debit is never stored here.
type Transaction struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	AccountID  uuid.UUID
	Amount     money.Money
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTransfer opens a pending peer-to-peer transfer record.
func NewTransfer(senderID, receiverID uuid.UUID, amount money.Money) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewDebit opens a pending single-account debit record.
func NewDebit(accountID uuid.UUID, amount money.Money) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFromData hydrates a Transaction from a data store.
func NewFromData(
	id, senderID, receiverID, accountID uuid.UUID,
	amount money.Money,
	status Status,
	created, updated time.Time,
) *Transaction {
	return &Transaction{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		AccountID:  accountID,
		Amount:     amount,
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}

// MarkSuccess transitions a pending record to SUCCESS.
func (t *Transaction) MarkSuccess() error {
	return t.transition(StatusSuccess)
}

// MarkFailed transitions a pending record to FAILED. Failed records are still
// persisted: the audit trail keeps failures.
func (t *Transaction) MarkFailed() error {
	return t.transition(StatusFailed)
}

// MarkCancelled transitions a pending record to CANCELLED.
func (t *Transaction) MarkCancelled() error {
	return t.transition(StatusCancelled)
}

// IsTerminal reports whether the record reached a final status.
func (t *Transaction) IsTerminal() bool {
	return t.Status != StatusPending
}

func (t *Transaction) transition(to Status) error {
	if t.IsTerminal() {
		return ErrAlreadyFinalized
	}
	t.Status = to
	t.UpdatedAt = time.Now().UTC()
	return nil
}

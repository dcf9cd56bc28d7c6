package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/google/uuid"
)

type transactionRepository struct {
	tx *storeTx
}

func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	if _, ok := r.lookup(t.ID); ok {
		return fmt.Errorf("transaction %s: %w", t.ID, domain.ErrAlreadyExists)
	}
	r.tx.transactions[t.ID] = cloneTransaction(t)
	return nil
}

func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	if _, ok := r.lookup(t.ID); !ok {
		return fmt.Errorf("transaction %s: %w", t.ID, domain.ErrNotFound)
	}
	r.tx.transactions[t.ID] = cloneTransaction(t)
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return cloneTransaction(t), nil
}

// ListByUser returns the transactions a user participated in, newest first.
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	seen := make(map[uuid.UUID]bool)
	var out []*transaction.Transaction
	collect := func(t *transaction.Transaction) {
		if seen[t.ID] {
			return
		}
		if !involves(t, userID) {
			return
		}
		seen[t.ID] = true
		out = append(out, cloneTransaction(t))
	}
	for _, t := range r.tx.transactions {
		collect(t)
	}
	for _, t := range r.tx.store.transactions {
		collect(t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *transactionRepository) lookup(id uuid.UUID) (*transaction.Transaction, bool) {
	if t, ok := r.tx.transactions[id]; ok {
		return t, true
	}
	t, ok := r.tx.store.transactions[id]
	return t, ok
}

func involves(t *transaction.Transaction, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	return t.SenderID == userID || t.ReceiverID == userID
}

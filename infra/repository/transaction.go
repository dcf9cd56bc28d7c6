package repository

import (
	"context"

	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to the
// given session.
func NewTransactionRepository(db *gorm.DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	m := transactionToModel(t)
	return mapGormError(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	m := transactionToModel(t)
	return mapGormError(
		r.db.WithContext(ctx).
			Model(&Transaction{}).
			Where("id = ?", t.ID).
			Updates(map[string]any{
				"status":     m.Status,
				"updated_at": m.UpdatedAt,
			}).Error,
	)
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapGormError(err)
	}
	return transactionToDomain(&m), nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	var models []Transaction
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, mapGormError(err)
	}
	result := make([]*transaction.Transaction, 0, len(models))
	for i := range models {
		result = append(result, transactionToDomain(&models[i]))
	}
	return result, nil
}

package repository

import (
	"context"

	"github.com/bankbr/baas/pkg/domain/depositcode"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type depositCodeRepository struct {
	db *gorm.DB
}

// NewDepositCodeRepository creates a deposit code repository bound to the
// given session.
func NewDepositCodeRepository(db *gorm.DB) *depositCodeRepository {
	return &depositCodeRepository{db: db}
}

func (r *depositCodeRepository) Create(ctx context.Context, d *depositcode.DepositCode) error {
	m := depositCodeToModel(d)
	return mapGormError(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *depositCodeRepository) Update(ctx context.Context, d *depositcode.DepositCode) error {
	m := depositCodeToModel(d)
	return mapGormError(
		r.db.WithContext(ctx).
			Model(&DepositCode{}).
			Where("id = ?", d.ID).
			Updates(map[string]any{
				"used":    m.Used,
				"used_by": m.UsedBy,
				"used_at": m.UsedAt,
			}).Error,
	)
}

func (r *depositCodeRepository) GetByCode(ctx context.Context, code string) (*depositcode.DepositCode, error) {
	return r.first(ctx, false, code)
}

func (r *depositCodeRepository) GetByCodeForUpdate(ctx context.Context, code string) (*depositcode.DepositCode, error) {
	return r.first(ctx, true, code)
}

func (r *depositCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&DepositCode{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, mapGormError(err)
}

func (r *depositCodeRepository) first(ctx context.Context, forUpdate bool, code string) (*depositcode.DepositCode, error) {
	tx := r.db.WithContext(ctx)
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m DepositCode
	if err := tx.Where("code = ?", code).First(&m).Error; err != nil {
		return nil, mapGormError(err)
	}
	return depositCodeToDomain(&m), nil
}

package repository

import (
	"context"
	"errors"

	"github.com/bankbr/baas/pkg/domain/account"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/google/uuid"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to the given
// session.
func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	return mapGormError(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	return mapGormError(
		r.db.WithContext(ctx).
			Model(&Account{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"balance":    m.Balance,
				"password":   m.Password,
				"updated_at": m.UpdatedAt,
			}).Error,
	)
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(ctx, false, "id = ?", id)
}

func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(ctx, true, "id = ?", id)
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	return r.first(ctx, false, "number = ?", number)
}

func (r *accountRepository) GetByNumberForUpdate(ctx context.Context, number string) (*account.Account, error) {
	return r.first(ctx, true, "number = ?", number)
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return r.first(ctx, false, "user_id = ?", userID)
}

func (r *accountRepository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return r.first(ctx, true, "user_id = ?", userID)
}

func (r *accountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("number = ?", number).
		Count(&count).Error
	return count > 0, mapGormError(err)
}

func (r *accountRepository) first(
	ctx context.Context,
	forUpdate bool,
	query string,
	arg any,
) (*account.Account, error) {
	tx := r.db.WithContext(ctx)
	if forUpdate {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m Account
	if err := tx.Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapGormError(err)
		}
		return nil, err
	}
	return accountToDomain(&m), nil
}

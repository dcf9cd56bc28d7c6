package repository

import (
	"context"

	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to the given session.
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := userToModel(u)
	return mapGormError(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	m := userToModel(u)
	return mapGormError(r.db.WithContext(ctx).Save(&m).Error)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByCPF(ctx context.Context, cpf string) (*user.User, error) {
	return r.first(ctx, "cpf = ?", cpf)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	return r.exists(ctx, "cpf = ?", cpf)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		return nil, mapGormError(err)
	}
	return userToDomain(&m), nil
}

func (r *userRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where(query, arg).Count(&count).Error
	return count > 0, mapGormError(err)
}

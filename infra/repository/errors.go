package repository

import (
	"errors"

	"github.com/bankbr/baas/pkg/domain"
	"gorm.io/gorm"
)

// mapGormError converts gorm errors to domain errors so infrastructure
// details stay out of the core.
func mapGormError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	}
	return err
}

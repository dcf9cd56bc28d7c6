package repository

import (
	"errors"
	"testing"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormError(t *testing.T) {
	assert.NoError(t, mapGormError(nil))
	assert.ErrorIs(t, mapGormError(gorm.ErrDuplicatedKey), domain.ErrAlreadyExists)
	assert.ErrorIs(t, mapGormError(gorm.ErrRecordNotFound), domain.ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapGormError(other))
}

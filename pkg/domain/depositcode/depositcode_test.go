package depositcode_test

import (
	"testing"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	generator := uuid.New()
	d, err := depositcode.New("Ab3xYz09", money.MustParse("50.00"), generator)
	require.NoError(t, err)

	assert.Equal(t, "Ab3xYz09", d.Code)
	assert.Equal(t, generator, d.GeneratorID)
	assert.False(t, d.Used)
	assert.Nil(t, d.UsedAt)
}

func TestNewValidation(t *testing.T) {
	generator := uuid.New()

	_, err := depositcode.New("short", money.MustParse("50.00"), generator)
	assert.Error(t, err)

	_, err = depositcode.New("Ab3xYz09", money.Zero, generator)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = depositcode.New("Ab3xYz09", money.MustParse("-1"), generator)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = depositcode.New("Ab3xYz09", money.MustParse("50.00"), uuid.Nil)
	assert.Error(t, err)
}

func TestMarkUsed(t *testing.T) {
	d, err := depositcode.New("Ab3xYz09", money.MustParse("50.00"), uuid.New())
	require.NoError(t, err)

	redeemer := uuid.New()
	require.NoError(t, d.MarkUsed(redeemer))

	assert.True(t, d.Used)
	assert.Equal(t, redeemer, d.UsedBy)
	require.NotNil(t, d.UsedAt)
}

func TestMarkUsedTwice(t *testing.T) {
	d, err := depositcode.New("Ab3xYz09", money.MustParse("50.00"), uuid.New())
	require.NoError(t, err)
	require.NoError(t, d.MarkUsed(uuid.New()))

	err = d.MarkUsed(uuid.New())
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyUsed)
}

func TestMarkUsedByGenerator(t *testing.T) {
	generator := uuid.New()
	d, err := depositcode.New("Ab3xYz09", money.MustParse("50.00"), generator)
	require.NoError(t, err)

	err = d.MarkUsed(generator)
	assert.ErrorIs(t, err, domain.ErrSelfRedemption)
	assert.False(t, d.Used)
}

package utils_test

import (
	"testing"

	"github.com/bankbr/baas/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := utils.HashPassword("s3cr3t-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, utils.CheckPasswordHash("s3cr3t-pass", hash))
	assert.False(t, utils.CheckPasswordHash("wrong", hash))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, utils.IsEmail("maria@example.com"))
	assert.False(t, utils.IsEmail("not-an-email"))
	assert.False(t, utils.IsEmail(""))
}

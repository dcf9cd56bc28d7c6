// Package user defines the identity holder. A user owns at most one account,
// linked through the account's UserID foreign key.
package user

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// RoleUser is the default role assigned at registration.
const RoleUser = "USER"

// User is an identity with unique email and CPF. PasswordHash is a bcrypt
// hash produced at the registration boundary; the core never sees the plain
// password again after hashing.
type User struct {
	ID           uuid.UUID
	Email        string
	CPF          string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates a User with a fresh UUID and the default role.
func New(email, cpf, passwordHash string) (*User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if cpf == "" {
		return nil, errors.New("cpf cannot be empty")
	}
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		CPF:          cpf,
		PasswordHash: passwordHash,
		Roles:        []string{RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewFromData hydrates a User from a data store.
func NewFromData(
	id uuid.UUID,
	email, cpf, passwordHash string,
	roles []string,
	created, updated time.Time,
) *User {
	return &User{
		ID:           id,
		Email:        email,
		CPF:          cpf,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

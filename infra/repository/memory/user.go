package memory

import (
	"context"
	"fmt"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/google/uuid"
)

type userRepository struct {
	tx *storeTx
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	if _, ok := r.lookupByEmail(u.Email); ok {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrAlreadyExists)
	}
	if _, ok := r.lookupByCPF(u.CPF); ok {
		return fmt.Errorf("cpf: %w", domain.ErrAlreadyExists)
	}
	r.tx.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	if _, ok := r.lookup(u.ID); !ok {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	r.tx.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := r.lookupByEmail(email)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByCPF(ctx context.Context, cpf string) (*user.User, error) {
	u, ok := r.lookupByCPF(cpf)
	if !ok {
		return nil, fmt.Errorf("user by cpf: %w", domain.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := r.lookupByEmail(email)
	return ok, nil
}

func (r *userRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	_, ok := r.lookupByCPF(cpf)
	return ok, nil
}

func (r *userRepository) lookup(id uuid.UUID) (*user.User, bool) {
	if u, ok := r.tx.users[id]; ok {
		return u, true
	}
	u, ok := r.tx.store.users[id]
	return u, ok
}

func (r *userRepository) lookupByEmail(email string) (*user.User, bool) {
	for _, u := range r.tx.users {
		if u.Email == email {
			return u, true
		}
	}
	if id, ok := r.tx.store.userByEmail[email]; ok {
		return r.tx.store.users[id], true
	}
	return nil, false
}

func (r *userRepository) lookupByCPF(cpf string) (*user.User, bool) {
	for _, u := range r.tx.users {
		if u.CPF == cpf {
			return u, true
		}
	}
	if id, ok := r.tx.store.userByCPF[cpf]; ok {
		return r.tx.store.users[id], true
	}
	return nil, false
}

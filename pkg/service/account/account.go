// Package account provides account opening and maintenance. Opening creates
// the user and the account in one unit of work, mirroring the bank onboarding
// flow; CreateCard covers the legacy card variant with an explicit number and
// a bonus opening balance.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/bankbr/baas/pkg/domain"
	accountdomain "github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/bankbr/baas/pkg/repository"
)

// numberAttempts bounds the unique-number retry loop so a pathological store
// cannot spin forever.
const numberAttempts = 10

// Service opens and maintains accounts.
type Service struct {
	uow    repository.UnitOfWork
	policy accountdomain.OpeningBalancePolicy
	logger *slog.Logger
}

// New creates an account Service using the given opening balance policy for
// bank accounts.
func New(
	uow repository.UnitOfWork,
	policy accountdomain.OpeningBalancePolicy,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, policy: policy, logger: logger}
}

// Open creates a user and their account in one transaction. Email and CPF
// must be unique; the generated 8-digit account number is re-checked for
// uniqueness inside the same transaction that creates it, so two concurrent
// openings can never commit the same number.
func (s *Service) Open(
	ctx context.Context,
	email, cpf, password string,
) (a *accountdomain.Account, u *user.User, err error) {
	log := s.logger.With("context", "Open", "email", email)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		taken, err := users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email already in use: %w", domain.ErrAlreadyExists)
		}
		taken, err = users.ExistsByCPF(ctx, cpf)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("cpf already in use: %w", domain.ErrAlreadyExists)
		}
		u, err = user.New(email, cpf, "")
		if err != nil {
			return err
		}
		if err = users.Create(ctx, u); err != nil {
			return err
		}
		a, err = s.createWithFreshNumber(ctx, accounts, u, password)
		return err
	})
	if err != nil {
		a, u = nil, nil
		log.Error("account opening failed", "error", err)
		return
	}
	log.Info("account opened", "accountID", a.ID, "number", a.Number, "userID", u.ID)
	return
}

// CreateCard creates a card-style account with a caller-supplied number, no
// owning user and the card bonus opening balance. The number must be unused.
func (s *Service) CreateCard(
	ctx context.Context,
	number, password string,
) (a *accountdomain.Account, err error) {
	log := s.logger.With("context", "CreateCard", "number", number)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		taken, err := accounts.ExistsByNumber(ctx, number)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("card %s: %w", number, domain.ErrAlreadyExists)
		}
		a, err = accountdomain.New().
			WithNumber(number).
			WithPassword(password).
			WithOpeningPolicy(accountdomain.PolicyCard).
			Build()
		if err != nil {
			return err
		}
		return accounts.Create(ctx, a)
	})
	if err != nil {
		a = nil
		log.Error("card creation failed", "error", err)
		return
	}
	log.Info("card created", "accountID", a.ID)
	return
}

// ChangePassword rotates an account credential after verifying the current
// one. The account row is locked so the check and the write are one unit.
func (s *Service) ChangePassword(ctx context.Context, email, current, updated string) error {
	log := s.logger.With("context", "ChangePassword", "email", email)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		a, err := s.accountForUser(ctx, uow, email, true)
		if err != nil {
			return err
		}
		if err = a.ChangePassword(current, updated); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return accounts.Update(ctx, a)
	})
	if err != nil {
		log.Error("password change failed", "error", err)
		return err
	}
	log.Info("password changed")
	return nil
}

// Balance returns the current balance of the account with the given number.
func (s *Service) Balance(ctx context.Context, number string) (bal money.Money, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		bal = a.Balance
		return nil
	})
	return
}

func (s *Service) createWithFreshNumber(
	ctx context.Context,
	accounts repository.AccountRepository,
	owner *user.User,
	password string,
) (*accountdomain.Account, error) {
	for i := 0; i < numberAttempts; i++ {
		number := generateNumber()
		taken, err := accounts.ExistsByNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		a, err := accountdomain.New().
			WithNumber(number).
			WithUserID(owner.ID).
			WithPassword(password).
			WithOpeningPolicy(s.policy).
			Build()
		if err != nil {
			return nil, err
		}
		err = accounts.Create(ctx, a)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the race for this number; draw again.
			continue
		}
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, errors.New("could not allocate a unique account number")
}

func (s *Service) accountForUser(
	ctx context.Context,
	uow repository.UnitOfWork,
	email string,
	forUpdate bool,
) (*accountdomain.Account, error) {
	users, err := uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	var a *accountdomain.Account
	if forUpdate {
		a, err = accounts.GetByUserIDForUpdate(ctx, u.ID)
	} else {
		a, err = accounts.GetByUserID(ctx, u.ID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoAccount
	}
	return a, err
}

// generateNumber draws a random 8-digit account number.
func generateNumber() string {
	return fmt.Sprintf("%08d", 10000000+rand.Intn(90000000))
}

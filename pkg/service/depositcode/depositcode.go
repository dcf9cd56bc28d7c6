// Package depositcode issues and redeems one-time credit vouchers. Redeeming
// flips the used flag and credits the redeemer's account atomically: both
// rows stay locked for the duration of the unit of work.
package depositcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/bankbr/baas/pkg/domain"
	accountdomain "github.com/bankbr/baas/pkg/domain/account"
	codedomain "github.com/bankbr/baas/pkg/domain/depositcode"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/metrics"
	"github.com/bankbr/baas/pkg/repository"
	"github.com/google/uuid"
)

const codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// generationAttempts bounds the collision retry loop.
const generationAttempts = 10

// Service issues and redeems deposit codes.
type Service struct {
	uow       repository.UnitOfWork
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a deposit code Service. collector may be nil.
func New(
	uow repository.UnitOfWork,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, collector: collector, logger: logger}
}

// Generate issues a new unused code worth amount, tied to the user resolved
// by email after their account password checks out. The random code is
// re-checked for uniqueness in the same transaction that creates it.
func (s *Service) Generate(
	ctx context.Context,
	email, password string,
	amount money.Money,
) (dc *codedomain.DepositCode, err error) {
	log := s.logger.With("context", "GenerateDepositCode", "email", email)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		a, err := s.linkedAccount(ctx, uow, u.ID, false)
		if err != nil {
			return err
		}
		if !a.VerifyPassword(password) {
			return domain.ErrInvalidCredential
		}
		codes, err := uow.DepositCodeRepository()
		if err != nil {
			return err
		}
		dc, err = createWithFreshCode(ctx, codes, amount, u.ID)
		return err
	})
	if err != nil {
		dc = nil
		log.Error("deposit code generation failed", "error", err)
		return
	}
	log.Info("deposit code generated", "codeID", dc.ID)
	return
}

// Redeem marks the code used by the user resolved by email and credits their
// account with the code's amount. The code row and the account row are both
// locked, so a concurrent redemption of the same code observes the used flag.
func (s *Service) Redeem(
	ctx context.Context,
	code, email string,
) (dc *codedomain.DepositCode, err error) {
	log := s.logger.With("context", "RedeemDepositCode", "email", email)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		codes, err := uow.DepositCodeRepository()
		if err != nil {
			return err
		}
		dc, err = codes.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if err = dc.MarkUsed(u.ID); err != nil {
			return err
		}
		a, err := s.linkedAccount(ctx, uow, u.ID, true)
		if err != nil {
			return err
		}
		if err = a.IncreaseBalance(dc.Amount); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if err = accounts.Update(ctx, a); err != nil {
			return err
		}
		return codes.Update(ctx, dc)
	})
	if err != nil {
		dc = nil
		s.collector.RecordRedemption(metrics.OutcomeDenied)
		log.Error("deposit code redemption failed", "error", err)
		return
	}
	s.collector.RecordRedemption(metrics.OutcomeSuccess)
	log.Info("deposit code redeemed", "codeID", dc.ID, "amount", dc.Amount)
	return
}

func (s *Service) linkedAccount(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
	forUpdate bool,
) (*accountdomain.Account, error) {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	var a *accountdomain.Account
	if forUpdate {
		a, err = accounts.GetByUserIDForUpdate(ctx, userID)
	} else {
		a, err = accounts.GetByUserID(ctx, userID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoAccount
	}
	return a, err
}

func createWithFreshCode(
	ctx context.Context,
	codes repository.DepositCodeRepository,
	amount money.Money,
	generatorID uuid.UUID,
) (*codedomain.DepositCode, error) {
	for i := 0; i < generationAttempts; i++ {
		code := randomCode()
		taken, err := codes.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		dc, err := codedomain.New(code, amount, generatorID)
		if err != nil {
			return nil, err
		}
		err = codes.Create(ctx, dc)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Collided with a concurrent generator; draw again.
			continue
		}
		if err != nil {
			return nil, err
		}
		return dc, nil
	}
	return nil, fmt.Errorf("could not allocate a unique deposit code")
}

func randomCode() string {
	b := make([]byte, codedomain.CodeLength)
	for i := range b {
		b[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(b)
}

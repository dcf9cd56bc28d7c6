// Package authorizer implements the debit authorization engine. Checks run
// in a fixed order (existence, then credential, then funds) and
// short-circuit: a request with a wrong password and insufficient funds
// reports the credential failure. Only when all checks pass is the balance debited, inside the same
// locked unit of work.
package authorizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bankbr/baas/pkg/domain"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/metrics"
	"github.com/bankbr/baas/pkg/repository"
)

// Service authorizes and records single-account debits.
type Service struct {
	uow       repository.UnitOfWork
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates an authorizer Service. collector may be nil.
func New(
	uow repository.UnitOfWork,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, collector: collector, logger: logger}
}

// Authorize runs the check sequence against the account with the given
// number and, if every check passes, debits the amount and records a SUCCESS
// debit transaction. The account row stays locked from the first read to the
// final write, so concurrent debits serialize and can never jointly overdraw.
// A failed check leaves the balance untouched.
func (s *Service) Authorize(
	ctx context.Context,
	cardNumber, password string,
	amount money.Money,
) (rec *transaction.Transaction, err error) {
	log := s.logger.With("context", "Authorize", "number", cardNumber)
	if !amount.IsPositive() {
		s.collector.RecordAuthorization(metrics.OutcomeDenied)
		return nil, domain.ErrInvalidAmount
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.GetByNumberForUpdate(ctx, cardNumber)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("card %s: %w", cardNumber, domain.ErrNotFound)
			}
			return err
		}
		if !a.VerifyPassword(password) {
			return domain.ErrInvalidCredential
		}
		if !a.HasSufficientFunds(amount) {
			return domain.ErrInsufficientFunds
		}
		if err = a.DecreaseBalance(amount); err != nil {
			return err
		}
		if err = accounts.Update(ctx, a); err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		rec = transaction.NewDebit(a.ID, amount)
		if err = rec.MarkSuccess(); err != nil {
			return err
		}
		return transactions.Create(ctx, rec)
	})
	if err != nil {
		rec = nil
		s.collector.RecordAuthorization(metrics.OutcomeDenied)
		log.Error("authorization denied", "error", err)
		return
	}
	s.collector.RecordAuthorization(metrics.OutcomeSuccess)
	log.Info("authorization approved", "transactionID", rec.ID, "amount", rec.Amount)
	return
}

// Package transfer implements the peer-to-peer transfer orchestrator. A
// transfer debits the sender, credits the receiver and records a transaction,
// all as one unit of work with both account rows locked in a globally
// consistent order. Failures after the record is opened are persisted as
// FAILED for the audit trail and surfaced as domain.ErrTransferFailed.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bankbr/baas/pkg/domain"
	accountdomain "github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/bankbr/baas/pkg/metrics"
	"github.com/bankbr/baas/pkg/repository"
	"github.com/google/uuid"
)

// LookupMode selects how transfer parties are resolved.
type LookupMode int

const (
	// ByEmail resolves users by email address.
	ByEmail LookupMode = iota
	// ByCPF resolves users by tax identifier.
	ByCPF
)

// ErrSameAccount is returned when sender and receiver resolve to the same
// account.
var ErrSameAccount = errors.New("cannot transfer to same account")

// Service orchestrates peer-to-peer transfers.
type Service struct {
	uow       repository.UnitOfWork
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a transfer Service. collector may be nil.
func New(
	uow repository.UnitOfWork,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, collector: collector, logger: logger}
}

// Transfer moves amount from the sender's account to the receiver's.
//
// Validation runs in a fixed order: sender, sender account, sender
// credential, receiver, receiver account, amount, funds. Violations before
// the transaction record is opened return typed errors and change nothing.
// Once the record exists, any failure is persisted as FAILED in a separate
// unit of work (the audit trail survives the rollback) and returned wrapped
// in domain.ErrTransferFailed.
func (s *Service) Transfer(
	ctx context.Context,
	senderRef, receiverRef string,
	amount money.Money,
	password string,
	mode LookupMode,
) (*transaction.Transaction, error) {
	log := s.logger.With("context", "Transfer", "sender", senderRef, "receiver", receiverRef)
	start := time.Now()
	var rec *transaction.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}

		sender, err := findUser(ctx, users, senderRef, mode)
		if err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		senderAcct, err := linkedAccount(ctx, accounts, sender.ID)
		if err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		if !senderAcct.VerifyPassword(password) {
			return domain.ErrInvalidCredential
		}
		receiver, err := findUser(ctx, users, receiverRef, mode)
		if err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
		receiverAcct, err := linkedAccount(ctx, accounts, receiver.ID)
		if err != nil {
			return fmt.Errorf("receiver: %w", err)
		}
		if senderAcct.ID == receiverAcct.ID {
			return ErrSameAccount
		}
		if !amount.IsPositive() {
			return domain.ErrInvalidAmount
		}
		if !senderAcct.HasSufficientFunds(amount) {
			return domain.ErrInsufficientFunds
		}

		// Re-read both accounts under exclusive locks, always in ascending
		// ID order so opposite-direction transfers cannot deadlock.
		senderAcct, receiverAcct, err = lockPair(ctx, accounts, senderAcct.ID, receiverAcct.ID)
		if err != nil {
			return err
		}
		// The funds check above ran against a possibly stale balance;
		// repeat it on the locked row.
		if !senderAcct.HasSufficientFunds(amount) {
			return domain.ErrInsufficientFunds
		}

		rec = transaction.NewTransfer(sender.ID, receiver.ID, amount)

		if err = senderAcct.DecreaseBalance(amount); err != nil {
			return err
		}
		if err = receiverAcct.IncreaseBalance(amount); err != nil {
			return err
		}
		if err = accounts.Update(ctx, senderAcct); err != nil {
			return err
		}
		if err = accounts.Update(ctx, receiverAcct); err != nil {
			return err
		}
		if err = rec.MarkSuccess(); err != nil {
			return err
		}
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return transactions.Create(ctx, rec)
	})
	if err != nil {
		if rec != nil {
			// The record was opened before the failure: keep it as FAILED in
			// its own unit of work so the audit trail survives the rollback.
			s.recordFailure(ctx, rec)
			s.collector.RecordTransfer(metrics.OutcomeFailed, time.Since(start))
			log.Error("transfer failed after record opened", "transactionID", rec.ID, "error", err)
			return nil, fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
		}
		s.collector.RecordTransfer(metrics.OutcomeDenied, time.Since(start))
		log.Error("transfer rejected", "error", err)
		return nil, err
	}
	s.collector.RecordTransfer(metrics.OutcomeSuccess, time.Since(start))
	log.Info("transfer completed", "transactionID", rec.ID, "amount", rec.Amount)
	return rec, nil
}

func (s *Service) recordFailure(ctx context.Context, rec *transaction.Transaction) {
	if err := rec.MarkFailed(); err != nil {
		// The record reached SUCCESS inside the transaction that rolled back,
		// so that status never became durable. Rebuild the record as FAILED;
		// the audit entry must be written either way.
		rec = transaction.NewFromData(
			rec.ID, rec.SenderID, rec.ReceiverID, rec.AccountID,
			rec.Amount, transaction.StatusFailed,
			rec.CreatedAt, time.Now().UTC(),
		)
	}
	auditErr := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transactions, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return transactions.Create(ctx, rec)
	})
	if auditErr != nil {
		s.logger.Error("could not persist failed transfer record",
			"transactionID", rec.ID, "error", auditErr)
	}
}

func findUser(
	ctx context.Context,
	users repository.UserRepository,
	ref string,
	mode LookupMode,
) (*user.User, error) {
	if mode == ByCPF {
		return users.GetByCPF(ctx, ref)
	}
	return users.GetByEmail(ctx, ref)
}

func linkedAccount(
	ctx context.Context,
	accounts repository.AccountRepository,
	userID uuid.UUID,
) (*accountdomain.Account, error) {
	a, err := accounts.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoAccount
	}
	return a, err
}

// lockPair re-reads both accounts with exclusive locks, acquiring them in
// ascending UUID order regardless of transfer direction.
func lockPair(
	ctx context.Context,
	accounts repository.AccountRepository,
	senderID, receiverID uuid.UUID,
) (senderAcct, receiverAcct *accountdomain.Account, err error) {
	first, second := senderID, receiverID
	if strings.Compare(second.String(), first.String()) < 0 {
		first, second = second, first
	}
	firstAcct, err := accounts.GetForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	secondAcct, err := accounts.GetForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if firstAcct.ID == senderID {
		return firstAcct, secondAcct, nil
	}
	return secondAcct, firstAcct, nil
}

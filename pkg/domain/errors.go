// Package domain defines the error taxonomy shared by all business entities
// and services. Every business-rule violation is surfaced as one of these
// sentinel errors (possibly wrapped with context), so callers match with
// errors.Is instead of string comparison.
package domain

import "errors"

var (
	// ErrNotFound is returned when an account, user, transaction or deposit
	// code cannot be resolved.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when a unique key (account number, email,
	// CPF, deposit code) is already taken at creation time.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidCredential is returned when a supplied password does not
	// match the stored credential.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrInvalidAmount is returned when a mutating operation receives a zero
	// or negative amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInsufficientFunds is returned when a debit exceeds the available
	// balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoAccount is returned when a user has no linked account.
	ErrNoAccount = errors.New("user has no account")
	// ErrCodeAlreadyUsed is returned when a deposit code has already been
	// redeemed.
	ErrCodeAlreadyUsed = errors.New("deposit code already used")
	// ErrSelfRedemption is returned when a user tries to redeem a deposit
	// code they generated.
	ErrSelfRedemption = errors.New("cannot redeem own deposit code")
	// ErrTransferFailed wraps an infrastructure failure that happened after
	// the transfer's transaction record was opened. The underlying cause is
	// attached with %w and remains matchable.
	ErrTransferFailed = errors.New("transfer failed")
)

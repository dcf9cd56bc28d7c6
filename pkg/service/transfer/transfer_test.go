package transfer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bankbr/baas/infra/repository/memory"
	"github.com/bankbr/baas/pkg/domain"
	accountdomain "github.com/bankbr/baas/pkg/domain/account"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/domain/transaction"
	"github.com/bankbr/baas/pkg/domain/user"
	"github.com/bankbr/baas/pkg/repository"
	"github.com/bankbr/baas/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type party struct {
	userID    uuid.UUID
	accountID uuid.UUID
	email     string
	cpf       string
	number    string
}

func seedParty(t *testing.T, uow repository.UnitOfWork, email, cpf, number, password, balance string) party {
	t.Helper()
	ctx := context.Background()
	var p party
	err := uow.Do(ctx, func(inner repository.UnitOfWork) error {
		users, err := inner.UserRepository()
		if err != nil {
			return err
		}
		u, err := user.New(email, cpf, "hash")
		if err != nil {
			return err
		}
		if err = users.Create(ctx, u); err != nil {
			return err
		}
		accounts, err := inner.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accountdomain.New().
			WithNumber(number).
			WithUserID(u.ID).
			WithPassword(password).
			WithBalance(money.MustParse(balance)).
			Build()
		if err != nil {
			return err
		}
		if err = accounts.Create(ctx, a); err != nil {
			return err
		}
		p = party{userID: u.ID, accountID: a.ID, email: email, cpf: cpf, number: number}
		return nil
	})
	require.NoError(t, err)
	return p
}

func seedUserWithoutAccount(t *testing.T, uow repository.UnitOfWork, email, cpf string) {
	t.Helper()
	ctx := context.Background()
	err := uow.Do(ctx, func(inner repository.UnitOfWork) error {
		users, err := inner.UserRepository()
		if err != nil {
			return err
		}
		u, err := user.New(email, cpf, "hash")
		if err != nil {
			return err
		}
		return users.Create(ctx, u)
	})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, uow repository.UnitOfWork, number string) money.Money {
	t.Helper()
	ctx := context.Background()
	var bal money.Money
	err := uow.Do(ctx, func(inner repository.UnitOfWork) error {
		accounts, err := inner.AccountRepository()
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
	require.NoError(t, err)
	return bal
}

func transactionByID(t *testing.T, uow repository.UnitOfWork, id uuid.UUID) *transaction.Transaction {
	t.Helper()
	ctx := context.Background()
	var rec *transaction.Transaction
	err := uow.Do(ctx, func(inner repository.UnitOfWork) error {
		transactions, err := inner.TransactionRepository()
		if err != nil {
			return err
		}
		rec, err = transactions.Get(ctx, id)
		return err
	})
	require.NoError(t, err)
	return rec
}

func TestTransferMovesMoneyAndRecords(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	receiver := seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "200.00")

	rec, err := svc.Transfer(context.Background(),
		sender.email, receiver.email, money.MustParse("100.00"), "pw-alice", transfer.ByEmail)
	require.NoError(t, err)

	assert.Equal(t, transaction.StatusSuccess, rec.Status)
	assert.Equal(t, sender.userID, rec.SenderID)
	assert.Equal(t, receiver.userID, rec.ReceiverID)
	assert.Equal(t, "400.00", balanceOf(t, uow, sender.number).String())
	assert.Equal(t, "300.00", balanceOf(t, uow, receiver.number).String())

	stored := transactionByID(t, uow, rec.ID)
	assert.Equal(t, transaction.StatusSuccess, stored.Status)
}

func TestTransferByCPF(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	receiver := seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "0.00")

	_, err := svc.Transfer(context.Background(),
		sender.cpf, receiver.cpf, money.MustParse("50.00"), "pw-alice", transfer.ByCPF)
	require.NoError(t, err)
	assert.Equal(t, "50.00", balanceOf(t, uow, receiver.number).String())
}

func TestTransferUnknownSender(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "0.00")

	_, err := svc.Transfer(context.Background(),
		"ghost@example.com", "bob@example.com", money.MustParse("10.00"), "pw", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferSenderWithoutAccount(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	seedUserWithoutAccount(t, uow, "alice@example.com", "11111111111")
	seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "0.00")

	_, err := svc.Transfer(context.Background(),
		"alice@example.com", "bob@example.com", money.MustParse("10.00"), "pw", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrNoAccount)
}

func TestTransferCredentialCheckedBeforeReceiver(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")

	// Wrong password and a receiver that does not exist: the credential
	// failure wins.
	_, err := svc.Transfer(context.Background(),
		sender.email, "ghost@example.com", money.MustParse("10.00"), "wrong", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferUnknownReceiver(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")

	_, err := svc.Transfer(context.Background(),
		sender.email, "ghost@example.com", money.MustParse("10.00"), "pw-alice", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "500.00", balanceOf(t, uow, sender.number).String())
}

func TestTransferReceiverWithoutAccount(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	seedUserWithoutAccount(t, uow, "bob@example.com", "22222222222")

	_, err := svc.Transfer(context.Background(),
		sender.email, "bob@example.com", money.MustParse("10.00"), "pw-alice", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrNoAccount)
}

func TestTransferToSameAccount(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")

	_, err := svc.Transfer(context.Background(),
		sender.email, sender.email, money.MustParse("10.00"), "pw-alice", transfer.ByEmail)
	assert.ErrorIs(t, err, transfer.ErrSameAccount)
	assert.Equal(t, "500.00", balanceOf(t, uow, sender.number).String())
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	receiver := seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "0.00")

	_, err := svc.Transfer(context.Background(),
		sender.email, receiver.email, money.Zero, "pw-alice", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Transfer(context.Background(),
		sender.email, receiver.email, money.MustParse("-5"), "pw-alice", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTransferInsufficientFunds(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	sender := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	receiver := seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "0.00")

	_, err := svc.Transfer(context.Background(),
		sender.email, receiver.email, money.MustParse("500.01"), "pw-alice", transfer.ByEmail)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, "500.00", balanceOf(t, uow, sender.number).String())
	assert.Equal(t, "0.00", balanceOf(t, uow, receiver.number).String())
}

// failingUoW injects a storage failure into Update calls for one account so
// the rollback path can be exercised deterministically.
type failingUoW struct {
	inner  repository.UnitOfWork
	failID uuid.UUID
}

func (f *failingUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return f.inner.Do(ctx, func(inner repository.UnitOfWork) error {
		return fn(&failingUoW{inner: inner, failID: f.failID})
	})
}

func (f *failingUoW) AccountRepository() (repository.AccountRepository, error) {
	accounts, err := f.inner.AccountRepository()
	if err != nil {
		return nil, err
	}
	return &failingAccounts{AccountRepository: accounts, failID: f.failID}, nil
}

func (f *failingUoW) UserRepository() (repository.UserRepository, error) {
	return f.inner.UserRepository()
}

func (f *failingUoW) TransactionRepository() (repository.TransactionRepository, error) {
	return f.inner.TransactionRepository()
}

func (f *failingUoW) DepositCodeRepository() (repository.DepositCodeRepository, error) {
	return f.inner.DepositCodeRepository()
}

type failingAccounts struct {
	repository.AccountRepository
	failID uuid.UUID
}

var errStorageDown = errors.New("storage unavailable")

func (f *failingAccounts) Update(ctx context.Context, a *accountdomain.Account) error {
	if a.ID == f.failID {
		return errStorageDown
	}
	return f.AccountRepository.Update(ctx, a)
}

func TestTransferFailureRollsBackAndKeepsFailedRecord(t *testing.T) {
	base := memory.NewUnitOfWork(memory.NewStore())
	sender := seedParty(t, base, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	receiver := seedParty(t, base, "bob@example.com", "22222222222", "22222222", "pw-bob", "200.00")

	uow := &failingUoW{inner: base, failID: receiver.accountID}
	svc := transfer.New(uow, nil, discardLogger())

	rec, err := svc.Transfer(context.Background(),
		sender.email, receiver.email, money.MustParse("100.00"), "pw-alice", transfer.ByEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.ErrorIs(t, err, errStorageDown)
	assert.Nil(t, rec)

	// Both balances rolled back.
	assert.Equal(t, "500.00", balanceOf(t, base, sender.number).String())
	assert.Equal(t, "200.00", balanceOf(t, base, receiver.number).String())

	// The audit record survived as FAILED.
	ctx := context.Background()
	err = base.Do(ctx, func(inner repository.UnitOfWork) error {
		transactions, err := inner.TransactionRepository()
		if err != nil {
			return err
		}
		list, err := transactions.ListByUser(ctx, sender.userID)
		if err != nil {
			return err
		}
		require.Len(t, list, 1)
		assert.Equal(t, transaction.StatusFailed, list[0].Status)
		assert.Equal(t, "100.00", list[0].Amount.String())
		return nil
	})
	require.NoError(t, err)
}

// brokenRecordsUoW injects failures into TransactionRepository.Create so the
// late-failure path (the audit write itself failing) can be exercised.
type brokenRecordsUoW struct {
	inner     repository.UnitOfWork
	remaining *int
}

func (b *brokenRecordsUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return b.inner.Do(ctx, func(inner repository.UnitOfWork) error {
		return fn(&brokenRecordsUoW{inner: inner, remaining: b.remaining})
	})
}

func (b *brokenRecordsUoW) AccountRepository() (repository.AccountRepository, error) {
	return b.inner.AccountRepository()
}

func (b *brokenRecordsUoW) UserRepository() (repository.UserRepository, error) {
	return b.inner.UserRepository()
}

func (b *brokenRecordsUoW) TransactionRepository() (repository.TransactionRepository, error) {
	transactions, err := b.inner.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return &brokenRecords{TransactionRepository: transactions, remaining: b.remaining}, nil
}

func (b *brokenRecordsUoW) DepositCodeRepository() (repository.DepositCodeRepository, error) {
	return b.inner.DepositCodeRepository()
}

type brokenRecords struct {
	repository.TransactionRepository
	remaining *int
}

func (b *brokenRecords) Create(ctx context.Context, rec *transaction.Transaction) error {
	if *b.remaining > 0 {
		*b.remaining--
		return errStorageDown
	}
	return b.TransactionRepository.Create(ctx, rec)
}

func TestTransferRecordWriteFailureStillPersistsFailedRecord(t *testing.T) {
	base := memory.NewUnitOfWork(memory.NewStore())
	sender := seedParty(t, base, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	receiver := seedParty(t, base, "bob@example.com", "22222222222", "22222222", "pw-bob", "200.00")

	// The in-transaction SUCCESS write fails once; the audit retry must not.
	failures := 1
	uow := &brokenRecordsUoW{inner: base, remaining: &failures}
	svc := transfer.New(uow, nil, discardLogger())

	rec, err := svc.Transfer(context.Background(),
		sender.email, receiver.email, money.MustParse("100.00"), "pw-alice", transfer.ByEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)
	assert.ErrorIs(t, err, errStorageDown)
	assert.Nil(t, rec)

	// Both balances rolled back with the transaction.
	assert.Equal(t, "500.00", balanceOf(t, base, sender.number).String())
	assert.Equal(t, "200.00", balanceOf(t, base, receiver.number).String())

	// The audit record was still written, as FAILED.
	ctx := context.Background()
	err = base.Do(ctx, func(inner repository.UnitOfWork) error {
		transactions, err := inner.TransactionRepository()
		if err != nil {
			return err
		}
		list, err := transactions.ListByUser(ctx, sender.userID)
		if err != nil {
			return err
		}
		require.Len(t, list, 1)
		assert.Equal(t, transaction.StatusFailed, list[0].Status)
		assert.Equal(t, "100.00", list[0].Amount.String())
		return nil
	})
	require.NoError(t, err)
}

func TestOppositeDirectionTransfersConserveMoney(t *testing.T) {
	uow := memory.NewUnitOfWork(memory.NewStore())
	svc := transfer.New(uow, nil, discardLogger())
	alice := seedParty(t, uow, "alice@example.com", "11111111111", "11111111", "pw-alice", "500.00")
	bob := seedParty(t, uow, "bob@example.com", "22222222222", "22222222", "pw-bob", "500.00")

	const rounds = 50
	amount := money.MustParse("1.00")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for r := 0; r < rounds; r++ {
			_, err := svc.Transfer(context.Background(),
				alice.email, bob.email, amount, "pw-alice", transfer.ByEmail)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for r := 0; r < rounds; r++ {
			_, err := svc.Transfer(context.Background(),
				bob.email, alice.email, amount, "pw-bob", transfer.ByEmail)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	total, err := balanceOf(t, uow, alice.number).Add(balanceOf(t, uow, bob.number))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", total.String())
}

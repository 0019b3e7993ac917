package operator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/atm-ledger/internal/credential"
	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
	"github.com/carson-networks/atm-ledger/internal/operator/actions"
)

func newTestLogger() *logrus.Logger {
	logger := logging.SetupLogging()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestDelegator(t *testing.T, logger *logrus.Logger, workers int) (*OperatorDelegator, *ledger.Bank) {
	t.Helper()
	hasher, err := credential.NewHasher(credential.Params{Time: 1, MemoryKiB: 64, Threads: 1})
	require.NoError(t, err)
	bank := ledger.NewBank("Test", ledger.WithHasher(hasher), ledger.WithLogger(logger))

	d := NewOperatorDelegator(bank, logger, workers)
	d.Start()
	t.Cleanup(d.Stop)
	return d, bank
}

// blockingAction waits for release before returning.
type blockingAction struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAction) Name() string { return "Blocking" }

func (b *blockingAction) Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error {
	close(b.started)
	<-b.release
	return nil
}

type failingAction struct{}

func (failingAction) Name() string { return "Failing" }

func (failingAction) Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error {
	return errors.New("boom")
}

// -- AddUser / OpenAccount --

func TestProcess_AddUserAndOpenAccount(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 1)
	ctx := context.Background()

	add := &actions.AddUser{FirstName: "Alice", LastName: "Smith", Pin: "1234"}
	require.NoError(t, d.Process(ctx, add))
	require.NotNil(t, add.User)
	assert.Equal(t, 1, bank.NumUsers())

	open := &actions.OpenAccount{Owner: add.User, AccountName: ledger.AccountNameChecking}
	require.NoError(t, d.Process(ctx, open))
	require.NotNil(t, open.Account)
	assert.Equal(t, 2, add.User.NumAccounts())
	assert.Equal(t, 2, bank.NumAccounts())
}

// -- PostTransaction --

func TestProcess_PostTransactionsInOrder(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 1)
	ctx := context.Background()
	user, err := bank.AddUser("Alice", "Smith", "1234")
	require.NoError(t, err)

	for i := 1; i <= 50; i++ {
		post := &actions.PostTransaction{
			User:   user,
			Amount: decimal.NewFromInt(int64(i)),
			Memo:   "deposit",
		}
		require.NoError(t, d.Process(ctx, post))
		require.NotNil(t, post.Transaction)
	}

	balance, err := user.AcctBalance(0)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1275)))

	acct, err := user.Account(0)
	require.NoError(t, err)
	newest := acct.TransactionsNewestFirst()
	assert.True(t, newest[0].Amount().Equal(decimal.NewFromInt(50)))
	assert.True(t, newest[49].Amount().Equal(decimal.NewFromInt(1)))
}

func TestProcess_PostTransactionBadIndex(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 1)
	user, err := bank.AddUser("Alice", "Smith", "1234")
	require.NoError(t, err)

	post := &actions.PostTransaction{User: user, AccountIndex: 3, Amount: decimal.NewFromInt(1)}
	err = d.Process(context.Background(), post)

	assert.ErrorIs(t, err, ledger.ErrAccountIndexOutOfRange)
	assert.Nil(t, post.Transaction)
}

// -- Transfer --

func TestProcess_Transfer(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 1)
	ctx := context.Background()
	user, err := bank.AddUser("Alice", "Smith", "1234")
	require.NoError(t, err)
	checking, err := bank.OpenAccount(user, ledger.AccountNameChecking)
	require.NoError(t, err)
	savings, err := user.Account(0)
	require.NoError(t, err)

	savings.AddTransaction(decimal.RequireFromString("100.00"), "deposit")

	transfer := &actions.Transfer{
		User:      user,
		FromIndex: 0,
		ToIndex:   1,
		Amount:    decimal.RequireFromString("40.25"),
		Memo:      "rent",
	}
	require.NoError(t, d.Process(ctx, transfer))

	assert.Equal(t, "59.75", savings.Balance().StringFixed(2))
	assert.Equal(t, "40.25", checking.Balance().StringFixed(2))
	assert.Equal(t, "Transfer to account "+checking.ID()+": rent", transfer.Withdrawal.Memo())
	assert.Equal(t, "Transfer from account "+savings.ID()+": rent", transfer.Deposit.Memo())
}

func TestProcess_TransferLogsTimings(t *testing.T) {
	logger := logging.SetupLogging()
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)

	d, bank := newTestDelegator(t, logger, 1)
	user, err := bank.AddUser("Alice", "Smith", "1234")
	require.NoError(t, err)
	_, err = bank.OpenAccount(user, ledger.AccountNameChecking)
	require.NoError(t, err)
	buf.Reset()

	transfer := &actions.Transfer{User: user, FromIndex: 1, ToIndex: 0, Amount: decimal.NewFromInt(5)}
	require.NoError(t, d.Process(context.Background(), transfer))

	var complete map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "Action.Transfer.Complete" {
			complete = entry
		}
	}
	require.NotNil(t, complete)
	assert.Contains(t, complete, "accountLookupMs")
	assert.Contains(t, complete, "postMs")
	assert.Contains(t, complete, "durationMs")
	assert.Equal(t, user.ID(), complete["userID"])
}

func TestProcess_TransferRejectsBeforePosting(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 1)
	ctx := context.Background()
	user, err := bank.AddUser("Alice", "Smith", "1234")
	require.NoError(t, err)

	err = d.Process(ctx, &actions.Transfer{User: user, FromIndex: 0, ToIndex: 0, Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, actions.ErrSameAccount)

	err = d.Process(ctx, &actions.Transfer{User: user, FromIndex: 0, ToIndex: 1, Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ledger.ErrAccountIndexOutOfRange)

	acct, err := user.Account(0)
	require.NoError(t, err)
	assert.Equal(t, 0, acct.NumTransactions())
}

// -- Delegator behaviour --

func TestProcess_ContextCancelledWhileWaiting(t *testing.T) {
	d, _ := newTestDelegator(t, newTestLogger(), 1)

	blocker := &blockingAction{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- d.Process(context.Background(), blocker) }()
	<-blocker.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Process(ctx, failingAction{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(blocker.release)
	assert.NoError(t, <-done)
}

func TestProcess_AlreadyCancelled(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	add := &actions.AddUser{FirstName: "Alice", LastName: "Smith", Pin: "1234"}
	err := d.Process(ctx, add)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, bank.NumUsers())
}

func TestProcess_AfterStop(t *testing.T) {
	d, _ := newTestDelegator(t, newTestLogger(), 2)
	d.Stop()

	err := d.Process(context.Background(), &actions.AddUser{FirstName: "A", LastName: "B", Pin: "1"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestProcess_ConcurrentCallersWithWorkers(t *testing.T) {
	d, bank := newTestDelegator(t, newTestLogger(), 4)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Process(ctx, &actions.AddUser{FirstName: "A", LastName: "B", Pin: "1"}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, bank.NumUsers())
	assert.Equal(t, 20, bank.NumAccounts())
}

func TestProcess_FailureDumpRedactsPin(t *testing.T) {
	logger := logging.SetupLogging()
	logger.SetLevel(logrus.DebugLevel)
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)

	d, _ := newTestDelegator(t, logger, 1)
	err := d.Process(context.Background(), &actions.OpenAccount{AccountName: "Checking"})
	assert.Error(t, err)

	err = d.Process(context.Background(), failingAction{})
	assert.EqualError(t, err, "boom")

	out := buf.String()
	assert.Contains(t, out, "Action.OpenAccount.Error")
	assert.Contains(t, out, "Action.Failing.Error")
	assert.True(t, strings.Contains(out, "AccountName"), "debug dump of the failed action")

	buf.Reset()
	hidden := &actions.AddUser{FirstName: "A", LastName: "B", Pin: "987654"}
	assert.NotContains(t, dumpConfig.Sdump(hidden), "987654")
}

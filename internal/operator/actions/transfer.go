package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
)

var ErrSameAccount = ledger.ErrSameAccount

// Transfer moves Amount between two of the user's accounts as a withdrawal
// from one and a deposit to the other. Both indices are checked before
// either leg is posted.
type Transfer struct {
	User      *ledger.User
	FromIndex int
	ToIndex   int
	Amount    decimal.Decimal
	Memo      string

	Withdrawal *ledger.Transaction
	Deposit    *ledger.Transaction
}

func (t *Transfer) Name() string {
	return "Transfer"
}

func (t *Transfer) Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error {
	if t.User == nil {
		return errors.New("transfer: user is required")
	}
	if t.FromIndex == t.ToIndex {
		return ErrSameAccount
	}
	logData.AddData("userID", t.User.ID())

	from, err := t.lookup(logData, t.FromIndex)
	if err != nil {
		return err
	}
	to, err := t.lookup(logData, t.ToIndex)
	if err != nil {
		return err
	}
	logData.AddData("fromAccountID", from.ID())
	logData.AddData("toAccountID", to.ID())

	endPost := logData.AddTiming("post")
	defer endPost()
	t.Withdrawal, t.Deposit, err = ledger.Transfer(from, to, t.Amount,
		transferMemo("Transfer to account", to.ID(), t.Memo),
		transferMemo("Transfer from account", from.ID(), t.Memo))
	return err
}

func (t *Transfer) lookup(logData *logging.LogData, idx int) (*ledger.Account, error) {
	endLookup := logData.AddToExistingTiming("accountLookup")
	defer endLookup()
	return t.User.Account(idx)
}

func transferMemo(prefix, accountID, memo string) string {
	if memo == "" {
		return fmt.Sprintf("%s %s", prefix, accountID)
	}
	return fmt.Sprintf("%s %s: %s", prefix, accountID, memo)
}

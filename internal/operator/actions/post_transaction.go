package actions

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
)

// PostTransaction appends a signed amount to one of the user's accounts.
type PostTransaction struct {
	User         *ledger.User
	AccountIndex int
	Amount       decimal.Decimal
	Memo         string

	Transaction *ledger.Transaction
}

func (p *PostTransaction) Name() string {
	return "PostTransaction"
}

func (p *PostTransaction) Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error {
	if p.User == nil {
		return errors.New("post transaction: user is required")
	}
	logData.AddData("userID", p.User.ID())
	logData.AddData("accountIndex", p.AccountIndex)

	txn, err := p.User.AddAcctTransaction(p.AccountIndex, p.Amount, p.Memo)
	if err != nil {
		return err
	}

	p.Transaction = txn
	logData.AddData("accountID", txn.Account().ID())
	logData.AddData("transactionID", txn.ID().String())
	return nil
}

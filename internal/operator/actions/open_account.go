package actions

import (
	"context"
	"errors"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
)

type OpenAccount struct {
	Owner       *ledger.User
	AccountName string

	Account *ledger.Account
}

func (o *OpenAccount) Name() string {
	return "OpenAccount"
}

func (o *OpenAccount) Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error {
	if o.Owner == nil {
		return errors.New("open account: owner is required")
	}
	logData.AddData("userID", o.Owner.ID())

	account, err := bank.OpenAccount(o.Owner, o.AccountName)
	if err != nil {
		return err
	}

	o.Account = account
	logData.AddData("accountID", account.ID())
	return nil
}

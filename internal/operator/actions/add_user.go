package actions

import (
	"context"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
)

type AddUser struct {
	FirstName string
	LastName  string
	Pin       Secret

	User *ledger.User
}

func (a *AddUser) Name() string {
	return "AddUser"
}

func (a *AddUser) Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error {
	endTimer := logData.AddTiming("addUser")
	user, err := bank.AddUser(a.FirstName, a.LastName, string(a.Pin))
	endTimer()
	if err != nil {
		return err
	}

	a.User = user
	logData.AddData("userID", user.ID())
	return nil
}

package actions

import (
	"context"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
)

// IAction is one mutating unit of work against a bank. Results are written
// back into the action's own fields.
type IAction interface {
	Name() string
	Perform(ctx context.Context, bank *ledger.Bank, logData *logging.LogData) error
}

// Secret hides its value from String-based output such as debug dumps.
type Secret string

func (Secret) String() string {
	return "[redacted]"
}

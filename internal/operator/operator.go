package operator

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/logging"
	"github.com/carson-networks/atm-ledger/internal/operator/actions"
)

// dumpConfig keeps failed-action dumps shallow; ledger objects link back to
// each other and a full dump would walk the whole bank.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                2,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Operator is the worker that processes items from the queue.
type Operator struct {
	bank   *ledger.Bank
	logger *logrus.Logger
	queue  <-chan ActionItem
	quit   <-chan struct{}
}

func NewOperator(bank *ledger.Bank, logger *logrus.Logger, queue <-chan ActionItem, quit <-chan struct{}) *Operator {
	return &Operator{
		bank:   bank,
		logger: logger,
		queue:  queue,
		quit:   quit,
	}
}

// Run processes items until quit is closed.
func (o *Operator) Run() {
	for {
		select {
		case item := <-o.queue:
			o.processItem(item)
		case <-o.quit:
			return
		}
	}
}

func (o *Operator) processItem(item ActionItem) {
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	run := logging.WrapAction(item.action.Name(), o.logger, func(ctx context.Context, logData *logging.LogData) error {
		return item.action.Perform(ctx, o.bank, logData)
	})

	err := run(item.ctx)
	if err != nil && o.logger.IsLevelEnabled(logrus.DebugLevel) {
		o.logger.WithField("action", item.action.Name()).Debug(dumpConfig.Sdump(item.action))
	}
	item.response <- ActionItemResponse{err: err}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}

package operator

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/operator/actions"
)

const queueSize = 1000

var ErrStopped = errors.New("operator: stopped")

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	bank       *ledger.Bank
	logger     *logrus.Logger
	queue      chan ActionItem
	quit       chan struct{}
	numWorkers int
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewOperatorDelegator builds a delegator for bank. With one worker, actions
// run strictly in submission order.
func NewOperatorDelegator(bank *ledger.Bank, logger *logrus.Logger, numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		bank:       bank,
		logger:     logger,
		queue:      make(chan ActionItem, queueSize),
		quit:       make(chan struct{}),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.numWorkers; i++ {
			d.wg.Add(1)
			op := NewOperator(d.bank, d.logger, d.queue, d.quit)
			go func() {
				defer d.wg.Done()
				op.Run()
			}()
		}
	})
}

// Stop waits for in-flight actions to finish and abandons the rest of the
// queue. Callers still waiting in Process get ErrStopped, even when their
// action had already been performed.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
		d.wg.Wait()
	})
}

// Process enqueues action and waits for it to be performed.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	select {
	case <-d.quit:
		return ErrStopped
	default:
	}

	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	select {
	case d.queue <- item:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrStopped
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrStopped
	}
}

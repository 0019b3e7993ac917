package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/operator/actions"
)

const defaultLimit = 20

// Deposit posts +amount to the user's idx-th account.
func (s *Service) Deposit(ctx context.Context, user *ledger.User, idx int, amount decimal.Decimal, memo string) (*ledger.Transaction, error) {
	return s.post(ctx, user, idx, amount, memo)
}

// Withdraw posts -amount to the user's idx-th account. No overdraft rule
// applies; the balance may go negative.
func (s *Service) Withdraw(ctx context.Context, user *ledger.User, idx int, amount decimal.Decimal, memo string) (*ledger.Transaction, error) {
	return s.post(ctx, user, idx, amount.Neg(), memo)
}

func (s *Service) post(ctx context.Context, user *ledger.User, idx int, amount decimal.Decimal, memo string) (*ledger.Transaction, error) {
	action := &actions.PostTransaction{
		User:         user,
		AccountIndex: idx,
		Amount:       amount,
		Memo:         memo,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Transaction, nil
}

// Transfer moves amount from the user's fromIdx account to toIdx.
func (s *Service) Transfer(ctx context.Context, user *ledger.User, fromIdx, toIdx int, amount decimal.Decimal, memo string) error {
	return s.operator.Process(ctx, &actions.Transfer{
		User:      user,
		FromIndex: fromIdx,
		ToIndex:   toIdx,
		Amount:    amount,
		Memo:      memo,
	})
}

// ListTransactions returns a newest-first page of the idx-th account's
// history. A nil cursor starts from the newest transaction.
func (s *Service) ListTransactions(ctx context.Context, user *ledger.User, idx int, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	account, err := user.Account(idx)
	if err != nil {
		return nil, nil, err
	}
	rows := account.TransactionsNewestFirst()

	limit := defaultLimit
	offset := 0
	total := len(rows)
	if cursor != nil {
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		offset = max(cursor.Position, 0)
		if cursor.Total > 0 && cursor.Total <= len(rows) {
			total = cursor.Total
		}
	}

	// Drop anything appended after the first page was taken.
	rows = rows[len(rows)-total:]

	if offset >= len(rows) {
		return nil, nil, nil
	}
	rows = rows[offset:]

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &TransactionCursor{
			Position: offset + limit,
			Limit:    limit,
			Total:    total,
		}
	}

	convertedTransactions := make([]Transaction, len(rows))
	for i, row := range rows {
		convertedTransactions[i] = Transaction{
			ID:        row.ID(),
			AccountID: account.ID(),
			Amount:    row.Amount(),
			Memo:      row.Memo(),
			CreatedAt: row.Timestamp(),
			Summary:   row.SummaryLine(),
		}
	}

	return convertedTransactions, nextCursor, nil
}

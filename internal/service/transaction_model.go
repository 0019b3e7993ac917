package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Transaction represents a transaction in the service layer.
type Transaction struct {
	ID        uuid.UUID
	AccountID string
	Amount    decimal.Decimal
	Memo      string
	CreatedAt time.Time
	Summary   string
}

// TransactionCursor identifies a position in a paginated, newest-first
// history. Total pins the history length seen by the first page so later
// appends do not shift subsequent pages.
type TransactionCursor struct {
	Position int
	Limit    int
	Total    int
}

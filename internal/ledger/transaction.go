package ledger

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const timestampLayout = "2006-01-02 15:04:05"

// Transaction is one immutable ledger entry. Only Account.AddTransaction
// creates them.
type Transaction struct {
	id        uuid.UUID
	amount    decimal.Decimal
	memo      string
	timestamp time.Time
	account   *Account
}

func (t *Transaction) ID() uuid.UUID {
	return t.id
}

func (t *Transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t *Transaction) Memo() string {
	return t.memo
}

func (t *Transaction) Timestamp() time.Time {
	return t.timestamp
}

// Account returns the account the transaction was posted to.
func (t *Transaction) Account() *Account {
	return t.account
}

// SummaryLine renders "<timestamp> : $<amount> : <memo>", with negative
// amounts in parentheses.
func (t *Transaction) SummaryLine() string {
	return fmt.Sprintf("%s : %s : %s", t.timestamp.Format(timestampLayout), FormatAmount(t.amount), t.memo)
}

// FormatAmount renders d with a dollar prefix and two fraction digits.
// Negative values are shown as "$(12.50)".
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "$(" + d.Abs().StringFixed(2) + ")"
	}
	return "$" + d.StringFixed(2)
}

package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const (
	AccountNameChecking = "Checking"
	AccountNameSavings  = "Savings"
)

// Account owns an append-only ledger. Its balance is always derived from
// the ledger and never stored.
type Account struct {
	id    string
	name  string
	owner *User
	now   func() time.Time

	mu           sync.RWMutex
	transactions []*Transaction
}

// NewAccount builds an account for owner with an identifier minted by bank.
// The account is not registered anywhere; pass it to Bank.AddAccount.
func NewAccount(name string, owner *User, bank *Bank) (*Account, error) {
	id, err := bank.NewAccountIdentifier()
	if err != nil {
		return nil, err
	}
	return newAccount(id, name, owner, bank.now), nil
}

func newAccount(id, name string, owner *User, now func() time.Time) *Account {
	return &Account{
		id:    id,
		name:  name,
		owner: owner,
		now:   now,
	}
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) Name() string {
	return a.name
}

func (a *Account) Owner() *User {
	return a.owner
}

// Balance sums the ledger on every call.
func (a *Account) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()

	balance := decimal.Zero
	for _, t := range a.transactions {
		balance = balance.Add(t.amount)
	}
	return balance
}

// AddTransaction appends a signed amount to the ledger. Deposits are
// positive, withdrawals negative; no overdraft rule applies.
func (a *Account) AddTransaction(amount decimal.Decimal, memo string) *Transaction {
	t := &Transaction{
		id:        uuid.Must(uuid.NewV4()),
		amount:    amount,
		memo:      memo,
		timestamp: a.now(),
		account:   a,
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.transactions = append(a.transactions, t)
	return t
}

// Transfer posts -amount to from and +amount to to while holding both
// ledgers, so a reader sees both legs or neither. The locks are taken in
// identifier order; both accounts must come from the same bank.
func Transfer(from, to *Account, amount decimal.Decimal, fromMemo, toMemo string) (*Transaction, *Transaction, error) {
	if from == to {
		return nil, nil, ErrSameAccount
	}

	now := from.now()
	withdrawal := &Transaction{id: uuid.Must(uuid.NewV4()), amount: amount.Neg(), memo: fromMemo, timestamp: now, account: from}
	deposit := &Transaction{id: uuid.Must(uuid.NewV4()), amount: amount, memo: toMemo, timestamp: now, account: to}

	first, second := from, to
	if to.id < from.id {
		first, second = to, from
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	from.transactions = append(from.transactions, withdrawal)
	to.transactions = append(to.transactions, deposit)
	return withdrawal, deposit, nil
}

func (a *Account) NumTransactions() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.transactions)
}

// TransactionsNewestFirst returns a copy of the ledger in reverse
// chronological order.
func (a *Account) TransactionsNewestFirst() []*Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*Transaction, len(a.transactions))
	for i, t := range a.transactions {
		out[len(a.transactions)-1-i] = t
	}
	return out
}

// TransactionHistory renders the ledger newest first, one summary line per
// transaction.
func (a *Account) TransactionHistory() []string {
	txs := a.TransactionsNewestFirst()
	lines := make([]string, len(txs))
	for i, t := range txs {
		lines[i] = t.SummaryLine()
	}
	return lines
}

// SummaryLine renders "<id> : $<balance> : <name>".
func (a *Account) SummaryLine() string {
	return fmt.Sprintf("%s : %s : %s", a.id, FormatAmount(a.Balance()), a.name)
}

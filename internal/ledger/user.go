package ledger

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/atm-ledger/internal/credential"
)

// User is a bank customer. The PIN is only ever held as a salted digest.
type User struct {
	id        string
	firstName string
	lastName  string
	pin       credential.Digest
	hasher    *credential.Hasher

	mu       sync.RWMutex
	accounts []*Account
}

func (u *User) ID() string {
	return u.id
}

func (u *User) FirstName() string {
	return u.firstName
}

func (u *User) LastName() string {
	return u.lastName
}

// ValidatePin reports whether candidate is the PIN the user was created with.
func (u *User) ValidatePin(candidate string) bool {
	return u.hasher.Verify(u.pin, candidate)
}

func (u *User) addAccount(a *Account) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.accounts = append(u.accounts, a)
}

func (u *User) NumAccounts() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.accounts)
}

// Account returns the idx-th account in creation order.
func (u *User) Account(idx int) (*Account, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if idx < 0 || idx >= len(u.accounts) {
		return nil, fmt.Errorf("%w: %d of %d", ErrAccountIndexOutOfRange, idx, len(u.accounts))
	}
	return u.accounts[idx], nil
}

// Accounts returns a copy of the user's accounts in creation order.
func (u *User) Accounts() []*Account {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*Account, len(u.accounts))
	copy(out, u.accounts)
	return out
}

// AccountsSummary renders one summary line per account, in creation order.
func (u *User) AccountsSummary() []string {
	accounts := u.Accounts()
	lines := make([]string, len(accounts))
	for i, a := range accounts {
		lines[i] = a.SummaryLine()
	}
	return lines
}

func (u *User) AcctBalance(idx int) (decimal.Decimal, error) {
	a, err := u.Account(idx)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance(), nil
}

func (u *User) AcctID(idx int) (string, error) {
	a, err := u.Account(idx)
	if err != nil {
		return "", err
	}
	return a.ID(), nil
}

// AcctTransHistory returns the idx-th account's history, newest first.
func (u *User) AcctTransHistory(idx int) ([]string, error) {
	a, err := u.Account(idx)
	if err != nil {
		return nil, err
	}
	return a.TransactionHistory(), nil
}

func (u *User) AddAcctTransaction(idx int, amount decimal.Decimal, memo string) (*Transaction, error) {
	a, err := u.Account(idx)
	if err != nil {
		return nil, err
	}
	return a.AddTransaction(amount, memo), nil
}

package ledger

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/atm-ledger/internal/credential"
)

// Bank is the lifetime anchor for users and accounts. Every account is held
// both in the bank's flat list and in its owner's list; mutating methods
// update the two under one lock.
type Bank struct {
	name string

	log                   *logrus.Logger
	hasher                *credential.Hasher
	digits                DigitSource
	now                   func() time.Time
	maxIdentifierAttempts int

	mu           sync.Mutex
	users        []*User
	usersByID    map[string]*User
	accounts     []*Account
	accountsByID map[string]*Account

	// decoy is verified for unknown identifiers so both login failures
	// cost one hash.
	decoy credential.Digest
}

type Option func(*Bank)

func WithLogger(log *logrus.Logger) Option {
	return func(b *Bank) { b.log = log }
}

func WithHasher(h *credential.Hasher) Option {
	return func(b *Bank) { b.hasher = h }
}

// WithDigitSource replaces the random source used to mint identifiers.
func WithDigitSource(d DigitSource) Option {
	return func(b *Bank) { b.digits = d }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bank) { b.now = now }
}

// WithMaxIdentifierAttempts caps the draws per identifier. Values below one
// are ignored.
func WithMaxIdentifierAttempts(n int) Option {
	return func(b *Bank) {
		if n > 0 {
			b.maxIdentifierAttempts = n
		}
	}
}

func NewBank(name string, opts ...Option) *Bank {
	b := &Bank{
		name:                  name,
		log:                   logrus.StandardLogger(),
		hasher:                credential.NewDefaultHasher(),
		digits:                rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:                   time.Now,
		maxIdentifierAttempts: DefaultMaxIdentifierAttempts,
		usersByID:             make(map[string]*User),
		accountsByID:          make(map[string]*Account),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.decoy = b.hasher.Decoy()
	return b
}

func (b *Bank) Name() string {
	return b.name
}

func (b *Bank) NumUsers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.users)
}

func (b *Bank) NumAccounts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.accounts)
}

// Accounts returns a copy of the flat account list in registration order.
func (b *Bank) Accounts() []*Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Account, len(b.accounts))
	copy(out, b.accounts)
	return out
}

// User looks up a registered user without checking credentials.
func (b *Bank) User(id string) (*User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.usersByID[id]
	return u, ok
}

// AddUser registers a new user together with a default Savings account.
func (b *Bank) AddUser(firstName, lastName, pin string) (*User, error) {
	digest, err := b.hasher.Digest(pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	userID, err := b.mintUserIdentifier()
	if err != nil {
		return nil, err
	}
	accountID, err := b.mintAccountIdentifier()
	if err != nil {
		return nil, err
	}

	u := &User{
		id:        userID,
		firstName: firstName,
		lastName:  lastName,
		pin:       digest,
		hasher:    b.hasher,
	}
	b.users = append(b.users, u)
	b.usersByID[u.id] = u
	b.registerAccount(newAccount(accountID, AccountNameSavings, u, b.now))

	b.log.WithFields(logrus.Fields{
		"bank":      b.name,
		"userID":    u.id,
		"firstName": firstName,
		"lastName":  lastName,
	}).Info("Bank.AddUser.created")

	return u, nil
}

// OpenAccount mints and registers an additional account for a registered user.
func (b *Bank) OpenAccount(owner *User, name string) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.owns(owner) {
		return nil, ErrUnknownUser
	}
	id, err := b.mintAccountIdentifier()
	if err != nil {
		return nil, err
	}
	a := newAccount(id, name, owner, b.now)
	b.registerAccount(a)

	b.log.WithFields(logrus.Fields{
		"bank":      b.name,
		"userID":    owner.id,
		"accountID": a.id,
		"name":      name,
	}).Info("Bank.OpenAccount.created")

	return a, nil
}

// AddAccount registers an account built with NewAccount. The identifier is
// checked again here because minting does not reserve it.
func (b *Bank) AddAccount(a *Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.owns(a.owner) {
		return ErrUnknownUser
	}
	if _, taken := b.accountsByID[a.id]; taken {
		return fmt.Errorf("%w: account %s", ErrDuplicateIdentifier, a.id)
	}
	b.registerAccount(a)
	return nil
}

// Login returns the user only if both the identifier and the PIN match.
// Every failure is ErrLoginFailed.
func (b *Bank) Login(userID, pin string) (*User, error) {
	u, ok := b.User(userID)
	if !ok {
		b.hasher.Verify(b.decoy, pin)
		return nil, ErrLoginFailed
	}
	if !u.ValidatePin(pin) {
		return nil, ErrLoginFailed
	}
	return u, nil
}

func (b *Bank) owns(u *User) bool {
	if u == nil {
		return false
	}
	registered, ok := b.usersByID[u.id]
	return ok && registered == u
}

// registerAccount must be called with b.mu held.
func (b *Bank) registerAccount(a *Account) {
	b.accounts = append(b.accounts, a)
	b.accountsByID[a.id] = a
	a.owner.addAccount(a)
}

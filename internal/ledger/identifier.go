package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	UserIdentifierLength    = 6
	AccountIdentifierLength = 10

	DefaultMaxIdentifierAttempts = 1000
)

// DigitSource yields uniformly distributed integers in [0, n).
// *math/rand/v2.Rand satisfies it.
type DigitSource interface {
	IntN(n int) int
}

// NewUserIdentifier returns a 6 digit identifier unused by any user of b.
// Nothing is reserved until the user is registered.
func (b *Bank) NewUserIdentifier() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mintUserIdentifier()
}

// NewAccountIdentifier returns a 10 digit identifier unused by any account
// of b. Nothing is reserved until the account is registered.
func (b *Bank) NewAccountIdentifier() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mintAccountIdentifier()
}

func (b *Bank) mintUserIdentifier() (string, error) {
	return b.mint(UserIdentifierLength, func(id string) bool {
		_, taken := b.usersByID[id]
		return taken
	})
}

func (b *Bank) mintAccountIdentifier() (string, error) {
	return b.mint(AccountIdentifierLength, func(id string) bool {
		_, taken := b.accountsByID[id]
		return taken
	})
}

// mint must be called with b.mu held.
func (b *Bank) mint(length int, taken func(string) bool) (string, error) {
	buf := make([]byte, length)
	for attempt := 1; attempt <= b.maxIdentifierAttempts; attempt++ {
		for i := range buf {
			buf[i] = '0' + byte(b.digits.IntN(10))
		}
		id := string(buf)
		if !taken(id) {
			return id, nil
		}
		b.log.WithFields(logrus.Fields{
			"bank":    b.name,
			"length":  length,
			"attempt": attempt,
		}).Debug("Bank.mint.collision")
	}
	return "", fmt.Errorf("%w: %d digit identifier after %d attempts",
		ErrIdentifierSpaceExhausted, length, b.maxIdentifierAttempts)
}

package ledger

import "errors"

var (
	// ErrLoginFailed covers both an unknown user identifier and a wrong PIN.
	ErrLoginFailed = errors.New("login failed")

	ErrAccountIndexOutOfRange   = errors.New("account index out of range")
	ErrIdentifierSpaceExhausted = errors.New("no unused identifier found")
	ErrDuplicateIdentifier      = errors.New("identifier already registered")
	ErrUnknownUser              = errors.New("user is not registered with this bank")
	ErrSameAccount              = errors.New("transfer source and destination are the same account")
)

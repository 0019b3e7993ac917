package service

import (
	"context"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/operator/actions"
)

// actionProcessor runs mutating actions one at a time against the bank.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Service is the session-facing API over one bank. Mutations go through
// the operator; reads go to the bank directly.
type Service struct {
	Bank     *ledger.Bank
	operator actionProcessor
}

// NewService creates a new Service for bank.
func NewService(bank *ledger.Bank, operator actionProcessor) *Service {
	return &Service{
		Bank:     bank,
		operator: operator,
	}
}

// Register creates a user with a default savings account.
func (s *Service) Register(ctx context.Context, firstName, lastName, pin string) (*ledger.User, error) {
	action := &actions.AddUser{
		FirstName: firstName,
		LastName:  lastName,
		Pin:       actions.Secret(pin),
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.User, nil
}

// Login fails with ledger.ErrLoginFailed whatever the cause.
func (s *Service) Login(ctx context.Context, userID, pin string) (*ledger.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Bank.Login(userID, pin)
}

// OpenAccount adds another named account for user.
func (s *Service) OpenAccount(ctx context.Context, user *ledger.User, name string) (*ledger.Account, error) {
	action := &actions.OpenAccount{
		Owner:       user,
		AccountName: name,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Account, nil
}

// AccountSummaries renders the user's accounts in creation order.
func (s *Service) AccountSummaries(user *ledger.User) []string {
	return user.AccountsSummary()
}

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/atm-ledger/internal/ledger"
	"github.com/carson-networks/atm-ledger/internal/service"
)

const (
	historyPageSize = 10

	// registerChoice typed at the user ID prompt starts registration.
	registerChoice = "new"
)

// session is the part of service.Service the console drives.
type session interface {
	Register(ctx context.Context, firstName, lastName, pin string) (*ledger.User, error)
	Login(ctx context.Context, userID, pin string) (*ledger.User, error)
	OpenAccount(ctx context.Context, user *ledger.User, name string) (*ledger.Account, error)
	Deposit(ctx context.Context, user *ledger.User, idx int, amount decimal.Decimal, memo string) (*ledger.Transaction, error)
	Withdraw(ctx context.Context, user *ledger.User, idx int, amount decimal.Decimal, memo string) (*ledger.Transaction, error)
	Transfer(ctx context.Context, user *ledger.User, fromIdx, toIdx int, amount decimal.Decimal, memo string) error
	ListTransactions(ctx context.Context, user *ledger.User, idx int, cursor *service.TransactionCursor) ([]service.Transaction, *service.TransactionCursor, error)
	AccountSummaries(user *ledger.User) []string
}

// errInputClosed ends the session when the reader hits EOF.
var errInputClosed = errors.New("input closed")

// UI is the text ATM front end. It only validates what it reads; every
// ledger rule lives in the core.
type UI struct {
	bankName string
	svc      session
	in       *bufio.Scanner
	out      io.Writer
	logger   *logrus.Logger
}

func NewUI(bankName string, svc session, in io.Reader, out io.Writer, logger *logrus.Logger) *UI {
	return &UI{
		bankName: bankName,
		svc:      svc,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   logger,
	}
}

// Run alternates login and the main menu until the input is exhausted or
// ctx is cancelled.
func (ui *UI) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		user, err := ui.login(ctx)
		if err != nil {
			return ui.finish(err)
		}
		if err := ui.mainMenu(ctx, user); err != nil {
			return ui.finish(err)
		}
	}
}

func (ui *UI) finish(err error) error {
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(ui.out, "\nGoodbye.")
		return nil
	}
	return err
}

func (ui *UI) login(ctx context.Context) (*ledger.User, error) {
	for {
		fmt.Fprintf(ui.out, "\n\nWelcome to %s\n\n", ui.bankName)
		userID, err := ui.prompt(fmt.Sprintf("Enter user ID (or %q to register): ", registerChoice))
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(userID, registerChoice) {
			if err := ui.register(ctx); err != nil {
				return nil, err
			}
			continue
		}
		pin, err := ui.prompt("Enter pin: ")
		if err != nil {
			return nil, err
		}

		user, err := ui.svc.Login(ctx, userID, pin)
		if errors.Is(err, ledger.ErrLoginFailed) {
			fmt.Fprintln(ui.out, "Incorrect user ID/pin combination. Please try again.")
			continue
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
}

func (ui *UI) register(ctx context.Context) error {
	firstName, err := ui.promptRequired("Enter first name: ")
	if err != nil {
		return err
	}
	lastName, err := ui.promptRequired("Enter last name: ")
	if err != nil {
		return err
	}
	pin, err := ui.promptRequired("Choose a pin: ")
	if err != nil {
		return err
	}

	user, err := ui.svc.Register(ctx, firstName, lastName, pin)
	if err != nil {
		return ui.report(err)
	}
	AnnounceUser(ui.out, user)
	return nil
}

// AnnounceUser prints the identifier a new user logs in with.
func AnnounceUser(out io.Writer, user *ledger.User) {
	fmt.Fprintf(out, "New user %s, %s with ID %s created.\n", user.LastName(), user.FirstName(), user.ID())
}

func (ui *UI) mainMenu(ctx context.Context, user *ledger.User) error {
	for {
		ui.printAccountsSummary(user)

		fmt.Fprintf(ui.out, "Welcome %s, what would you like to do?\n", user.FirstName())
		fmt.Fprintln(ui.out, "  1) Show account transaction history")
		fmt.Fprintln(ui.out, "  2) Withdraw")
		fmt.Fprintln(ui.out, "  3) Deposit")
		fmt.Fprintln(ui.out, "  4) Transfer")
		fmt.Fprintln(ui.out, "  5) Open checking account")
		fmt.Fprintln(ui.out, "  6) Quit")
		choice, err := ui.prompt("Enter choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = ui.showHistory(ctx, user)
		case "2":
			err = ui.withdraw(ctx, user)
		case "3":
			err = ui.deposit(ctx, user)
		case "4":
			err = ui.transfer(ctx, user)
		case "5":
			err = ui.openAccount(ctx, user)
		case "6":
			return nil
		default:
			fmt.Fprintln(ui.out, "Invalid choice. Please choose 1-6.")
		}
		if err != nil {
			return err
		}
	}
}

func (ui *UI) printAccountsSummary(user *ledger.User) {
	fmt.Fprintf(ui.out, "\n\n%s's accounts summary\n", user.FirstName())
	for i, line := range ui.svc.AccountSummaries(user) {
		fmt.Fprintf(ui.out, "  %d) %s\n", i+1, line)
	}
	fmt.Fprintln(ui.out)
}

func (ui *UI) showHistory(ctx context.Context, user *ledger.User) error {
	idx, err := ui.chooseAccount(user, "whose transactions you want to see")
	if err != nil {
		return err
	}
	acctID, err := user.AcctID(idx)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.out, "\nTransaction history for account %s\n", acctID)
	cursor := &service.TransactionCursor{Limit: historyPageSize}
	for {
		page, next, err := ui.svc.ListTransactions(ctx, user, idx, cursor)
		if err != nil {
			return err
		}
		for _, t := range page {
			fmt.Fprintln(ui.out, t.Summary)
		}
		if next == nil {
			break
		}
		more, err := ui.prompt("Press enter for more, or q to stop: ")
		if err != nil {
			return err
		}
		if strings.EqualFold(more, "q") {
			break
		}
		cursor = next
	}
	fmt.Fprintln(ui.out)
	return nil
}

func (ui *UI) withdraw(ctx context.Context, user *ledger.User) error {
	idx, err := ui.chooseAccount(user, "to withdraw from")
	if err != nil {
		return err
	}
	amount, err := ui.readAmount(user, idx, "withdraw")
	if err != nil {
		return err
	}
	memo, err := ui.prompt("Enter a memo: ")
	if err != nil {
		return err
	}
	_, err = ui.svc.Withdraw(ctx, user, idx, amount, memo)
	return ui.report(err)
}

func (ui *UI) deposit(ctx context.Context, user *ledger.User) error {
	idx, err := ui.chooseAccount(user, "to deposit in")
	if err != nil {
		return err
	}
	amount, err := ui.readAmount(user, idx, "deposit")
	if err != nil {
		return err
	}
	memo, err := ui.prompt("Enter a memo: ")
	if err != nil {
		return err
	}
	_, err = ui.svc.Deposit(ctx, user, idx, amount, memo)
	return ui.report(err)
}

func (ui *UI) transfer(ctx context.Context, user *ledger.User) error {
	if user.NumAccounts() < 2 {
		fmt.Fprintln(ui.out, "You need at least two accounts to transfer.")
		return nil
	}
	from, err := ui.chooseAccount(user, "to transfer from")
	if err != nil {
		return err
	}
	var to int
	for {
		to, err = ui.chooseAccount(user, "to transfer to")
		if err != nil {
			return err
		}
		if to != from {
			break
		}
		fmt.Fprintln(ui.out, "Choose a different account.")
	}
	amount, err := ui.readAmount(user, from, "transfer")
	if err != nil {
		return err
	}
	return ui.report(ui.svc.Transfer(ctx, user, from, to, amount, ""))
}

func (ui *UI) openAccount(ctx context.Context, user *ledger.User) error {
	account, err := ui.svc.OpenAccount(ctx, user, ledger.AccountNameChecking)
	if err != nil {
		return ui.report(err)
	}
	fmt.Fprintf(ui.out, "Opened account %s.\n", account.ID())
	return nil
}

// report prints a failed core call and keeps the session alive. Context
// errors still end it.
func (ui *UI) report(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	ui.logger.WithError(err).Warn("UI.report")
	fmt.Fprintf(ui.out, "Operation failed: %v\n", err)
	return nil
}

func (ui *UI) chooseAccount(user *ledger.User, purpose string) (int, error) {
	n := user.NumAccounts()
	for {
		raw, err := ui.prompt(fmt.Sprintf("Enter the number (1-%d) of the account %s: ", n, purpose))
		if err != nil {
			return 0, err
		}
		choice, err := strconv.Atoi(raw)
		if err == nil && choice >= 1 && choice <= n {
			return choice - 1, nil
		}
		fmt.Fprintln(ui.out, "Invalid account. Please try again.")
	}
}

// readAmount accepts positive amounts with at most two fraction digits.
func (ui *UI) readAmount(user *ledger.User, idx int, verb string) (decimal.Decimal, error) {
	balance, err := user.AcctBalance(idx)
	if err != nil {
		return decimal.Zero, err
	}
	for {
		raw, err := ui.prompt(fmt.Sprintf("Enter the amount to %s (balance %s): ", verb, ledger.FormatAmount(balance)))
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
		switch {
		case err != nil:
			fmt.Fprintln(ui.out, "Please enter a number, e.g. 12.50.")
		case !amount.IsPositive():
			fmt.Fprintln(ui.out, "Amount must be greater than zero.")
		case !amount.Equal(amount.Truncate(2)):
			fmt.Fprintln(ui.out, "Amount can have at most two decimal places.")
		default:
			return amount, nil
		}
	}
}

func (ui *UI) promptRequired(label string) (string, error) {
	for {
		value, err := ui.prompt(label)
		if err != nil || value != "" {
			return value, err
		}
		fmt.Fprintln(ui.out, "A value is required.")
	}
}

func (ui *UI) prompt(label string) (string, error) {
	fmt.Fprint(ui.out, label)
	if !ui.in.Scan() {
		if err := ui.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(ui.in.Text()), nil
}

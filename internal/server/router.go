// Package server implements the request side of bankd: the action router,
// the per-connection session loop, and the TCP listener with its bounded
// worker pool.
package server

import (
	"errors"
	"strconv"

	"github.com/dkaiser/bankd/internal/bank"
	"github.com/dkaiser/bankd/internal/observability"
)

// Action codes of the wire contract.
const (
	actionListAccounts  = 1
	actionGetAccount    = 2
	actionCreateAccount = 3
	actionCloseAccount  = 4
	actionTransfer      = 5
	actionDeposit       = 6
	actionWithdraw      = 7
)

// Error frames. Codes and messages are fixed; clients match on them.
var (
	errInternal          = nokFrame(0, "Internal error.")
	errAccountNotFound   = nokFrame(1, "Account does not exist.")
	errAccountNotCreated = nokFrame(2, "Account could not be created.")
	errAccountNotClosed  = nokFrame(3, "Account could not be closed.")
	errInactiveAccount   = nokFrame(4, "Inactive account.")
	errAccountOverdraw   = nokFrame(5, "Account overdraw.")
	errIllegalArgument   = nokFrame(6, "Illegal argument.")
	errBadRequest        = nokFrame(7, "Bad request.")
)

func nokFrame(code int, message string) []string {
	return []string{"nok", strconv.Itoa(code), message}
}

// Router maps request frames onto ledger operations. It performs no I/O and
// holds no per-request state; every domain failure comes back as a nok
// frame, never as an error.
type Router struct {
	ledger *bank.Ledger
}

func NewRouter(ledger *bank.Ledger) *Router {
	return &Router{ledger: ledger}
}

// Dispatch routes one request frame and returns the response frame. A
// missing, unparsable or unknown action code yields the bad-request frame,
// as does any field-count or amount-parse failure, before the ledger is
// touched.
func (rt *Router) Dispatch(req []string) []string {
	if len(req) < 1 {
		return errBadRequest
	}
	action, err := strconv.Atoi(req[0])
	if err != nil {
		return errBadRequest
	}

	switch action {
	case actionListAccounts:
		return rt.listAccounts()
	case actionGetAccount:
		return rt.getAccount(req)
	case actionCreateAccount:
		return rt.createAccount(req)
	case actionCloseAccount:
		return rt.closeAccount(req)
	case actionTransfer:
		return rt.transfer(req)
	case actionDeposit:
		return rt.deposit(req)
	case actionWithdraw:
		return rt.withdraw(req)
	default:
		return errBadRequest
	}
}

func (rt *Router) listAccounts() []string {
	resp := []string{"ok"}
	return append(resp, rt.ledger.ActiveNumbers()...)
}

func (rt *Router) getAccount(req []string) []string {
	if len(req) < 2 {
		return errBadRequest
	}
	a, err := rt.ledger.Account(req[1])
	if err != nil {
		return errAccountNotFound
	}
	return accountFrame(a)
}

func (rt *Router) createAccount(req []string) []string {
	if len(req) < 2 {
		return errBadRequest
	}
	a, err := rt.ledger.CreateAccount(req[1])
	if err != nil {
		return errAccountNotCreated
	}
	observability.RecordAccountCreated()
	return accountFrame(a)
}

func (rt *Router) closeAccount(req []string) []string {
	if len(req) < 2 {
		return errBadRequest
	}
	// Every close failure maps to one wire code, not-found included.
	if err := rt.ledger.CloseAccount(req[1]); err != nil {
		return errAccountNotClosed
	}
	return []string{"ok"}
}

func (rt *Router) transfer(req []string) []string {
	if len(req) < 4 {
		return errBadRequest
	}
	amount, err := parseAmount(req[3])
	if err != nil {
		return errBadRequest
	}
	fromBalance, toBalance, err := rt.ledger.Transfer(req[1], req[2], amount)
	if err != nil {
		return nokFor(err)
	}
	return []string{"ok", formatAmount(fromBalance), formatAmount(toBalance)}
}

func (rt *Router) deposit(req []string) []string {
	if len(req) < 3 {
		return errBadRequest
	}
	amount, err := parseAmount(req[2])
	if err != nil {
		return errBadRequest
	}
	balance, err := rt.ledger.Deposit(req[1], amount)
	if err != nil {
		return nokFor(err)
	}
	return []string{"ok", formatAmount(balance)}
}

func (rt *Router) withdraw(req []string) []string {
	if len(req) < 3 {
		return errBadRequest
	}
	amount, err := parseAmount(req[2])
	if err != nil {
		return errBadRequest
	}
	balance, err := rt.ledger.Withdraw(req[1], amount)
	if err != nil {
		return nokFor(err)
	}
	return []string{"ok", formatAmount(balance)}
}

// nokFor translates a ledger error into its wire error frame.
func nokFor(err error) []string {
	switch {
	case errors.Is(err, bank.ErrAccountNotFound):
		return errAccountNotFound
	case errors.Is(err, bank.ErrInactiveAccount):
		return errInactiveAccount
	case errors.Is(err, bank.ErrOverdraw):
		return errAccountOverdraw
	case errors.Is(err, bank.ErrIllegalAmount):
		return errIllegalArgument
	default:
		return errInternal
	}
}

func accountFrame(a bank.Account) []string {
	return []string{"ok", a.Number(), a.Owner(), formatAmount(a.Balance()), activeFlag(a.Active())}
}

func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func activeFlag(active bool) string {
	if active {
		return "1"
	}
	return "0"
}

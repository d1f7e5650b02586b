// Package bank implements the in-memory ledger: the authoritative account
// table and the atomic operations on it. All balance and activity mutations
// share one exclusion domain (the ledger mutex), so a transfer's compound
// check-then-act across two accounts can never interleave with a deposit,
// withdrawal or close on either of them. Accounts untouched by an in-flight
// transfer still wait on it; that serialization is an accepted throughput
// ceiling in exchange for whole-ledger atomicity.
package bank

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultMaxAccounts caps the account table to bound memory use.
const DefaultMaxAccounts = 500

const (
	numberPrefix = "CH56"
	numberSeed   = 100_000_000_000_000_000
)

// Ledger owns the account table and is the only component that inserts
// into it.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*Account
	created  int
	limit    int

	nextNumber atomic.Uint64
}

// NewLedger builds an empty ledger holding at most maxAccounts accounts.
// Non-positive maxAccounts falls back to DefaultMaxAccounts.
func NewLedger(maxAccounts int) *Ledger {
	if maxAccounts <= 0 {
		maxAccounts = DefaultMaxAccounts
	}
	l := &Ledger{
		accounts: make(map[string]*Account),
		limit:    maxAccounts,
	}
	l.nextNumber.Store(numberSeed)
	return l
}

// newNumber allocates a fresh account number: a fixed prefix plus an
// atomically incremented counter, unique and monotonic per process.
func (l *Ledger) newNumber() string {
	return fmt.Sprintf("%s%d", numberPrefix, l.nextNumber.Add(1)-1)
}

// ActiveNumbers returns a snapshot of the active accounts' numbers, in no
// particular order. Closed accounts stay in the table but are excluded.
func (l *Ledger) ActiveNumbers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.accounts))
	for number, a := range l.accounts {
		if a.active {
			out = append(out, number)
		}
	}
	return out
}

// Account returns a snapshot of the account with the given number.
func (l *Ledger) Account(number string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[number]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *a, nil
}

// CreateAccount allocates a new active account with balance zero for owner.
// The capacity check and the insert run under the ledger mutex, so the cap
// holds exactly even under concurrent creation bursts.
func (l *Ledger) CreateAccount(owner string) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.created >= l.limit {
		return Account{}, ErrAccountLimit
	}
	a := &Account{number: l.newNumber(), owner: owner, active: true}
	l.accounts[a.number] = a
	l.created++
	return *a, nil
}

// CloseAccount deactivates an account. It fails if the account does not
// exist, is already inactive, or still carries a balance. Closing shares
// the exclusion domain with balance mutation, so a deposit racing a close
// can never leave the account both inactive and non-zero.
func (l *Ledger) CloseAccount(number string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[number]
	if !ok {
		return ErrAccountNotFound
	}
	return a.close()
}

// Deposit adds amount to the account and returns the resulting balance.
func (l *Ledger) Deposit(number string, amount float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[number]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if err := a.deposit(amount); err != nil {
		return 0, err
	}
	return a.balance, nil
}

// Withdraw removes amount from the account and returns the resulting
// balance.
func (l *Ledger) Withdraw(number string, amount float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[number]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if err := a.withdraw(amount); err != nil {
		return 0, err
	}
	return a.balance, nil
}

// Transfer moves amount between two accounts as one atomic unit and
// returns both resulting balances. No observer can see the withdrawal
// without the matching deposit: both happen under the same critical
// section that validated them.
func (l *Ledger) Transfer(from, to string, amount float64) (fromBalance, toBalance float64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts[from]
	if !ok {
		return 0, 0, ErrAccountNotFound
	}
	dst, ok := l.accounts[to]
	if !ok {
		return 0, 0, ErrAccountNotFound
	}

	if amount < 0 {
		return 0, 0, ErrIllegalAmount
	}
	if !src.active || !dst.active {
		return 0, 0, ErrInactiveAccount
	}
	if src.balance < amount {
		return 0, 0, ErrOverdraw
	}

	// Preconditions established above; mutate both sides together.
	src.balance -= amount
	dst.balance += amount
	return src.balance, dst.balance, nil
}

package bank

// Account is one ledger account. Number and owner are immutable after
// creation; balance and the active flag change only inside the owning
// Ledger's exclusion domain. The Ledger hands out value copies, so an
// Account held by a caller is a point-in-time snapshot.
type Account struct {
	number  string
	owner   string
	balance float64
	active  bool
}

func (a Account) Number() string   { return a.number }
func (a Account) Owner() string    { return a.owner }
func (a Account) Balance() float64 { return a.balance }
func (a Account) Active() bool     { return a.active }

// deposit adds amount to the balance. Caller holds the ledger mutex.
func (a *Account) deposit(amount float64) error {
	if amount < 0 {
		return ErrIllegalAmount
	}
	if !a.active {
		return ErrInactiveAccount
	}
	a.balance += amount
	return nil
}

// withdraw removes amount from the balance. The overdraw check runs before
// the activity check, matching the wire contract's error precedence.
// Caller holds the ledger mutex.
func (a *Account) withdraw(amount float64) error {
	if amount < 0 {
		return ErrIllegalAmount
	}
	if amount > a.balance {
		return ErrOverdraw
	}
	if !a.active {
		return ErrInactiveAccount
	}
	a.balance -= amount
	return nil
}

// close deactivates the account. The transition is one-way; a closed
// account never becomes active again. Caller holds the ledger mutex.
func (a *Account) close() error {
	if !a.active {
		return ErrInactiveAccount
	}
	if a.balance != 0 {
		return ErrBalanceNotZero
	}
	a.active = false
	return nil
}

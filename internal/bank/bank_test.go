package bank

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func createAccount(t *testing.T, l *Ledger, owner string) Account {
	t.Helper()
	a, err := l.CreateAccount(owner)
	if err != nil {
		t.Fatalf("create account for %q: %v", owner, err)
	}
	return a
}

func TestCreateAccount(t *testing.T) {
	l := NewLedger(0)

	a := createAccount(t, l, "Ann")
	if a.Owner() != "Ann" {
		t.Fatalf("unexpected owner: %q", a.Owner())
	}
	if a.Balance() != 0 {
		t.Fatalf("new account balance: %v", a.Balance())
	}
	if !a.Active() {
		t.Fatalf("new account not active")
	}
	if !strings.HasPrefix(a.Number(), "CH56") {
		t.Fatalf("unexpected number: %q", a.Number())
	}

	b := createAccount(t, l, "Bob")
	if a.Number() == b.Number() {
		t.Fatalf("duplicate account number: %q", a.Number())
	}
	if b.Number() <= a.Number() {
		t.Fatalf("numbers not monotonic: %q then %q", a.Number(), b.Number())
	}
}

func TestCreateAccountLimit(t *testing.T) {
	l := NewLedger(3)
	for i := 0; i < 3; i++ {
		createAccount(t, l, "owner")
	}
	if _, err := l.CreateAccount("overflow"); !errors.Is(err, ErrAccountLimit) {
		t.Fatalf("expected ErrAccountLimit, got %v", err)
	}
}

func TestConcurrentCreateUniqueNumbers(t *testing.T) {
	const n = 200
	l := NewLedger(n)

	numbers := make(chan string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			a, err := l.CreateAccount("owner")
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			numbers <- a.Number()
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate number under concurrent creation: %q", number)
		}
		seen[number] = true
	}
	if len(seen) != n {
		t.Fatalf("created %d accounts, want %d", len(seen), n)
	}
}

func TestActiveNumbersExcludesClosed(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")
	b := createAccount(t, l, "Bob")

	if err := l.CloseAccount(a.Number()); err != nil {
		t.Fatalf("close: %v", err)
	}

	active := l.ActiveNumbers()
	if len(active) != 1 || active[0] != b.Number() {
		t.Fatalf("unexpected active numbers: %+v", active)
	}

	// Closed accounts stay queryable.
	got, err := l.Account(a.Number())
	if err != nil {
		t.Fatalf("lookup closed account: %v", err)
	}
	if got.Active() {
		t.Fatalf("closed account reported active")
	}
}

func TestAccountNotFound(t *testing.T) {
	l := NewLedger(0)
	if _, err := l.Account("CH56000"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := l.Deposit("CH56000", 1); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := l.CloseAccount("CH56000"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestDeposit(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")

	balance, err := l.Deposit(a.Number(), 100)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if balance != 100 {
		t.Fatalf("balance after deposit: %v", balance)
	}

	if _, err := l.Deposit(a.Number(), -1); !errors.Is(err, ErrIllegalAmount) {
		t.Fatalf("expected ErrIllegalAmount, got %v", err)
	}
	if got, _ := l.Account(a.Number()); got.Balance() != 100 {
		t.Fatalf("failed deposit mutated balance: %v", got.Balance())
	}
}

func TestWithdraw(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")
	if _, err := l.Deposit(a.Number(), 100); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	balance, err := l.Withdraw(a.Number(), 30)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if balance != 70 {
		t.Fatalf("balance after withdraw: %v", balance)
	}

	if _, err := l.Withdraw(a.Number(), 150); !errors.Is(err, ErrOverdraw) {
		t.Fatalf("expected ErrOverdraw, got %v", err)
	}
	if _, err := l.Withdraw(a.Number(), -5); !errors.Is(err, ErrIllegalAmount) {
		t.Fatalf("expected ErrIllegalAmount, got %v", err)
	}
	if got, _ := l.Account(a.Number()); got.Balance() != 70 {
		t.Fatalf("failed withdraw mutated balance: %v", got.Balance())
	}
}

func TestInactiveAccountRejectsMutation(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")
	if err := l.CloseAccount(a.Number()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := l.Deposit(a.Number(), 10); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
	// Zero withdrawal passes the overdraw check, so the activity check
	// must still reject it.
	if _, err := l.Withdraw(a.Number(), 0); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestCloseAccount(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")
	if _, err := l.Deposit(a.Number(), 50); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := l.CloseAccount(a.Number()); !errors.Is(err, ErrBalanceNotZero) {
		t.Fatalf("expected ErrBalanceNotZero, got %v", err)
	}
	if got, _ := l.Account(a.Number()); !got.Active() {
		t.Fatalf("failed close deactivated account")
	}

	if _, err := l.Withdraw(a.Number(), 50); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := l.CloseAccount(a.Number()); err != nil {
		t.Fatalf("close with zero balance: %v", err)
	}
	if err := l.CloseAccount(a.Number()); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount on double close, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")
	b := createAccount(t, l, "Bob")
	if _, err := l.Deposit(a.Number(), 100); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	fromBalance, toBalance, err := l.Transfer(a.Number(), b.Number(), 50)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if fromBalance != 50 || toBalance != 50 {
		t.Fatalf("balances after transfer: from=%v to=%v", fromBalance, toBalance)
	}

	if _, _, err := l.Transfer(a.Number(), b.Number(), 500); !errors.Is(err, ErrOverdraw) {
		t.Fatalf("expected ErrOverdraw, got %v", err)
	}
	if _, _, err := l.Transfer(a.Number(), b.Number(), -1); !errors.Is(err, ErrIllegalAmount) {
		t.Fatalf("expected ErrIllegalAmount, got %v", err)
	}
	if _, _, err := l.Transfer(a.Number(), "CH56000", 1); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	if err := l.CloseAccount(b.Number()); err == nil {
		t.Fatalf("expected close failure on non-zero balance")
	}
	if _, err := l.Withdraw(b.Number(), 50); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := l.CloseAccount(b.Number()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, _, err := l.Transfer(a.Number(), b.Number(), 1); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}

	// Failed transfers must not move money.
	got, _ := l.Account(a.Number())
	if got.Balance() != 50 {
		t.Fatalf("failed transfers mutated source balance: %v", got.Balance())
	}
}

func TestConcurrentDepositsNoLostUpdates(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")

	const n = 2000
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.Deposit(a.Number(), 1); err != nil {
				t.Errorf("deposit: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := l.Account(a.Number())
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Balance() != n {
		t.Fatalf("lost updates: balance=%v want=%d", got.Balance(), n)
	}
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	l := NewLedger(0)
	a := createAccount(t, l, "Ann")
	b := createAccount(t, l, "Bob")
	if _, err := l.Deposit(a.Number(), 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := l.Deposit(b.Number(), 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	const n = 500
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, _, err := l.Transfer(a.Number(), b.Number(), 1); err != nil {
				t.Errorf("transfer a->b: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, _, err := l.Transfer(b.Number(), a.Number(), 1); err != nil {
				t.Errorf("transfer b->a: %v", err)
			}
		}()
	}
	wg.Wait()

	ga, _ := l.Account(a.Number())
	gb, _ := l.Account(b.Number())
	if ga.Balance() < 0 || gb.Balance() < 0 {
		t.Fatalf("negative balance: a=%v b=%v", ga.Balance(), gb.Balance())
	}
	if total := ga.Balance() + gb.Balance(); total != 2000 {
		t.Fatalf("total not conserved: %v", total)
	}
}

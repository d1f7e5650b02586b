package bank

import "errors"

var (
	ErrAccountNotFound = errors.New("bank: account does not exist")
	ErrAccountLimit    = errors.New("bank: account limit reached")
	ErrInactiveAccount = errors.New("bank: inactive account")
	ErrOverdraw        = errors.New("bank: account overdraw")
	ErrIllegalAmount   = errors.New("bank: negative amount not allowed")
	ErrBalanceNotZero  = errors.New("bank: balance not zero")
)

package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates an amount that does not parse as a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates a zero or negative amount.
	ErrNegativeAmount = errors.New("negative amount")
)

// Operation is the kind of a balance mutation. It doubles as the
// transaction strategy: each kind defines one pure balance transform.
type Operation string

// Constants for all supported operations.
const (
	OperationDeposit  Operation = "deposit"
	OperationWithdraw Operation = "withdraw"
)

// TransferResult holds both accounts of a committed transfer.
type TransferResult struct {
	Origin      Account `json:"origin"`
	Destination Account `json:"destination"`
}

// Apply transforms the account balance in place according to the operation kind.
//
// Deposit always succeeds. Withdraw fails with ErrInsufficientBalance and
// leaves the balance unchanged if it exceeds the current balance. Apply has
// no side effects beyond the passed account value.
func (op Operation) Apply(a *Account, amount decimal.Decimal) error {
	switch op {
	case OperationWithdraw:
		if a.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		a.Balance = a.Balance.Sub(amount)
	case OperationDeposit:
		a.Balance = a.Balance.Add(amount)
	}

	return nil
}

// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// DefaultOpeningBalance is the balance assigned to new accounts
// when the caller does not supply one.
var DefaultOpeningBalance = decimal.NewFromInt(1000)

// Account holds the balance and descriptive metadata of a single ledger account.
type Account struct {
	Number     string          `json:"number"`
	Balance    decimal.Decimal `json:"balance"`
	HolderName string          `json:"holder_name"`
	BankName   string          `json:"bank_name"`
	CreatedAt  time.Time       `json:"created_at"`
}

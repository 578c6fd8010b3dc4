// Package memledger provides an in-memory account repository.
//
// It backs the interactive shell and the test suites. Point operations are
// individually atomic, which is all the mutation engine requires from a store.
package memledger

import (
	"context"
	"sync"
	"time"

	"github.com/go-bank/ledger/internal/domain"
)

// Repo stores accounts in a map keyed by account number.
type Repo struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewRepo returns an empty in-memory repository.
func NewRepo() *Repo {
	return &Repo{
		accounts: make(map[string]domain.Account),
	}
}

// FindByNumber returns the account with the given number.
func (r *Repo) FindByNumber(ctx context.Context, number string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// Save inserts the account or replaces the stored record with the same number.
func (r *Repo) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.accounts[account.Number]; ok {
		account.CreatedAt = stored.CreatedAt
	} else if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	r.accounts[account.Number] = account

	return account, nil
}

// DeleteByNumber removes the account with the given number.
func (r *Repo) DeleteByNumber(ctx context.Context, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[number]; !ok {
		return domain.ErrAccountNotFound
	}

	delete(r.accounts, number)

	return nil
}

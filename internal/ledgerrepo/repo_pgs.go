// Package ledgerrepo manages the postgres repository layer of accounts.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/go-bank/ledger/internal/domain"
	"github.com/go-bank/ledger/pkg/dbpkg"
	"github.com/go-bank/ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const findQuery = `
SELECT
	number, balance, holder_name, bank_name, created_at
FROM accounts
WHERE number = $1
`

// FindByNumber returns the account with the given number.
func (r *RepoPGS) FindByNumber(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, findQuery, number)

	var a domain.Account

	err := row.Scan(
		&a.Number,
		&a.Balance,
		&a.HolderName,
		&a.BankName,
		&a.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const saveQuery = `
INSERT INTO
    accounts (number, balance, holder_name, bank_name)
VALUES
    ($1, $2, $3, $4)
ON CONFLICT (number) DO UPDATE
SET balance = EXCLUDED.balance
RETURNING number, balance, holder_name, bank_name, created_at
`

// Save inserts the account or updates its balance if the number already exists.
func (r *RepoPGS) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, saveQuery,
		account.Number,
		account.Balance,
		account.HolderName,
		account.BankName,
	)

	var a domain.Account

	err := row.Scan(
		&a.Number,
		&a.Balance,
		&a.HolderName,
		&a.BankName,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE number = $1
`

// DeleteByNumber removes the account with the given number.
func (r *RepoPGS) DeleteByNumber(ctx context.Context, number string) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, number)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	rows, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if rows == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-bank/ledger/internal/domain"
	"github.com/go-bank/ledger/internal/ledgerrepo"
	"github.com/go-bank/ledger/pkg/configpkg"
	"github.com/go-bank/ledger/pkg/dbpkg"
	"github.com/go-bank/ledger/pkg/randompkg"
)

// SetupDB sets up connection with database for testing and then cleans it.
//
// Tests are skipped when the database is unreachable.
func SetupDB(t *testing.T) *sql.DB {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Skipf("cannot load config: %v", err)
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		t.Skipf("database not available: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SeedAccount creates a random account with the given balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, balance decimal.Decimal) domain.Account {
	t.Helper()

	account := domain.Account{
		Number:     randompkg.AccountNumber(),
		Balance:    balance,
		HolderName: randompkg.HolderName(),
		BankName:   randompkg.BankName(),
	}

	repo := ledgerrepo.NewRepoPGS(db)

	saved, err := repo.Save(context.Background(), account)
	if err != nil {
		t.Fatalf("repo.Save(context.Background(), %+v) returned error: %v", account, err)
	}

	return saved
}

// Command shell runs an interactive ledger session backed by the in-memory store.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/go-bank/ledger/internal/bankservice"
	"github.com/go-bank/ledger/internal/domain"
	"github.com/go-bank/ledger/internal/memledger"
)

const help = `commands:
  create <holder> <bank> [balance]   create an account
  get <number>                       show an account
  balance <number>                   show an account balance
  delete <number>                    delete an account
  deposit <number> <amount>          deposit into an account
  withdraw <number> <amount>         withdraw from an account
  transfer <origin> <dest> <amount>  move money between accounts
  help                               show this message
  quit                               exit`

func main() {
	service := bankservice.New(memledger.NewRepo(), 1, nil)
	ctx := context.Background()

	fmt.Println(help)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}

		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		if args[0] == "quit" || args[0] == "exit" {
			break
		}

		if err := run(ctx, service, args); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func run(ctx context.Context, service *bankservice.Service, args []string) error {
	switch args[0] {
	case "help":
		fmt.Println(help)

	case "create":
		if len(args) < 3 {
			return fmt.Errorf("usage: create <holder> <bank> [balance]")
		}

		balance := domain.DefaultOpeningBalance

		if len(args) > 3 {
			var err error

			balance, err = decimal.NewFromString(args[3])
			if err != nil {
				return domain.ErrInvalidAmount
			}
		}

		account, err := service.CreateAccount(ctx, args[1], args[2], balance)
		if err != nil {
			return err
		}

		printAccount(account)

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get <number>")
		}

		account, err := service.GetAccount(ctx, args[1])
		if err != nil {
			return err
		}

		printAccount(account)

	case "balance":
		if len(args) != 2 {
			return fmt.Errorf("usage: balance <number>")
		}

		balance, err := service.GetBalance(ctx, args[1])
		if err != nil {
			return err
		}

		fmt.Println(balance)

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: delete <number>")
		}

		if err := service.DeleteAccount(ctx, args[1]); err != nil {
			return err
		}

		fmt.Println("deleted", args[1])

	case "deposit", "withdraw":
		if len(args) != 3 {
			return fmt.Errorf("usage: %s <number> <amount>", args[0])
		}

		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}

		var account domain.Account

		if args[0] == "deposit" {
			account, err = service.Deposit(ctx, args[1], amount)
		} else {
			account, err = service.Withdraw(ctx, args[1], amount)
		}

		if err != nil {
			return err
		}

		printAccount(account)

	case "transfer":
		if len(args) != 4 {
			return fmt.Errorf("usage: transfer <origin> <dest> <amount>")
		}

		amount, err := parseAmount(args[3])
		if err != nil {
			return err
		}

		result, err := service.Transfer(ctx, args[1], args[2], amount)
		if err != nil {
			return err
		}

		printAccount(result.Origin)
		printAccount(result.Destination)

	default:
		return fmt.Errorf("unknown command %q, try help", args[0])
	}

	return nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, domain.ErrNegativeAmount
	}

	return amount, nil
}

func printAccount(account domain.Account) {
	fmt.Printf("%s  holder=%q bank=%q balance=%s\n",
		account.Number, account.HolderName, account.BankName, account.Balance)
}

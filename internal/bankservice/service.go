// Package bankservice manages business logic layer of accounts and balance mutations.
//
// Every deposit, withdraw and transfer runs through a bounded worker pool and
// a single engine-wide mutex spanning lookup, strategy application and
// persistence. That region is what guarantees read-modify-write atomicity:
// conflicting mutations never interleave and a transfer is never observable
// half-applied. Audit observers are notified only after the region is
// released, so a slow observer cannot block other operations.
package bankservice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-bank/ledger/internal/domain"
	"github.com/go-bank/ledger/pkg/metricspkg"
)

// Repo provides data access layer interface needed by the bank service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package bankservice
type Repo interface {
	FindByNumber(ctx context.Context, number string) (domain.Account, error)
	Save(ctx context.Context, account domain.Account) (domain.Account, error)
	DeleteByNumber(ctx context.Context, number string) error
}

// Observer receives a notification for every committed deposit or withdraw leg.
//
// Observers run outside the serialized region and must not assume the account
// still holds the notified balance by the time they are invoked.
type Observer interface {
	OnTransaction(number string, operation domain.Operation, amount decimal.Decimal)
}

// Service facilitates bank service layer logic.
type Service struct {
	repo      Repo
	metrics   *metricspkg.Collector
	workers   chan struct{}
	mu        sync.Mutex
	observers []Observer
}

// New returns a bank service with a worker pool of the given capacity.
func New(repo Repo, workerCapacity int, metrics *metricspkg.Collector, observers ...Observer) *Service {
	if workerCapacity < 1 {
		workerCapacity = 1
	}

	return &Service{
		repo:      repo,
		metrics:   metrics,
		workers:   make(chan struct{}, workerCapacity),
		observers: observers,
	}
}

// AddObserver attaches an audit observer. Not safe to call once the service
// is handling requests.
func (s *Service) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// CreateAccount persists a new account with a fresh number and returns the stored record.
func (s *Service) CreateAccount(ctx context.Context, holderName, bankName string, balance decimal.Decimal) (domain.Account, error) {
	account := domain.Account{
		Number:     uuid.NewString(),
		Balance:    balance,
		HolderName: holderName,
		BankName:   bankName,
	}

	created, err := s.repo.Save(ctx, account)
	if err != nil {
		return domain.Account{}, err
	}

	return created, nil
}

// DeleteAccount removes the account with the given number.
func (s *Service) DeleteAccount(ctx context.Context, number string) error {
	if _, err := s.repo.FindByNumber(ctx, number); err != nil {
		return err
	}

	return s.repo.DeleteByNumber(ctx, number)
}

// GetAccount returns the account with the given number.
func (s *Service) GetAccount(ctx context.Context, number string) (domain.Account, error) {
	return s.repo.FindByNumber(ctx, number)
}

// GetBalance returns the balance of the account with the given number.
func (s *Service) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	account, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return account.Balance, nil
}

// Deposit adds the amount to the account balance and returns the updated account.
func (s *Service) Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error) {
	return s.mutate(ctx, domain.OperationDeposit, number, amount)
}

// Withdraw subtracts the amount from the account balance and returns the updated account.
func (s *Service) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error) {
	return s.mutate(ctx, domain.OperationWithdraw, number, amount)
}

func (s *Service) mutate(ctx context.Context, op domain.Operation, number string, amount decimal.Decimal) (domain.Account, error) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	start := time.Now()

	account, err := s.applyLocked(ctx, op, number, amount)

	s.recordTransaction(string(op), start, err)

	if err != nil {
		return domain.Account{}, err
	}

	s.notify(ctx, account.Number, op, amount)

	return account, nil
}

func (s *Service) applyLocked(ctx context.Context, op domain.Operation, number string, amount decimal.Decimal) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return domain.Account{}, err
	}

	if err := op.Apply(&account, amount); err != nil {
		return domain.Account{}, err
	}

	return s.repo.Save(ctx, account)
}

// Transfer moves the amount from the origin account to the destination account.
//
// Both accounts are looked up, mutated and saved inside one serialized
// region. A domain failure on either leg leaves both accounts unchanged.
func (s *Service) Transfer(ctx context.Context, origin, destination string, amount decimal.Decimal) (domain.TransferResult, error) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	start := time.Now()

	result, err := s.transferLocked(ctx, origin, destination, amount)

	s.recordTransaction("transfer", start, err)

	if err != nil {
		return domain.TransferResult{}, err
	}

	s.notify(ctx, result.Origin.Number, domain.OperationWithdraw, amount)
	s.notify(ctx, result.Destination.Number, domain.OperationDeposit, amount)

	return result, nil
}

func (s *Service) transferLocked(ctx context.Context, origin, destination string, amount decimal.Decimal) (domain.TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result domain.TransferResult

	originAccount, err := s.repo.FindByNumber(ctx, origin)
	if err != nil {
		return result, err
	}

	destinationAccount, err := s.repo.FindByNumber(ctx, destination)
	if err != nil {
		return result, err
	}

	if err := domain.OperationWithdraw.Apply(&originAccount, amount); err != nil {
		return result, err
	}

	if err := domain.OperationDeposit.Apply(&destinationAccount, amount); err != nil {
		return result, err
	}

	result.Origin, err = s.repo.Save(ctx, originAccount)
	if err != nil {
		return result, err
	}

	result.Destination, err = s.repo.Save(ctx, destinationAccount)
	if err != nil {
		return result, err
	}

	return result, nil
}

func (s *Service) recordTransaction(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}

	s.metrics.RecordTransaction(operation, time.Since(start), err == nil)
}

// notify informs every attached observer about a committed leg. Observer
// panics are isolated so one failing observer affects neither the others nor
// the returned result.
func (s *Service) notify(ctx context.Context, number string, op domain.Operation, amount decimal.Decimal) {
	l := zerolog.Ctx(ctx)

	for _, o := range s.observers {
		func(o Observer) {
			defer func() {
				if r := recover(); r != nil {
					l.Error().Interface("recovered", r).Msg("audit observer failed")
				}
			}()

			o.OnTransaction(number, op, amount)
		}(o)
	}
}

package bankservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-bank/ledger/internal/domain"
	"github.com/go-bank/ledger/internal/memledger"
	"github.com/go-bank/ledger/pkg/errorspkg"
	"github.com/go-bank/ledger/pkg/randompkg"
)

type observerFunc func(number string, op domain.Operation, amount decimal.Decimal)

func (f observerFunc) OnTransaction(number string, op domain.Operation, amount decimal.Decimal) {
	f(number, op, amount)
}

func randomAccount(balance string) domain.Account {
	return domain.Account{
		Number:     randompkg.AccountNumber(),
		Balance:    decimal.RequireFromString(balance),
		HolderName: randompkg.HolderName(),
		BankName:   randompkg.BankName(),
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreateAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo, 1, nil)

	holder := randompkg.HolderName()
	bank := randompkg.BankName()
	balance := decimal.RequireFromString("1000")

	var saved domain.Account

	repo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Times(1).
		DoAndReturn(func(_ context.Context, a domain.Account) (domain.Account, error) {
			saved = a
			saved.CreatedAt = time.Now().UTC()
			return saved, nil
		})

	created, err := service.CreateAccount(context.Background(), holder, bank, balance)
	require.NoError(t, err)
	require.Equal(t, saved, created)
	require.Equal(t, holder, created.HolderName)
	require.Equal(t, bank, created.BankName)
	require.True(t, created.Balance.Equal(balance))

	_, err = uuid.Parse(created.Number)
	require.NoError(t, err)
}

func TestCreateAccountRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	service := New(repo, 1, nil)

	repo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Times(1).
		Return(domain.Account{}, errorspkg.ErrInternal)

	_, err := service.CreateAccount(context.Background(), randompkg.HolderName(), randompkg.BankName(), decimal.Zero)
	require.ErrorIs(t, err, errorspkg.ErrInternal)
}

func TestDeleteAccount(t *testing.T) {
	account := randomAccount("1000")

	testCases := []struct {
		name       string
		buildStubs func(repo *MockRepo)
		wantErr    error
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					DeleteByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(nil)
			},
		},
		{
			name: "AccountNotFound",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().
					DeleteByNumber(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			err := New(repo, 1, nil).DeleteAccount(context.Background(), account.Number)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := randomAccount("1000")
	repo := NewMockRepo(ctrl)
	service := New(repo, 1, nil)

	repo.EXPECT().
		FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
		Times(1).
		Return(account, nil)

	got, err := service.GetAccount(context.Background(), account.Number)
	require.NoError(t, err)
	require.Equal(t, account, got)
}

func TestGetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := randomAccount("4000")
	repo := NewMockRepo(ctrl)
	service := New(repo, 1, nil)

	repo.EXPECT().
		FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
		Times(1).
		Return(account, nil)

	balance, err := service.GetBalance(context.Background(), account.Number)
	require.NoError(t, err)
	require.True(t, balance.Equal(account.Balance))

	repo.EXPECT().
		FindByNumber(gomock.Any(), gomock.Any()).
		Times(1).
		Return(domain.Account{}, domain.ErrAccountNotFound)

	_, err = service.GetBalance(context.Background(), randompkg.AccountNumber())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDeposit(t *testing.T) {
	account := randomAccount("1000")
	amount := decimal.RequireFromString("5000")

	deposited := account
	deposited.Balance = account.Balance.Add(amount)

	testCases := []struct {
		name              string
		buildStubs        func(repo *MockRepo, observer *MockObserver)
		wantErr           error
		wantBalance       decimal.Decimal
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo, observer *MockObserver) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					Save(gomock.Any(), gomock.Eq(deposited)).
					Times(1).
					Return(deposited, nil)
				observer.EXPECT().
					OnTransaction(gomock.Eq(account.Number), gomock.Eq(domain.OperationDeposit), gomock.Eq(amount)).
					Times(1)
			},
			wantBalance: deposited.Balance,
		},
		{
			name: "AccountNotFound",
			buildStubs: func(repo *MockRepo, observer *MockObserver) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Times(0)
				observer.EXPECT().
					OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "SaveInternalError",
			buildStubs: func(repo *MockRepo, observer *MockObserver) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
				observer.EXPECT().
					OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			observer := NewMockObserver(ctrl)
			tc.buildStubs(repo, observer)

			got, err := New(repo, 1, nil, observer).Deposit(context.Background(), account.Number, amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.True(t, got.Balance.Equal(tc.wantBalance))
		})
	}
}

func TestWithdraw(t *testing.T) {
	account := randomAccount("5000")
	amount := decimal.RequireFromString("1000")

	withdrawn := account
	withdrawn.Balance = account.Balance.Sub(amount)

	testCases := []struct {
		name        string
		amount      decimal.Decimal
		buildStubs  func(repo *MockRepo, observer *MockObserver)
		wantErr     error
		wantBalance decimal.Decimal
	}{
		{
			name:   "OK",
			amount: amount,
			buildStubs: func(repo *MockRepo, observer *MockObserver) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					Save(gomock.Any(), gomock.Eq(withdrawn)).
					Times(1).
					Return(withdrawn, nil)
				observer.EXPECT().
					OnTransaction(gomock.Eq(account.Number), gomock.Eq(domain.OperationWithdraw), gomock.Eq(amount)).
					Times(1)
			},
			wantBalance: withdrawn.Balance,
		},
		{
			name:   "InsufficientBalance",
			amount: account.Balance.Add(decimal.New(1, -2)),
			buildStubs: func(repo *MockRepo, observer *MockObserver) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(account, nil)
				repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Times(0)
				observer.EXPECT().
					OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantErr: domain.ErrInsufficientBalance,
		},
		{
			name:   "AccountNotFound",
			amount: amount,
			buildStubs: func(repo *MockRepo, observer *MockObserver) {
				repo.EXPECT().
					FindByNumber(gomock.Any(), gomock.Eq(account.Number)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					Times(0)
				observer.EXPECT().
					OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			observer := NewMockObserver(ctrl)
			tc.buildStubs(repo, observer)

			got, err := New(repo, 1, nil, observer).Withdraw(context.Background(), account.Number, tc.amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.True(t, got.Balance.Equal(tc.wantBalance))
		})
	}
}

func TestTransfer(t *testing.T) {
	amount := decimal.RequireFromString("1000")

	t.Run("OK", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		origin := randomAccount("5000")
		destination := randomAccount("5000")

		originAfter := origin
		originAfter.Balance = origin.Balance.Sub(amount)
		destinationAfter := destination
		destinationAfter.Balance = destination.Balance.Add(amount)

		repo := NewMockRepo(ctrl)
		observer := NewMockObserver(ctrl)

		gomock.InOrder(
			repo.EXPECT().
				FindByNumber(gomock.Any(), gomock.Eq(origin.Number)).
				Return(origin, nil),
			repo.EXPECT().
				FindByNumber(gomock.Any(), gomock.Eq(destination.Number)).
				Return(destination, nil),
			repo.EXPECT().
				Save(gomock.Any(), gomock.Eq(originAfter)).
				Return(originAfter, nil),
			repo.EXPECT().
				Save(gomock.Any(), gomock.Eq(destinationAfter)).
				Return(destinationAfter, nil),
			observer.EXPECT().
				OnTransaction(gomock.Eq(origin.Number), gomock.Eq(domain.OperationWithdraw), gomock.Eq(amount)),
			observer.EXPECT().
				OnTransaction(gomock.Eq(destination.Number), gomock.Eq(domain.OperationDeposit), gomock.Eq(amount)),
		)

		result, err := New(repo, 1, nil, observer).Transfer(context.Background(), origin.Number, destination.Number, amount)
		require.NoError(t, err)
		require.True(t, result.Origin.Balance.Equal(originAfter.Balance))
		require.True(t, result.Destination.Balance.Equal(destinationAfter.Balance))
	})

	t.Run("OriginNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		destination := randomAccount("5000")
		repo := NewMockRepo(ctrl)
		observer := NewMockObserver(ctrl)

		unknown := randompkg.AccountNumber()

		repo.EXPECT().
			FindByNumber(gomock.Any(), gomock.Eq(unknown)).
			Times(1).
			Return(domain.Account{}, domain.ErrAccountNotFound)
		repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Times(0)
		observer.EXPECT().
			OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
			Times(0)

		_, err := New(repo, 1, nil, observer).Transfer(context.Background(), unknown, destination.Number, amount)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("DestinationNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		origin := randomAccount("5000")
		repo := NewMockRepo(ctrl)
		observer := NewMockObserver(ctrl)

		unknown := randompkg.AccountNumber()

		repo.EXPECT().
			FindByNumber(gomock.Any(), gomock.Eq(origin.Number)).
			Times(1).
			Return(origin, nil)
		repo.EXPECT().
			FindByNumber(gomock.Any(), gomock.Eq(unknown)).
			Times(1).
			Return(domain.Account{}, domain.ErrAccountNotFound)
		repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Times(0)
		observer.EXPECT().
			OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
			Times(0)

		_, err := New(repo, 1, nil, observer).Transfer(context.Background(), origin.Number, unknown, amount)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		origin := randomAccount("500")
		destination := randomAccount("5000")
		repo := NewMockRepo(ctrl)
		observer := NewMockObserver(ctrl)

		repo.EXPECT().
			FindByNumber(gomock.Any(), gomock.Eq(origin.Number)).
			Times(1).
			Return(origin, nil)
		repo.EXPECT().
			FindByNumber(gomock.Any(), gomock.Eq(destination.Number)).
			Times(1).
			Return(destination, nil)
		repo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Times(0)
		observer.EXPECT().
			OnTransaction(gomock.Any(), gomock.Any(), gomock.Any()).
			Times(0)

		_, err := New(repo, 1, nil, observer).Transfer(context.Background(), origin.Number, destination.Number, amount)
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	})
}

func TestConcurrentDeposits(t *testing.T) {
	repo := memledger.NewRepo()
	ctx := context.Background()

	account, err := repo.Save(ctx, randomAccount("1000"))
	require.NoError(t, err)

	var (
		notified  int64
		notifyMu  sync.Mutex
	)

	counter := observerFunc(func(string, domain.Operation, decimal.Decimal) {
		notifyMu.Lock()
		notified++
		notifyMu.Unlock()
	})

	service := New(repo, 4, nil, counter)

	const n = 50

	amount := decimal.RequireFromString("10")

	var wg sync.WaitGroup

	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()

			_, err := service.Deposit(ctx, account.Number, amount)
			require.NoError(t, err)
		}()
	}

	wg.Wait()

	balance, err := service.GetBalance(ctx, account.Number)
	require.NoError(t, err)

	want := account.Balance.Add(amount.Mul(decimal.NewFromInt(n)))
	require.True(t, balance.Equal(want), "balance = %s, want %s", balance, want)

	notifyMu.Lock()
	defer notifyMu.Unlock()
	require.EqualValues(t, n, notified)
}

func TestConcurrentTransfersPreserveTotal(t *testing.T) {
	repo := memledger.NewRepo()
	ctx := context.Background()

	a, err := repo.Save(ctx, randomAccount("5000"))
	require.NoError(t, err)
	b, err := repo.Save(ctx, randomAccount("5000"))
	require.NoError(t, err)

	service := New(repo, 4, nil)
	amount := decimal.RequireFromString("100")

	const n = 20

	var wg sync.WaitGroup

	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()

			_, err := service.Transfer(ctx, a.Number, b.Number, amount)
			require.NoError(t, err)
		}()
		go func() {
			defer wg.Done()

			_, err := service.Transfer(ctx, b.Number, a.Number, amount)
			require.NoError(t, err)
		}()
	}

	wg.Wait()

	balanceA, err := service.GetBalance(ctx, a.Number)
	require.NoError(t, err)
	balanceB, err := service.GetBalance(ctx, b.Number)
	require.NoError(t, err)

	total := balanceA.Add(balanceB)
	require.True(t, total.Equal(decimal.RequireFromString("10000")), "total = %s", total)
	require.False(t, balanceA.IsNegative())
	require.False(t, balanceB.IsNegative())
}

func TestObserverIsolation(t *testing.T) {
	repo := memledger.NewRepo()
	ctx := context.Background()

	account, err := repo.Save(ctx, randomAccount("1000"))
	require.NoError(t, err)

	var secondNotified bool

	failing := observerFunc(func(string, domain.Operation, decimal.Decimal) {
		panic("observer down")
	})
	recording := observerFunc(func(string, domain.Operation, decimal.Decimal) {
		secondNotified = true
	})

	service := New(repo, 1, nil, failing, recording)

	got, err := service.Deposit(ctx, account.Number, decimal.RequireFromString("100"))
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.RequireFromString("1100")))
	require.True(t, secondNotified)
}

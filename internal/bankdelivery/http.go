// Package bankdelivery manages the http delivery layer of accounts and transactions.
package bankdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-bank/ledger/internal/domain"
	"github.com/go-bank/ledger/pkg/errorspkg"
	"github.com/go-bank/ledger/pkg/jsonresponse"
)

// Service provides service layer interface needed by the delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package bankdelivery
type Service interface {
	CreateAccount(ctx context.Context, holderName, bankName string, balance decimal.Decimal) (domain.Account, error)
	DeleteAccount(ctx context.Context, number string) error
	GetAccount(ctx context.Context, number string) (domain.Account, error)
	GetBalance(ctx context.Context, number string) (decimal.Decimal, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, origin, destination string, amount decimal.Decimal) (domain.TransferResult, error)
}

// Handler facilitates the http delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns bank handler.
func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

// parseAmount validates that the raw amount is a positive decimal number.
// Amount sign validation lives at this boundary; the engine passes amounts through.
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

type accountData struct {
	Account domain.Account `json:"account"`
}

type createRequest struct {
	HolderName string `json:"holder_name" binding:"required,min=3"`
	BankName   string `json:"bank_name" binding:"required,min=3"`
	Balance    string `json:"balance"`
}

// CreateAccount handles http request to create an account.
func (h *Handler) CreateAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	balance := domain.DefaultOpeningBalance

	if req.Balance != "" {
		var err error

		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(domain.ErrInvalidAmount))

			return
		}

		if balance.IsNegative() {
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(domain.ErrNegativeAmount))
			return
		}
	}

	created, err := h.service.CreateAccount(ctx, req.HolderName, req.BankName, balance)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusCreated, jsonresponse.Data(accountData{created}))
}

type numberRequest struct {
	Number string `uri:"number" binding:"required"`
}

// GetAccount handles http request to get an account.
func (h *Handler) GetAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req numberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	account, err := h.service.GetAccount(ctx, req.Number)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Data(accountData{account}))
}

type balanceData struct {
	Balance decimal.Decimal `json:"balance"`
}

// GetBalance handles http request to get an account balance.
func (h *Handler) GetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req numberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	balance, err := h.service.GetBalance(ctx, req.Number)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Data(balanceData{balance}))
}

// DeleteAccount handles http request to delete an account.
func (h *Handler) DeleteAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req numberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	if err := h.service.DeleteAccount(ctx, req.Number); err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.Status(http.StatusOK)
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// Deposit handles http request to deposit into an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.mutate(gctx, domain.OperationDeposit)
}

// Withdraw handles http request to withdraw from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.mutate(gctx, domain.OperationWithdraw)
}

func (h *Handler) mutate(gctx *gin.Context, op domain.Operation) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri numberRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	var account domain.Account

	switch op {
	case domain.OperationDeposit:
		account, err = h.service.Deposit(ctx, uri.Number, amount)
	case domain.OperationWithdraw:
		account, err = h.service.Withdraw(ctx, uri.Number, amount)
	}

	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Data(accountData{account}))
}

type transferRequest struct {
	OriginNumber      string `json:"origin_number" binding:"required"`
	DestinationNumber string `json:"destination_number" binding:"required"`
	Amount            string `json:"amount" binding:"required"`
}

type transferData struct {
	Transfer domain.TransferResult `json:"transfer"`
}

// Transfer handles http request to transfer between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Message(ErrorMsg(err)))

		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	result, err := h.service.Transfer(ctx, req.OriginNumber, req.DestinationNumber, amount)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, jsonresponse.Data(transferData{result}))
}

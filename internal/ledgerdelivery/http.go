// Package ledgerdelivery manages delivery layer of the ledger.
package ledgerdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by ledger delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package ledgerdelivery
type Service interface {
	OpenAccount(ctx context.Context, name, email, accountType string) (string, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, accountNumber string) (domain.Account, error)
	Deposit(ctx context.Context, accountNumber, amount, note string) error
	Withdraw(ctx context.Context, accountNumber, amount, note string) error
	Transfer(ctx context.Context, from, to, amount, note string) error
	GetStatement(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
	SearchAccountsByCustomerName(ctx context.Context, query string) ([]domain.Account, error)
}

// Handler facilitates ledger delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns ledger handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

// Register adds the ledger routes to r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/accounts", h.OpenAccount)
	r.GET("/accounts", h.ListAccounts)
	r.GET("/accounts/search", h.SearchAccounts)
	r.GET("/accounts/:number", h.GetAccount)
	r.GET("/accounts/:number/statement", h.GetStatement)
	r.POST("/accounts/:number/deposits", h.Deposit)
	r.POST("/accounts/:number/withdrawals", h.Withdraw)
	r.POST("/transfers", h.Transfer)
}

// statusOf maps a service error to the HTTP status code of the response.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountNumberTaken):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func fail(gctx *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		gctx.JSON(status, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(status, web.Error(err))
}

func bindFailed(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	var (
		ve     validator.ValidationErrors
		errMsg = "invalid request body"
	)

	switch {
	case errors.As(err, &ve):
		errMsg = web.GetErrorMsg(ve[0])
	case errors.Is(err, domain.ErrValidation):
		errMsg = err.Error()
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})
}

type openAccountRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,max=200"`
	AccountType string `json:"account_type" binding:"required,accounttype"`
}

type openAccountData struct {
	AccountNumber string `json:"account_number"`
}

// OpenAccount handles http request to open account.
func (h *Handler) OpenAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req openAccountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindFailed(gctx, err)
		return
	}

	number, err := h.service.OpenAccount(ctx, req.Name, req.Email, req.AccountType)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: openAccountData{AccountNumber: number}})
}

type accountsData struct {
	Accounts []domain.Account `json:"accounts"`
}

// ListAccounts handles http request to list all the accounts.
func (h *Handler) ListAccounts(gctx *gin.Context) {
	accounts, err := h.service.ListAccounts(gctx.Request.Context())
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountsData{Accounts: accounts}})
}

type searchRequest struct {
	Query string `form:"q" binding:"max=200"`
}

// SearchAccounts handles http request to search accounts by customer name.
func (h *Handler) SearchAccounts(gctx *gin.Context) {
	var req searchRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindFailed(gctx, err)
		return
	}

	accounts, err := h.service.SearchAccountsByCustomerName(gctx.Request.Context(), req.Query)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountsData{Accounts: accounts}})
}

type accountURI struct {
	Number string `uri:"number" binding:"required"`
}

type accountData struct {
	Account domain.Account `json:"account"`
}

// GetAccount handles http request to get account.
func (h *Handler) GetAccount(gctx *gin.Context) {
	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindFailed(gctx, err)
		return
	}

	account, err := h.service.GetAccount(gctx.Request.Context(), uri.Number)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{Account: account}})
}

type statementData struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// GetStatement handles http request to get account statement.
func (h *Handler) GetStatement(gctx *gin.Context) {
	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindFailed(gctx, err)
		return
	}

	transactions, err := h.service.GetStatement(gctx.Request.Context(), uri.Number)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: statementData{Transactions: transactions}})
}

type movementRequest struct {
	Amount amount `json:"amount" binding:"required"`
	Note   string `json:"note" binding:"max=500"`
}

// Deposit handles http request to deposit money to account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.movement(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw money from account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.movement(gctx, h.service.Withdraw)
}

func (h *Handler) movement(gctx *gin.Context, move func(ctx context.Context, accountNumber, amount, note string) error) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindFailed(gctx, err)
		return
	}

	var req movementRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindFailed(gctx, err)
		return
	}

	if err := move(ctx, uri.Number, string(req.Amount), req.Note); err != nil {
		fail(gctx, err)
		return
	}

	account, err := h.service.GetAccount(ctx, uri.Number)
	if err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{Account: account}})
}

type transferRequest struct {
	FromAccount string `json:"from_account" binding:"required"`
	ToAccount   string `json:"to_account" binding:"required"`
	Amount      amount `json:"amount" binding:"required"`
	Note        string `json:"note" binding:"max=500"`
}

type transferData struct {
	FromAccount domain.Account `json:"from_account"`
	ToAccount   domain.Account `json:"to_account"`
}

// Transfer handles http request to transfer money between accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindFailed(gctx, err)
		return
	}

	if err := h.service.Transfer(ctx, req.FromAccount, req.ToAccount, string(req.Amount), req.Note); err != nil {
		fail(gctx, err)
		return
	}

	var (
		data transferData
		err  error
	)

	if data.FromAccount, err = h.service.GetAccount(ctx, req.FromAccount); err != nil {
		fail(gctx, err)
		return
	}

	if data.ToAccount, err = h.service.GetAccount(ctx, req.ToAccount); err != nil {
		fail(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data})
}

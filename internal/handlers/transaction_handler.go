package handlers

import (
	goerrors "errors"
	"net/http"

	"minibank/internal/dto"
	"minibank/internal/errors"
	"minibank/internal/models"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles the ledger endpoints
type TransactionHandler struct {
	ledgerService services.LedgerServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerService services.LedgerServiceInterface) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// Deposit credits an account
func (h *TransactionHandler) Deposit(c echo.Context) error {
	userID, accountID, err := h.pathIDs(c)
	if err != nil {
		return err
	}

	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	entry, err := h.ledgerService.Deposit(userID, accountID, amount, req.Description)
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.TransactionResponse{
		Transaction: entry,
		Balance:     entry.BalanceAfter,
		Message:     "Deposit successful",
	})
}

// Withdraw debits an account
func (h *TransactionHandler) Withdraw(c echo.Context) error {
	userID, accountID, err := h.pathIDs(c)
	if err != nil {
		return err
	}

	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	entry, err := h.ledgerService.Withdraw(userID, accountID, amount, req.Description)
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.TransactionResponse{
		Transaction: entry,
		Balance:     entry.BalanceAfter,
		Message:     "Withdrawal successful",
	})
}

// Transfer moves funds to another account by account number
func (h *TransactionHandler) Transfer(c echo.Context) error {
	return h.handleTransfer(c, false)
}

// Payment is a transfer to a payee, recorded as such on the ledger
func (h *TransactionHandler) Payment(c echo.Context) error {
	return h.handleTransfer(c, true)
}

func (h *TransactionHandler) handleTransfer(c echo.Context, isPayment bool) error {
	userID, accountID, err := h.pathIDs(c)
	if err != nil {
		return err
	}

	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	var entry *models.Transaction
	var message string
	if isPayment {
		entry, err = h.ledgerService.Payment(userID, accountID, req.RecipientAccount, amount, req.Description)
		message = "Payment successful"
	} else {
		entry, err = h.ledgerService.Transfer(userID, accountID, req.RecipientAccount, amount, req.Description)
		message = "Transfer successful"
	}
	if err != nil {
		return h.mapLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.TransferResponse{
		Transaction:      entry,
		RecipientAccount: entry.RecipientAccount,
		Balance:          entry.BalanceAfter,
		Message:          message,
	})
}

// ListTransactions returns an account's ledger, newest first
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, accountID, err := h.pathIDs(c)
	if err != nil {
		return err
	}

	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", 50)

	transactions, total, err := h.ledgerService.ListTransactions(userID, accountID, offset, limit)
	if err != nil {
		if goerrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: transactions,
		Total:        total,
		Offset:       offset,
		Limit:        limit,
	})
}

var errInvalidPath = goerrors.New("invalid path parameters")

// pathIDs parses the userId and accountId path parameters. On failure the
// error response has already been sent; callers return errInvalidPath as-is.
func (h *TransactionHandler) pathIDs(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		_ = SendError(c, errors.UserInvalidID)
		return uuid.Nil, uuid.Nil, errInvalidPath
	}

	accountID, err := parseUUIDParam(c, "accountId")
	if err != nil {
		_ = SendError(c, errors.AccountNotFound)
		return uuid.Nil, uuid.Nil, errInvalidPath
	}

	return userID, accountID, nil
}

func (h *TransactionHandler) mapLedgerError(c echo.Context, err error) error {
	switch {
	case goerrors.Is(err, models.ErrInvalidAmount):
		return SendError(c, errors.TransactionInvalidAmount)
	case goerrors.Is(err, models.ErrInsufficientFunds):
		return SendError(c, errors.TransactionInsufficientFunds)
	case goerrors.Is(err, services.ErrRecipientNotFound):
		return SendError(c, errors.TransactionRecipientNotFound)
	case goerrors.Is(err, services.ErrSameAccount):
		return SendError(c, errors.TransactionSameAccount)
	case goerrors.Is(err, repositories.ErrAccountNotFound):
		return SendError(c, errors.AccountNotFound)
	default:
		return SendSystemError(c, err)
	}
}

package handlers

import (
	goerrors "errors"
	"net/http"

	"minibank/internal/dto"
	"minibank/internal/errors"
	"minibank/internal/models"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account provisioning and lookup endpoints
type AccountHandler struct {
	accountService services.AccountServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// CreateCreditAccount provisions a credit account for a user, admin only
func (h *AccountHandler) CreateCreditAccount(c echo.Context) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	performedBy, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	account, err := h.accountService.CreateCreditAccount(userID, performedBy, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case goerrors.Is(err, repositories.ErrUserNotFound):
			return SendError(c, errors.UserNotFound)
		case goerrors.Is(err, repositories.ErrAccountNumberExists):
			return SendError(c, errors.AccountNumberTaken)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, dto.AccountResponse{
		Account: account,
		Message: "Credit account created successfully",
	})
}

// ModifyCreditBalance sets the available balance on a credit account, admin only
func (h *AccountHandler) ModifyCreditBalance(c echo.Context) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	accountID, err := parseUUIDParam(c, "accountId")
	if err != nil {
		return SendError(c, errors.AccountNotFound)
	}

	var req dto.ModifyCreditRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid balance"))
	}

	performedBy, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	account, err := h.accountService.ModifyCreditBalance(userID, accountID, balance, performedBy, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case goerrors.Is(err, repositories.ErrAccountNotFound):
			return SendError(c, errors.AccountNotFound)
		case goerrors.Is(err, services.ErrNotCreditAccount):
			return SendError(c, errors.AccountNotCredit)
		case goerrors.Is(err, models.ErrInvalidBalance):
			return SendError(c, errors.ValidationGeneral, errors.WithDetails("Balance cannot be negative"))
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{
		Account: account,
		Message: "Credit balance updated successfully",
	})
}

// GetAccountDetails returns a single account owned by the user
func (h *AccountHandler) GetAccountDetails(c echo.Context) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	accountID, err := parseUUIDParam(c, "accountId")
	if err != nil {
		return SendError(c, errors.AccountNotFound)
	}

	account, err := h.accountService.GetAccountForUser(userID, accountID)
	if err != nil {
		if goerrors.Is(err, repositories.ErrAccountNotFound) {
			return SendError(c, errors.AccountNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountResponse{Account: account})
}

// ListAccounts returns all accounts owned by a user
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	userID, err := parseUUIDParam(c, "userId")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	accounts, err := h.accountService.ListAccounts(userID)
	if err != nil {
		if goerrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.UserNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}

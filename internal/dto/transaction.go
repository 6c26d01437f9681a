package dto

import (
	"minibank/internal/models"

	"github.com/shopspring/decimal"
)

// Transaction Request DTOs

// AmountRequest represents the payload for deposits and withdrawals
type AmountRequest struct {
	Amount      string `json:"amount" validate:"required,money_amount"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

// TransferRequest represents the payload for transfers and payments.
// The recipient is addressed by account number, not account ID.
type TransferRequest struct {
	RecipientAccount string `json:"recipientAccount" validate:"required,account_number"`
	Amount           string `json:"amount" validate:"required,money_amount"`
	Description      string `json:"description" validate:"omitempty,max=255"`
}

// Transaction Response DTOs

// TransactionResponse represents the result of a ledger operation
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
	Balance     decimal.Decimal     `json:"balance"`
	Message     string              `json:"message,omitempty"`
}

// TransferResponse represents the result of a transfer or payment
type TransferResponse struct {
	Transaction      *models.Transaction `json:"transaction"`
	RecipientAccount string              `json:"recipientAccount"`
	Balance          decimal.Decimal     `json:"balance"`
	Message          string              `json:"message,omitempty"`
}

// ListTransactionsResponse represents a paginated account ledger
type ListTransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Offset       int                  `json:"offset"`
	Limit        int                  `json:"limit"`
}

package dto

import (
	"minibank/internal/models"
)

// Account Request DTOs

// ModifyCreditRequest represents the admin request to adjust a credit
// account's available balance.
type ModifyCreditRequest struct {
	Balance string `json:"balance" validate:"required,money_amount"`
}

// Account Response DTOs

// AccountResponse represents a single account in API responses
type AccountResponse struct {
	Account *models.Account `json:"account"`
	Message string          `json:"message,omitempty"`
}

// AccountListResponse represents the accounts owned by a user
type AccountListResponse struct {
	Accounts []models.Account `json:"accounts"`
	Total    int              `json:"total"`
}

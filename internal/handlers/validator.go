package handlers

import (
	"minibank/internal/validation"

	"github.com/labstack/echo/v4"
)

// echoValidator adapts the shared validation singleton to echo.Validator.
type echoValidator struct{}

// NewValidator returns the request validator with the domain rules
// (account_number, money_amount, user_role, account_type) registered.
func NewValidator() echo.Validator {
	return echoValidator{}
}

func (echoValidator) Validate(i interface{}) error {
	return validation.GetValidator().GetValidate().Struct(i)
}

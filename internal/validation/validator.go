package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"minibank/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator carries the validator.Validate instance with the domain rules
// registered.
type Validator struct {
	validate *validator.Validate
}

// GetValidate exposes the underlying instance for echo's Validator hook.
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// GetValidator returns the process-wide validator instance.
var GetValidator = sync.OnceValue(NewValidator)

// NewValidator builds a validator with the domain rules and json tag names
// for error reporting.
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("account_number", validateAccountNumber)
	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("user_role", validateUserRole)
	_ = v.RegisterValidation("account_type", validateAccountType)

	// Report field names as they appear on the wire
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

var accountNumberRegex = regexp.MustCompile(`^\d{10}$`)

// validateAccountNumber validates that an account number is exactly 10 digits
func validateAccountNumber(fl validator.FieldLevel) bool {
	accountNumber := fl.Field().String()
	if accountNumber == "" {
		return false
	}
	return accountNumberRegex.MatchString(accountNumber)
}

// validateMoneyAmount validates that a string amount parses as a positive
// decimal with at most 2 fractional digits.
func validateMoneyAmount(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}

	if !amount.IsPositive() {
		return false
	}

	return amount.Exponent() >= -2
}

// validateUserRole validates that a role is one of the allowed roles
func validateUserRole(fl validator.FieldLevel) bool {
	return models.IsValidRole(strings.ToLower(fl.Field().String()))
}

// validateAccountType validates that account type is one of the allowed types
func validateAccountType(fl validator.FieldLevel) bool {
	accountType := strings.ToLower(fl.Field().String())
	return accountType == models.AccountTypeSavings || accountType == models.AccountTypeCredit
}

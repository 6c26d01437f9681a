package models

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AccountTypeSavings = "savings"
	AccountTypeCredit  = "credit"

	// AccountNumberLength is the fixed length of generated account numbers
	AccountNumberLength = 10
)

var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidBalance     = errors.New("balance cannot be negative")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

// Account is a bank account owned by a user. The account number is
// system-generated, globally unique and never changes.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	AccountNumber string          `gorm:"type:varchar(10);uniqueIndex;not null" json:"account_number"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountType   string          `gorm:"type:varchar(20);not null" json:"account_type"`
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`

	// Associations
	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	// Tests insert rows with preset timestamps
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
		return nil
	}

	a.UpdatedAt = time.Now()
	return a.Validate()
}

func (a *Account) Validate() error {
	if a.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if a.AccountNumber == "" {
		return errors.New("account number is required")
	}

	if len(a.AccountNumber) != AccountNumberLength {
		return errors.New("account number must be 10 digits")
	}

	if !IsValidAccountType(a.AccountType) {
		return ErrInvalidAccountType
	}

	return nil
}

// IsSavings returns true for the default, auto-provisioned account type
func (a *Account) IsSavings() bool {
	return a.AccountType == AccountTypeSavings
}

// IsCredit returns true for admin-provisioned credit accounts
func (a *Account) IsCredit() bool {
	return a.AccountType == AccountTypeCredit
}

// Debit subtracts amount from the balance. The balance may never go
// negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) TableName() string {
	return "accounts"
}

func IsValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeSavings, AccountTypeCredit:
		return true
	default:
		return false
	}
}

// RandomAccountNumber produces a candidate 10-digit account number. Callers
// are responsible for rejection-sampling against existing numbers; the unique
// index on accounts.account_number is the backstop.
func RandomAccountNumber() string {
	digits := make([]byte, AccountNumberLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is broken
			panic(err)
		}
		digits[i] = byte('0' + n.Int64())
	}

	// Leading zero would make the number look 9 digits long in clients that
	// treat it numerically
	if digits[0] == '0' {
		digits[0] = '1'
	}

	return string(digits)
}

// ValidateAccountNumber reports whether the string is exactly ten digits.
func ValidateAccountNumber(accountNumber string) bool {
	if len(accountNumber) != AccountNumberLength {
		return false
	}

	for _, char := range accountNumber {
		if char < '0' || char > '9' {
			return false
		}
	}

	return true
}

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeDeposit     = "deposit"
	TransactionTypeWithdraw    = "withdraw"
	TransactionTypeTransferIn  = "transfer-in"
	TransactionTypeTransferOut = "transfer-out"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("transaction amount must be positive")
)

// Transaction is an immutable ledger entry. BalanceAfter snapshots the owning
// account's balance immediately after the mutation that produced the entry;
// it is logged, never derived. Transfer entries carry the counterparty's
// account number in RecipientAccount.
type Transaction struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	AccountID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	Type             string          `gorm:"type:varchar(20);not null" json:"type"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceAfter     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	RecipientAccount string          `gorm:"type:varchar(10)" json:"recipient_account,omitempty"`
	Description      string          `gorm:"type:text" json:"description,omitempty"`
	Reference        string          `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"created_at"`

	// Associations
	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.Reference == "" {
		t.Reference = GenerateTransactionReference()
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	return t.Validate()
}

// BeforeUpdate rejects any mutation; ledger entries are append-only.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return errors.New("transactions are immutable")
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("account ID is required")
	}

	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.IsTransfer() && t.RecipientAccount == "" {
		return errors.New("transfer entries require a recipient account number")
	}

	if !t.IsTransfer() && t.RecipientAccount != "" {
		return errors.New("recipient account is only valid for transfer entries")
	}

	return nil
}

// IsTransfer returns true for either side of an inter-account transfer
func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTypeTransferIn || t.Type == TransactionTypeTransferOut
}

// IsCredit returns true when the entry increased the account balance
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeDeposit || t.Type == TransactionTypeTransferIn
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// IsValidTransactionType checks if the transaction type is valid
func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeDeposit, TransactionTypeWithdraw,
		TransactionTypeTransferIn, TransactionTypeTransferOut:
		return true
	default:
		return false
	}
}

// GenerateTransactionReference generates a unique transaction reference
func GenerateTransactionReference() string {
	return "TXN-" + uuid.New().String()[:8] + "-" + time.Now().Format("20060102150405")
}

package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Validate(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name        string
		transaction Transaction
		wantErr     bool
		errMsg      string
	}{
		{
			name: "valid deposit",
			transaction: Transaction{
				AccountID:    accountID,
				Type:         TransactionTypeDeposit,
				Amount:       decimal.NewFromFloat(100.00),
				BalanceAfter: decimal.NewFromFloat(100.00),
			},
			wantErr: false,
		},
		{
			name: "valid transfer out with recipient",
			transaction: Transaction{
				AccountID:        accountID,
				Type:             TransactionTypeTransferOut,
				Amount:           decimal.NewFromFloat(25.00),
				BalanceAfter:     decimal.NewFromFloat(75.00),
				RecipientAccount: "1012345678",
			},
			wantErr: false,
		},
		{
			name: "missing account ID",
			transaction: Transaction{
				Type:   TransactionTypeDeposit,
				Amount: decimal.NewFromFloat(100.00),
			},
			wantErr: true,
			errMsg:  "account ID is required",
		},
		{
			name: "unknown type",
			transaction: Transaction{
				AccountID: accountID,
				Type:      "chargeback",
				Amount:    decimal.NewFromFloat(100.00),
			},
			wantErr: true,
			errMsg:  ErrInvalidTransactionType.Error(),
		},
		{
			name: "zero amount",
			transaction: Transaction{
				AccountID: accountID,
				Type:      TransactionTypeDeposit,
				Amount:    decimal.Zero,
			},
			wantErr: true,
			errMsg:  ErrInvalidAmount.Error(),
		},
		{
			name: "negative amount",
			transaction: Transaction{
				AccountID: accountID,
				Type:      TransactionTypeWithdraw,
				Amount:    decimal.NewFromFloat(-10.00),
			},
			wantErr: true,
			errMsg:  ErrInvalidAmount.Error(),
		},
		{
			name: "transfer without recipient",
			transaction: Transaction{
				AccountID: accountID,
				Type:      TransactionTypeTransferIn,
				Amount:    decimal.NewFromFloat(10.00),
			},
			wantErr: true,
			errMsg:  "transfer entries require a recipient account number",
		},
		{
			name: "deposit with recipient",
			transaction: Transaction{
				AccountID:        accountID,
				Type:             TransactionTypeDeposit,
				Amount:           decimal.NewFromFloat(10.00),
				RecipientAccount: "1012345678",
			},
			wantErr: true,
			errMsg:  "recipient account is only valid for transfer entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transaction.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_TypeHelpers(t *testing.T) {
	assert.True(t, (&Transaction{Type: TransactionTypeTransferIn}).IsTransfer())
	assert.True(t, (&Transaction{Type: TransactionTypeTransferOut}).IsTransfer())
	assert.False(t, (&Transaction{Type: TransactionTypeDeposit}).IsTransfer())

	assert.True(t, (&Transaction{Type: TransactionTypeDeposit}).IsCredit())
	assert.True(t, (&Transaction{Type: TransactionTypeTransferIn}).IsCredit())
	assert.False(t, (&Transaction{Type: TransactionTypeWithdraw}).IsCredit())
	assert.False(t, (&Transaction{Type: TransactionTypeTransferOut}).IsCredit())
}

func TestIsValidTransactionType(t *testing.T) {
	for _, valid := range []string{
		TransactionTypeDeposit,
		TransactionTypeWithdraw,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
	} {
		assert.True(t, IsValidTransactionType(valid), valid)
	}

	assert.False(t, IsValidTransactionType("payment"))
	assert.False(t, IsValidTransactionType(""))
}

func TestGenerateTransactionReference(t *testing.T) {
	ref := GenerateTransactionReference()
	assert.True(t, strings.HasPrefix(ref, "TXN-"))

	other := GenerateTransactionReference()
	assert.NotEqual(t, ref, other)
}

package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"minibank/internal/models"
	"minibank/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
)

// LedgerService implements the money movement operations. Balance mutations
// and their ledger entries commit in a single database transaction; for a
// transfer that covers both sides, so partial transfers cannot be observed.
type LedgerService struct {
	db              *gorm.DB
	accountRepo     repositories.AccountRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	db *gorm.DB,
	accountRepo repositories.AccountRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) LedgerServiceInterface {
	return &LedgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
	}
}

// Deposit credits the account and appends a deposit entry
func (s *LedgerService) Deposit(userID, accountID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	start := time.Now()
	var entry *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccountForUser(tx, accountID, userID)
		if err != nil {
			return err
		}

		if err := account.Credit(amount); err != nil {
			return err
		}
		if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
			return fmt.Errorf("failed to credit account: %w", err)
		}

		entry = &models.Transaction{
			AccountID:    account.ID,
			Type:         models.TransactionTypeDeposit,
			Amount:       amount,
			BalanceAfter: account.Balance,
			Description:  description,
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create deposit entry: %w", err)
		}

		return nil
	})

	s.observeOperation("deposit", start, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit completed",
		"account_id", accountID,
		"amount", amount.String())

	return entry, nil
}

// Withdraw debits the account and appends a withdraw entry. The funds check
// happens here, inside the transaction, not in the client.
func (s *LedgerService) Withdraw(userID, accountID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	start := time.Now()
	var entry *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccountForUser(tx, accountID, userID)
		if err != nil {
			return err
		}

		if err := account.Debit(amount); err != nil {
			return err
		}
		if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
			return fmt.Errorf("failed to debit account: %w", err)
		}

		entry = &models.Transaction{
			AccountID:    account.ID,
			Type:         models.TransactionTypeWithdraw,
			Amount:       amount,
			BalanceAfter: account.Balance,
			Description:  description,
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create withdraw entry: %w", err)
		}

		return nil
	})

	s.observeOperation("withdraw", start, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal completed",
		"account_id", accountID,
		"amount", amount.String())

	return entry, nil
}

// Transfer moves funds from the caller's account to the account carrying the
// recipient number. Both balance mutations and both ledger entries commit in
// one database transaction; each entry snapshots its own side's new balance
// and carries the counterparty's account number.
func (s *LedgerService) Transfer(userID, accountID uuid.UUID, recipientAccountNumber string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	return s.transfer(userID, accountID, recipientAccountNumber, amount, description, "transfer")
}

// Payment is a transfer to a payee's account, distinguished only by how it is
// described on the ledger.
func (s *LedgerService) Payment(userID, accountID uuid.UUID, recipientAccountNumber string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if description == "" {
		description = "Payment"
	}
	return s.transfer(userID, accountID, recipientAccountNumber, amount, description, "payment")
}

func (s *LedgerService) transfer(userID, accountID uuid.UUID, recipientAccountNumber string, amount decimal.Decimal, description, operation string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	if !models.ValidateAccountNumber(recipientAccountNumber) {
		return nil, ErrRecipientNotFound
	}

	start := time.Now()
	var outEntry *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		source, err := lockAccountForUser(tx, accountID, userID)
		if err != nil {
			return err
		}

		if source.AccountNumber == recipientAccountNumber {
			return ErrSameAccount
		}

		if err := source.Debit(amount); err != nil {
			return err
		}

		var recipient models.Account
		if err := forUpdate(tx).
			Where("account_number = ?", recipientAccountNumber).
			First(&recipient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientNotFound
			}
			return fmt.Errorf("failed to lock recipient account: %w", err)
		}

		if err := tx.Model(source).Update("balance", source.Balance).Error; err != nil {
			return fmt.Errorf("failed to debit source account: %w", err)
		}

		outEntry = &models.Transaction{
			AccountID:        source.ID,
			Type:             models.TransactionTypeTransferOut,
			Amount:           amount,
			BalanceAfter:     source.Balance,
			RecipientAccount: recipient.AccountNumber,
			Description:      description,
		}

		if err := tx.Create(outEntry).Error; err != nil {
			return fmt.Errorf("failed to create transfer-out entry: %w", err)
		}

		if err := recipient.Credit(amount); err != nil {
			return err
		}
		if err := tx.Model(&recipient).Update("balance", recipient.Balance).Error; err != nil {
			return fmt.Errorf("failed to credit recipient account: %w", err)
		}

		inEntry := &models.Transaction{
			AccountID:        recipient.ID,
			Type:             models.TransactionTypeTransferIn,
			Amount:           amount,
			BalanceAfter:     recipient.Balance,
			RecipientAccount: source.AccountNumber,
			Description:      description,
		}

		if err := tx.Create(inEntry).Error; err != nil {
			return fmt.Errorf("failed to create transfer-in entry: %w", err)
		}

		return nil
	})

	s.observeOperation(operation, start, err)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		amountFloat, _ := amount.Float64()
		s.metrics.RecordGauge("transfer_amount", amountFloat, nil)
	}

	s.logger.Info("transfer completed",
		"operation", operation,
		"source_account_id", accountID,
		"recipient_account", recipientAccountNumber,
		"amount", amount.String())

	return outEntry, nil
}

// ListTransactions returns the ledger for an account owned by the user,
// newest first.
func (s *LedgerService) ListTransactions(userID, accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error) {
	if _, err := s.accountRepo.GetByIDForUser(accountID, userID); err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.transactionRepo.GetByAccountID(accountID, offset, limit)
}

func (s *LedgerService) observeOperation(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failed"
	}

	s.metrics.IncrementCounter("ledger_operation", map[string]string{
		"operation": operation,
		"status":    status,
	})
	s.metrics.RecordProcessingTime("ledger_operation", time.Since(start))
}

// forUpdate adds SELECT ... FOR UPDATE on dialects that support it. sqlite
// has no FOR UPDATE; there the database write lock serializes writers.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockAccountForUser loads an account with a row lock, scoped to its owner.
// A mismatch between account and owner is indistinguishable from a missing
// account on purpose.
func lockAccountForUser(tx *gorm.DB, accountID, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := forUpdate(tx).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

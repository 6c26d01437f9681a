package services

import (
	"errors"
	"log/slog"

	"minibank/internal/models"
	"minibank/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotCreditAccount = errors.New("account is not a credit account")
)

// AccountService implements account provisioning and lookup. Savings accounts
// are created automatically at registration; credit accounts are provisioned
// here by an admin.
type AccountService struct {
	auditRecorder
	userRepo    repositories.UserRepositoryInterface
	accountRepo repositories.AccountRepositoryInterface
	metrics     MetricsRecorderInterface
}

// NewAccountService creates a new account service
func NewAccountService(
	userRepo repositories.UserRepositoryInterface,
	accountRepo repositories.AccountRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AccountServiceInterface {
	return &AccountService{
		auditRecorder: auditRecorder{auditRepo: auditRepo, logger: logger},
		userRepo:      userRepo,
		accountRepo:   accountRepo,
		metrics:       metrics,
	}
}

// CreateCreditAccount provisions a credit account for the user, zero balance
func (s *AccountService) CreateCreditAccount(userID, performedBy uuid.UUID, ipAddress, userAgent string) (*models.Account, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	accountNumber, err := s.accountRepo.GenerateUniqueAccountNumber()
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		AccountNumber: accountNumber,
		UserID:        userID,
		AccountType:   models.AccountTypeCredit,
		Balance:       decimal.Zero,
	}

	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	s.record(&performedBy, models.AuditActionAccountCreated, "account", account.ID.String(), ipAddress, userAgent, map[string]interface{}{
		"user_id":        userID.String(),
		"account_type":   models.AccountTypeCredit,
		"account_number": account.AccountNumber,
	})

	if s.metrics != nil {
		s.metrics.IncrementCounter("account_created", map[string]string{"account_type": models.AccountTypeCredit})
	}

	return account, nil
}

// ModifyCreditBalance sets the available balance on a credit account
func (s *AccountService) ModifyCreditBalance(userID, accountID uuid.UUID, balance decimal.Decimal, performedBy uuid.UUID, ipAddress, userAgent string) (*models.Account, error) {
	if balance.IsNegative() {
		return nil, models.ErrInvalidBalance
	}

	account, err := s.accountRepo.GetByIDForUser(accountID, userID)
	if err != nil {
		return nil, err
	}

	if !account.IsCredit() {
		return nil, ErrNotCreditAccount
	}

	previous := account.Balance
	if err := s.accountRepo.UpdateBalance(account.ID, balance); err != nil {
		return nil, err
	}
	account.Balance = balance

	s.record(&performedBy, models.AuditActionCreditAdjusted, "account", account.ID.String(), ipAddress, userAgent, map[string]interface{}{
		"user_id":     userID.String(),
		"old_balance": previous.String(),
		"new_balance": balance.String(),
	})

	return account, nil
}

// GetAccountForUser retrieves an account owned by the user
func (s *AccountService) GetAccountForUser(userID, accountID uuid.UUID) (*models.Account, error) {
	return s.accountRepo.GetByIDForUser(accountID, userID)
}

// ListAccounts retrieves all accounts owned by a user
func (s *AccountService) ListAccounts(userID uuid.UUID) ([]models.Account, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	return s.accountRepo.GetByUserID(userID)
}

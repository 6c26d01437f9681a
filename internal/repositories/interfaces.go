package repositories

import (
	"time"

	"minibank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepositoryInterface defines the contract for directory operations on users
type UserRepositoryInterface interface {
	Create(user *models.User) error
	CreateWithSavingsAccount(user *models.User, accountNumber string) (*models.Account, error)
	GetByID(id uuid.UUID) (*models.User, error)
	GetByIDWithAccounts(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Search(term string, offset, limit int) ([]*models.User, int64, error)
	ListUsers(offset, limit int) ([]*models.User, int64, error)
	Update(user *models.User) error
	UpdateFields(userID uuid.UUID, fields map[string]interface{}) error
	UpdateRole(userID uuid.UUID, role string) error
	UpdatePasswordHash(userID uuid.UUID, passwordHash string) error
	UpdateFailedLoginAttempts(user *models.User) error
	UnlockAccount(userID uuid.UUID) error
	Delete(userID uuid.UUID) error
}

// AccountRepositoryInterface defines the contract for account repository operations
type AccountRepositoryInterface interface {
	Create(account *models.Account) error
	GetByID(id uuid.UUID) (*models.Account, error)
	GetByIDForUser(id, userID uuid.UUID) (*models.Account, error)
	GetByAccountNumber(accountNumber string) (*models.Account, error)
	GetByUserID(userID uuid.UUID) ([]models.Account, error)
	Update(account *models.Account) error
	UpdateBalance(accountID uuid.UUID, balance decimal.Decimal) error
	Delete(id uuid.UUID) error
	SoftDeleteByUserID(userID uuid.UUID) error
	CheckAccountNumberExists(accountNumber string) (bool, error)
	GenerateUniqueAccountNumber() (string, error)
}

// TransactionRepositoryInterface defines the contract for ledger entry operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetByAccountID(accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error)
	GetByDateRange(accountID uuid.UUID, startDate, endDate time.Time) ([]models.Transaction, error)
	CountByAccountID(accountID uuid.UUID) (int64, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	GetByTokenHash(tokenHash string) (*models.RefreshToken, error)
	Update(token *models.RefreshToken) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired() (int64, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	GetByJTI(jti string) (*models.BlacklistedToken, error)
	DeleteExpired() (int64, error)
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByAction(action string, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteOlderThan(duration time.Duration) (int64, error)
}

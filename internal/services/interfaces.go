package services

import (
	"time"

	"minibank/internal/dto"
	"minibank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, *models.Account, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
	ReissueTokens(user *models.User, presentedJTI string, presentedExpiry time.Time, ipAddress, userAgent string) (*dto.TokenResponse, error)
	IsTokenBlacklisted(jti string) (bool, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
	UpdatePassword(userID uuid.UUID, currentPassword, newPassword string) error
}

// LedgerServiceInterface defines the money movement operations. Every mutation
// appends an immutable transaction record carrying the post-mutation balance.
type LedgerServiceInterface interface {
	Deposit(userID, accountID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)
	Withdraw(userID, accountID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)
	Transfer(userID, accountID uuid.UUID, recipientAccountNumber string, amount decimal.Decimal, description string) (*models.Transaction, error)
	Payment(userID, accountID uuid.UUID, recipientAccountNumber string, amount decimal.Decimal, description string) (*models.Transaction, error)
	ListTransactions(userID, accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error)
}

// DirectoryServiceInterface defines user directory operations
type DirectoryServiceInterface interface {
	ListUsers(offset, limit int) ([]*models.User, int64, error)
	SearchUsers(term string, offset, limit int) ([]*models.User, int64, error)
	GetUserDetails(userID uuid.UUID) (*models.User, error)
	UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest, performedBy uuid.UUID, ipAddress, userAgent string) (*models.User, error)
	DeleteUser(userID, performedBy uuid.UUID, ipAddress, userAgent string) error
	AssignRole(userID uuid.UUID, role string, performedBy uuid.UUID, ipAddress, userAgent string) error
	UnlockUser(userID, performedBy uuid.UUID, ipAddress, userAgent string) error
}

// AccountServiceInterface defines account provisioning and lookup operations
type AccountServiceInterface interface {
	CreateCreditAccount(userID, performedBy uuid.UUID, ipAddress, userAgent string) (*models.Account, error)
	ModifyCreditBalance(userID, accountID uuid.UUID, balance decimal.Decimal, performedBy uuid.UUID, ipAddress, userAgent string) (*models.Account, error)
	GetAccountForUser(userID, accountID uuid.UUID) (*models.Account, error)
	ListAccounts(userID uuid.UUID) ([]models.Account, error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

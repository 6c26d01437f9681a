package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"minibank/internal/dto"
	"minibank/internal/models"
	"minibank/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// AuthService handles registration, login and token lifecycle. Registration
// provisions the user's savings account in the same database transaction as
// the user row.
type AuthService struct {
	auditRecorder
	userRepo             repositories.UserRepositoryInterface
	accountRepo          repositories.AccountRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	metrics              MetricsRecorderInterface
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	accountRepo repositories.AccountRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AuthServiceInterface {
	return &AuthService{
		auditRecorder:        auditRecorder{auditRepo: auditRepo, logger: logger},
		userRepo:             userRepo,
		accountRepo:          accountRepo,
		refreshTokenRepo:     refreshTokenRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		metrics:              metrics,
	}
}

// Register creates the user and their savings account atomically.
func (s *AuthService) Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, *models.Account, error) {
	existingUser, err := s.userRepo.GetByEmail(req.Email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if existingUser != nil {
		s.record(nil, models.AuditActionRegister, "user", "", ipAddress, userAgent, map[string]interface{}{
			"email":  req.Email,
			"reason": "email_already_exists",
		})
		return nil, nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	accountNumber, err := s.accountRepo.GenerateUniqueAccountNumber()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate account number: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashedPassword,
		Role:         models.RoleCustomer,
	}

	account, err := s.userRepo.CreateWithSavingsAccount(user, accountNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, nil, ErrUserAlreadyExists
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.record(&user.ID, models.AuditActionRegister, "user", user.ID.String(), ipAddress, userAgent, map[string]interface{}{
		"account_number": account.AccountNumber,
	})
	s.countAuthEvent("register")

	return user, account, nil
}

// Login verifies credentials, maintains the failed attempt counter and
// returns a fresh token pair. Lockout happens on the third consecutive
// failure.
func (s *AuthService) Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		// Unknown email answers exactly like a bad password
		s.auditFailedLogin(req.Email, ipAddress, userAgent, "user_not_found")
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.auditFailedLogin(req.Email, ipAddress, userAgent, "account_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		user.IncrementFailedAttempts()
		if err := s.userRepo.UpdateFailedLoginAttempts(user); err != nil {
			s.logger.Error("failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}

		if user.IsLocked() {
			s.record(&user.ID, models.AuditActionAccountLocked, "user", user.ID.String(), ipAddress, userAgent, nil)
		}

		s.auditFailedLogin(req.Email, ipAddress, userAgent, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	user.ResetFailedAttempts()
	user.UpdateLastLogin()
	if err := s.userRepo.UpdateFailedLoginAttempts(user); err != nil {
		// Non-critical, login proceeds
		s.logger.Warn("failed to reset login attempts",
			"error", err,
			"user_id", user.ID)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.record(&user.ID, models.AuditActionLogin, "user", user.ID.String(), ipAddress, userAgent, nil)
	s.countAuthEvent("login_success")

	return tokens, nil
}

// RefreshTokens exchanges a live refresh token for a new pair. The
// presented token is revoked; each refresh token is good for one exchange.
func (s *AuthService) RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.auditFailedRefresh("", ipAddress, userAgent, "invalid_token")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(hashToken(refreshToken))
	if err != nil {
		s.auditFailedRefresh(claims.UserID, ipAddress, userAgent, "token_not_found")
		return nil, ErrInvalidRefreshToken
	}

	if !storedToken.IsValid() {
		s.auditFailedRefresh(claims.UserID, ipAddress, userAgent, "token_expired_or_revoked")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	storedToken.Revoke()
	if err := s.refreshTokenRepo.Update(storedToken); err != nil {
		s.logger.Warn("failed to revoke old token",
			"error", err,
			"user_id", user.ID,
			"token_id", storedToken.ID)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	s.record(&user.ID, models.AuditActionTokenRefresh, "user", user.ID.String(), ipAddress, userAgent, nil)
	s.countAuthEvent("token_refresh")

	return tokens, nil
}

// Logout invalidates the user's tokens
func (s *AuthService) Logout(accessToken, ipAddress, userAgent string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		// Blacklist even expired tokens to prevent reuse
		jti, _ := s.tokenService.GetJTI(accessToken)
		if jti != "" {
			if err := s.blacklistToken(jti, uuid.Nil, time.Now().Add(24*time.Hour)); err != nil {
				s.logger.Error("failed to blacklist expired token",
					"error", err,
					"jti", jti)
			}
		}
		return nil
	}

	userID, _ := uuid.Parse(claims.UserID)

	expiry, _ := s.tokenService.GetTokenExpiry(accessToken)
	if err := s.blacklistToken(claims.ID, userID, expiry); err != nil {
		s.logger.Error("failed to blacklist token",
			"error", err,
			"jti", claims.ID,
			"user_id", userID)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(userID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens",
			"error", err,
			"user_id", userID)
	}

	s.record(&userID, models.AuditActionLogout, "user", userID.String(), ipAddress, userAgent, nil)
	s.countAuthEvent("logout")

	return nil
}

// ReissueTokens invalidates every outstanding credential for the user and
// mints a fresh pair carrying the stored role. Used when the role inside a
// presented token no longer matches the directory record.
func (s *AuthService) ReissueTokens(user *models.User, presentedJTI string, presentedExpiry time.Time, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	if user == nil {
		return nil, errors.New("user cannot be nil")
	}

	if presentedJTI != "" {
		if err := s.blacklistToken(presentedJTI, user.ID, presentedExpiry); err != nil {
			return nil, fmt.Errorf("failed to blacklist stale token: %w", err)
		}
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(user.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate fresh tokens: %w", err)
	}

	s.record(&user.ID, models.AuditActionRoleReconciled, "user", user.ID.String(), ipAddress, userAgent, map[string]interface{}{
		"role": user.Role,
	})
	s.countAuthEvent("role_reconciled")

	return tokens, nil
}

// IsTokenBlacklisted reports whether the JTI has been revoked
func (s *AuthService) IsTokenBlacklisted(jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	_, err := s.blacklistedTokenRepo.GetByJTI(jti)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return true, nil
}

func (s *AuthService) generateTokens(user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
	}

	if err := s.refreshTokenRepo.Create(refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) blacklistToken(jti string, userID uuid.UUID, expiresAt time.Time) error {
	token := &models.BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return s.blacklistedTokenRepo.Create(token)
}

func (s *AuthService) auditFailedLogin(email, ipAddress, userAgent, reason string) {
	s.record(nil, models.AuditActionFailedLogin, "user", "", ipAddress, userAgent, map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
	s.countAuthEvent("login_failed")
}

func (s *AuthService) auditFailedRefresh(userID, ipAddress, userAgent, reason string) {
	var uid *uuid.UUID
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err == nil {
			uid = &id
		}
	}
	s.record(uid, models.AuditActionTokenRefresh, "token", "", ipAddress, userAgent, map[string]interface{}{
		"reason": reason,
	})
}

func (s *AuthService) countAuthEvent(eventType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": eventType})
}

// hashToken is the storage form of refresh tokens; the raw value is only
// ever held by the client.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

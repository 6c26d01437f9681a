package handlers

import (
	goerrors "errors"
	"net/http"
	"strings"

	"minibank/internal/dto"
	"minibank/internal/errors"
	"minibank/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService      services.AuthServiceInterface
	directoryService services.DirectoryServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface, directoryService services.DirectoryServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		directoryService: directoryService,
	}
}

// Register handles user registration. The savings account is provisioned
// together with the user and its number is returned in the response.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	ip, ua := clientMeta(c)

	user, account, err := h.authService.Register(&req, ip, ua)
	if err != nil {
		switch {
		case goerrors.Is(err, services.ErrUserAlreadyExists):
			return SendError(c, errors.UserAlreadyExists)
		case strings.Contains(err.Error(), "password validation failed"):
			return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
		default:
			return SendSystemError(c, err)
		}
	}

	response := map[string]interface{}{
		"id":             user.ID,
		"email":          user.Email,
		"name":           user.Name,
		"role":           user.Role,
		"account_number": account.AccountNumber,
		"created_at":     user.CreatedAt,
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    response,
		Message: "User registered successfully",
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	ip, ua := clientMeta(c)

	tokens, err := h.authService.Login(&req, ip, ua)
	if err != nil {
		switch {
		case goerrors.Is(err, services.ErrAccountLocked):
			return SendError(c, errors.AuthAccountLocked)
		case goerrors.Is(err, services.ErrInvalidCredentials):
			return SendError(c, errors.AuthInvalidCredentials)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.JSON(http.StatusOK, tokens)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	ip, ua := clientMeta(c)

	tokens, err := h.authService.RefreshTokens(req.RefreshToken, ip, ua)
	if err != nil {
		if goerrors.Is(err, services.ErrInvalidRefreshToken) {
			return SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Invalid or expired refresh token"))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout handles user logout
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return SendError(c, errors.AuthMissingToken)
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return SendError(c, errors.AuthInvalidTokenFormat)
	}

	ip, ua := clientMeta(c)

	// Logout always reports success; failures are logged server-side
	_ = h.authService.Logout(tokenParts[1], ip, ua)

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Logout successful",
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.directoryService.GetUserDetails(userID)
	if err != nil {
		return SendError(c, errors.UserNotFound)
	}

	profile := dto.UserProfileResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if savings := user.SavingsAccount(); savings != nil {
		profile.AccountNumber = savings.AccountNumber
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}

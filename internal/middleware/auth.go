package middleware

import (
	goerrors "errors"
	"time"

	"minibank/internal/errors"
	"minibank/internal/handlers"
	"minibank/internal/models"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireAuth authenticates the request from its bearer token. On success
// the identity lands on the context under user_id, user_email, user_role,
// token_jti, token_expiry and is_admin.
func RequireAuth(tokenService services.TokenServiceInterface, blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				if goerrors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, errors.AuthExpiredToken)
				}
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			// A valid signature is not enough; logout and role reconciliation
			// kill tokens before their natural expiry.
			if revoked, err := blacklistedTokenRepo.GetByJTI(claims.ID); err == nil && revoked != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Token has been revoked"))
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Invalid user ID in token"))
			}

			var tokenExpiry time.Time
			if claims.ExpiresAt != nil {
				tokenExpiry = claims.ExpiresAt.Time
			}

			c.Set("user_id", userID)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)
			c.Set("token_jti", claims.ID)
			c.Set("token_expiry", tokenExpiry)
			c.Set("is_admin", claims.Role == models.RoleAdmin)

			return next(c)
		}
	}
}

// RequireRole passes the request through when the token role matches any of
// the given roles. Must run after RequireAuth.
func RequireRole(requiredRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole, ok := c.Get("user_role").(string)
			if !ok {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("User role not found in token"))
			}

			for _, role := range requiredRoles {
				if userRole == role {
					return next(c)
				}
			}

			return handlers.SendError(c, errors.AuthInsufficientPermission)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}

// RequireSelfOrAdmin restricts per-user endpoints to the user themselves or
// an admin. The target user comes from the named path parameter.
func RequireSelfOrAdmin(userIDParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callerID, ok := c.Get("user_id").(uuid.UUID)
			if !ok {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			targetID, err := uuid.Parse(c.Param(userIDParam))
			if err != nil {
				return handlers.SendError(c, errors.UserInvalidID)
			}

			isAdmin, _ := c.Get("is_admin").(bool)
			if callerID == targetID || isAdmin {
				return next(c)
			}

			return handlers.SendError(c, errors.AuthInsufficientPermission)
		}
	}
}

package middleware

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"time"

	"minibank/internal/dto"
	"minibank/internal/errors"
	"minibank/internal/handlers"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReconcileRole verifies that the role inside the presented access token
// still matches the stored role. The directory record is authoritative: on
// drift the presented token is blacklisted, all refresh tokens are revoked,
// and a fresh pair carrying the stored role is returned with HTTP 200. The
// requested operation is NOT performed in that call; the client retries with
// the new credentials.
//
// Runs after RequireAuth, which populates user_id, user_role, token_jti and
// token_expiry in the request context.
func ReconcileRole(userRepo repositories.UserRepositoryInterface, authService services.AuthServiceInterface, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(uuid.UUID)
			if !ok {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			tokenRole, _ := c.Get("user_role").(string)

			user, err := userRepo.GetByID(userID)
			if err != nil {
				if goerrors.Is(err, repositories.ErrUserNotFound) {
					// Token refers to a deleted user; treat as revoked
					return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Token has been revoked"))
				}
				return handlers.SendSystemError(c, err)
			}

			if user.Role == tokenRole {
				return next(c)
			}

			jti, _ := c.Get("token_jti").(string)
			tokenExpiry, _ := c.Get("token_expiry").(time.Time)

			tokens, err := authService.ReissueTokens(user, jti, tokenExpiry, getIP(c), c.Request().UserAgent())
			if err != nil {
				logger.Error("failed to reissue tokens for role drift",
					"error", err,
					"user_id", userID,
					"token_role", tokenRole,
					"stored_role", user.Role)
				return handlers.SendSystemError(c, err)
			}

			logger.Info("role drift reconciled",
				"user_id", userID,
				"token_role", tokenRole,
				"stored_role", user.Role)

			return c.JSON(http.StatusOK, dto.RoleReconciledResponse{
				Message: "Your permissions have changed. Please retry with the new credentials.",
				Role:    user.Role,
				Tokens:  tokens,
			})
		}
	}
}

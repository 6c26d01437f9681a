package repositories

import (
	"errors"
	"time"

	"minibank/internal/models"

	"gorm.io/gorm"
)

// ErrTokenNotFound is returned when a JTI has no blacklist entry, which is
// the common case for every authenticated request.
var ErrTokenNotFound = errors.New("token not found")

type blacklistedTokenRepository struct {
	db *gorm.DB
}

func NewBlacklistedTokenRepository(db *gorm.DB) BlacklistedTokenRepositoryInterface {
	return &blacklistedTokenRepository{db: db}
}

// Create records a dead token; the BlacklistedAt stamp comes from the
// model's BeforeCreate hook.
func (r *blacklistedTokenRepository) Create(token *models.BlacklistedToken) error {
	return r.db.Create(token).Error
}

func (r *blacklistedTokenRepository) GetByJTI(jti string) (*models.BlacklistedToken, error) {
	var token models.BlacklistedToken
	if err := r.db.Where("jti = ?", jti).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// DeleteExpired reaps entries whose underlying token has expired on its own.
func (r *blacklistedTokenRepository) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at < ?", time.Now()).Delete(&models.BlacklistedToken{})
	return res.RowsAffected, res.Error
}

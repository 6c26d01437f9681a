package repositories

import (
	"testing"
	"time"

	"minibank/internal/database"
	"minibank/internal/models"

	"github.com/stretchr/testify/suite"
)

// TokenRepositoriesSuite covers the refresh token and blacklisted token repositories
type TokenRepositoriesSuite struct {
	suite.Suite
	db          *database.DB
	refreshRepo RefreshTokenRepositoryInterface
	blacklist   BlacklistedTokenRepositoryInterface
	testUser    *models.User
}

func (s *TokenRepositoriesSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.refreshRepo = NewRefreshTokenRepository(s.db.DB)
	s.blacklist = NewBlacklistedTokenRepository(s.db.DB)
	s.testUser = database.CreateTestUser(s.T(), s.db, "test@example.com")
}

func (s *TokenRepositoriesSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestTokenRepositoriesSuite(t *testing.T) {
	suite.Run(t, new(TokenRepositoriesSuite))
}

func (s *TokenRepositoriesSuite) TestRefreshToken_CreateAndGet() {
	token := &models.RefreshToken{
		UserID:    s.testUser.ID,
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	s.Require().NoError(s.refreshRepo.Create(token))

	found, err := s.refreshRepo.GetByTokenHash("hash-1")
	s.NoError(err)
	s.Equal(token.ID, found.ID)
	s.True(found.IsValid())

	_, err = s.refreshRepo.GetByTokenHash("missing")
	s.ErrorIs(err, ErrRefreshTokenNotFound)
}

func (s *TokenRepositoriesSuite) TestRefreshToken_RevokeAllForUser() {
	for _, hash := range []string{"hash-1", "hash-2"} {
		s.Require().NoError(s.refreshRepo.Create(&models.RefreshToken{
			UserID:    s.testUser.ID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	other := database.CreateTestUser(s.T(), s.db, "other@example.com")
	s.Require().NoError(s.refreshRepo.Create(&models.RefreshToken{
		UserID:    other.ID,
		TokenHash: "hash-other",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	s.Require().NoError(s.refreshRepo.RevokeAllForUser(s.testUser.ID))

	for _, hash := range []string{"hash-1", "hash-2"} {
		found, err := s.refreshRepo.GetByTokenHash(hash)
		s.NoError(err)
		s.True(found.IsRevoked())
		s.False(found.IsValid())
	}

	// Another user's tokens stay live
	found, err := s.refreshRepo.GetByTokenHash("hash-other")
	s.NoError(err)
	s.True(found.IsValid())
}

func (s *TokenRepositoriesSuite) TestRefreshToken_DeleteExpired() {
	s.Require().NoError(s.refreshRepo.Create(&models.RefreshToken{
		UserID:    s.testUser.ID,
		TokenHash: "expired",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	s.Require().NoError(s.refreshRepo.Create(&models.RefreshToken{
		UserID:    s.testUser.ID,
		TokenHash: "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	deleted, err := s.refreshRepo.DeleteExpired()
	s.NoError(err)
	s.EqualValues(1, deleted)

	_, err = s.refreshRepo.GetByTokenHash("expired")
	s.ErrorIs(err, ErrRefreshTokenNotFound)

	_, err = s.refreshRepo.GetByTokenHash("live")
	s.NoError(err)
}

func (s *TokenRepositoriesSuite) TestBlacklist_CreateAndGet() {
	token := &models.BlacklistedToken{
		JTI:       "jti-1",
		UserID:    s.testUser.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	s.Require().NoError(s.blacklist.Create(token))
	s.NotZero(token.BlacklistedAt)

	found, err := s.blacklist.GetByJTI("jti-1")
	s.NoError(err)
	s.Equal(token.ID, found.ID)

	_, err = s.blacklist.GetByJTI("missing")
	s.ErrorIs(err, ErrTokenNotFound)
}

func (s *TokenRepositoriesSuite) TestBlacklist_DeleteExpired() {
	s.Require().NoError(s.blacklist.Create(&models.BlacklistedToken{
		JTI:       "jti-expired",
		UserID:    s.testUser.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	s.Require().NoError(s.blacklist.Create(&models.BlacklistedToken{
		JTI:       "jti-live",
		UserID:    s.testUser.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	deleted, err := s.blacklist.DeleteExpired()
	s.NoError(err)
	s.EqualValues(1, deleted)

	_, err = s.blacklist.GetByJTI("jti-expired")
	s.ErrorIs(err, ErrTokenNotFound)

	_, err = s.blacklist.GetByJTI("jti-live")
	s.NoError(err)
}

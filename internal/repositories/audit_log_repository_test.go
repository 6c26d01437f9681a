package repositories

import (
	"testing"
	"time"

	"minibank/internal/database"
	"minibank/internal/models"

	"github.com/stretchr/testify/suite"
)

type AuditLogRepositorySuite struct {
	suite.Suite
	db       *database.DB
	repo     AuditLogRepositoryInterface
	testUser *models.User
}

func (s *AuditLogRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAuditLogRepository(s.db.DB)
	s.testUser = database.CreateTestUser(s.T(), s.db, "test@example.com")
}

func (s *AuditLogRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestAuditLogRepositorySuite(t *testing.T) {
	suite.Run(t, new(AuditLogRepositorySuite))
}

func (s *AuditLogRepositorySuite) createLog(action string, createdAt time.Time) *models.AuditLog {
	entry := &models.AuditLog{
		UserID:    &s.testUser.ID,
		Action:    action,
		Resource:  "user",
		IPAddress: "127.0.0.1",
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.repo.Create(entry))
	return entry
}

func (s *AuditLogRepositorySuite) TestCreate_WithMetadata() {
	entry := &models.AuditLog{
		UserID:   &s.testUser.ID,
		Action:   models.AuditActionLogin,
		Resource: "user",
		Metadata: models.JSONBMap{"event": "success"},
	}

	s.Require().NoError(s.repo.Create(entry))

	logs, total, err := s.repo.GetByUserID(s.testUser.ID, 0, 10)
	s.NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(logs, 1)
	s.Equal("success", logs[0].Metadata["event"])
}

func (s *AuditLogRepositorySuite) TestGetByUserID_NewestFirst() {
	now := time.Now()
	s.createLog(models.AuditActionLogin, now.Add(-2*time.Hour))
	newest := s.createLog(models.AuditActionLogout, now)

	logs, total, err := s.repo.GetByUserID(s.testUser.ID, 0, 10)
	s.NoError(err)
	s.EqualValues(2, total)
	s.Require().Len(logs, 2)
	s.Equal(newest.ID, logs[0].ID)
}

func (s *AuditLogRepositorySuite) TestGetByAction() {
	s.createLog(models.AuditActionLogin, time.Now())
	s.createLog(models.AuditActionLogin, time.Now())
	s.createLog(models.AuditActionRoleChanged, time.Now())

	logs, total, err := s.repo.GetByAction(models.AuditActionLogin, 0, 10)
	s.NoError(err)
	s.EqualValues(2, total)
	s.Len(logs, 2)
}

func (s *AuditLogRepositorySuite) TestDeleteOlderThan() {
	now := time.Now()
	s.createLog(models.AuditActionLogin, now.Add(-72*time.Hour))
	s.createLog(models.AuditActionLogin, now)

	deleted, err := s.repo.DeleteOlderThan(24 * time.Hour)
	s.NoError(err)
	s.EqualValues(1, deleted)

	_, total, err := s.repo.GetByUserID(s.testUser.ID, 0, 10)
	s.NoError(err)
	s.EqualValues(1, total)
}

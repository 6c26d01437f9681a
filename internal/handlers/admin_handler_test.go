package handlers_test

import (
	"log/slog"
	"net/http"
	"testing"

	"minibank/internal/database"
	"minibank/internal/handlers"
	"minibank/internal/models"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type AdminHandlerSuite struct {
	suite.Suite
	db       *database.DB
	echo     *echo.Echo
	userRepo repositories.UserRepositoryInterface
	admin    *models.User
	user     *models.User
}

func (s *AdminHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	s.userRepo = repositories.NewUserRepository(s.db.DB)
	accountRepo := repositories.NewAccountRepository(s.db.DB)
	auditRepo := repositories.NewAuditLogRepository(s.db.DB)
	directoryService := services.NewDirectoryService(s.userRepo, accountRepo, auditRepo, nil, slog.Default())

	handler := handlers.NewAdminHandler(directoryService)

	s.admin = database.CreateTestAdminUser(s.T(), s.db, "admin@example.com")
	s.user = database.CreateTestUser(s.T(), s.db, "jane@example.com")

	s.echo = newHandlerEcho()
	group := s.echo.Group("/api/v1/admin", withUser(s.admin))
	group.PUT("/users/:id/role", handler.AssignRole)
	group.POST("/users/:id/unlock", handler.UnlockUser)
}

func (s *AdminHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) TestAssignRole() {
	rec := doJSON(s.echo, http.MethodPut, "/api/v1/admin/users/"+s.user.ID.String()+"/role", `{"role":"admin"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.userRepo.GetByID(s.user.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, stored.Role)
}

func (s *AdminHandlerSuite) TestAssignRole_InvalidRole() {
	rec := doJSON(s.echo, http.MethodPut, "/api/v1/admin/users/"+s.user.ID.String()+"/role", `{"role":"superuser"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *AdminHandlerSuite) TestAssignRole_UnknownUser() {
	rec := doJSON(s.echo, http.MethodPut, "/api/v1/admin/users/"+uuid.New().String()+"/role", `{"role":"admin"}`)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *AdminHandlerSuite) TestUnlockUser() {
	s.user.Lock()
	s.Require().NoError(s.userRepo.UpdateFailedLoginAttempts(s.user))

	rec := doJSON(s.echo, http.MethodPost, "/api/v1/admin/users/"+s.user.ID.String()+"/unlock", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.userRepo.GetByID(s.user.ID)
	s.Require().NoError(err)
	s.False(stored.IsLocked())
	s.Zero(stored.FailedLoginAttempts)
}

func (s *AdminHandlerSuite) TestUnlockUser_MalformedID() {
	rec := doJSON(s.echo, http.MethodPost, "/api/v1/admin/users/not-a-uuid/unlock", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

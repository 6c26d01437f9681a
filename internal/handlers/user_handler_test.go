package handlers_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"minibank/internal/database"
	"minibank/internal/dto"
	"minibank/internal/handlers"
	custommw "minibank/internal/middleware"
	"minibank/internal/models"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// withUser injects the authenticated user's context the way RequireAuth does.
// Handler tests exercise the handlers, not the token verification.
func withUser(user *models.User) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", user.ID)
			c.Set("user_email", user.Email)
			c.Set("user_role", user.Role)
			c.Set("is_admin", user.IsAdmin())
			return next(c)
		}
	}
}

func newHandlerEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type UserHandlerSuite struct {
	suite.Suite
	db       *database.DB
	userRepo repositories.UserRepositoryInterface
	handler  *handlers.UserHandler
	password services.PasswordServiceInterface
	admin    *models.User
	user     *models.User
}

func (s *UserHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	s.userRepo = repositories.NewUserRepository(s.db.DB)
	accountRepo := repositories.NewAccountRepository(s.db.DB)
	auditRepo := repositories.NewAuditLogRepository(s.db.DB)

	directoryService := services.NewDirectoryService(s.userRepo, accountRepo, auditRepo, nil, slog.Default())
	s.password = services.NewPasswordService(s.userRepo)

	s.handler = handlers.NewUserHandler(directoryService, s.password)

	s.admin = database.CreateTestAdminUser(s.T(), s.db, "admin@example.com")
	s.user = database.CreateTestUser(s.T(), s.db, "jane@example.com")
}

func (s *UserHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestUserHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

// echoAs registers the user routes with the caller's identity injected
func (s *UserHandlerSuite) echoAs(caller *models.User) *echo.Echo {
	e := newHandlerEcho()
	group := e.Group("/api/v1/users", withUser(caller))
	group.GET("/all", s.handler.ListUsers)
	group.GET("/search-users", s.handler.SearchUsers)
	group.GET("/details/:id", s.handler.GetUserDetails)
	group.PUT("/update-profile/:id", s.handler.UpdateProfile)
	group.PUT("/update-password/:id", s.handler.UpdatePassword)
	group.DELETE("/:id", s.handler.DeleteUser)
	return e
}

func (s *UserHandlerSuite) TestListUsers() {
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/all", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ListUsersResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.EqualValues(2, resp.Total)
	s.Len(resp.Users, 2)
}

func (s *UserHandlerSuite) TestSearchUsers() {
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/search-users?term=jane", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ListUsersResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.EqualValues(1, resp.Total)
	s.Require().Len(resp.Users, 1)
	s.Equal("jane@example.com", resp.Users[0].Email)
}

func (s *UserHandlerSuite) TestSearchUsers_MissingTerm() {
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/search-users", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UserHandlerSuite) TestGetUserDetails() {
	account := database.CreateTestAccount(s.T(), s.db, s.user, models.AccountTypeSavings)
	e := s.echoAs(s.user)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/details/"+s.user.ID.String(), "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.UserDetailsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().NotNil(resp.User)
	s.Equal(s.user.Email, resp.User.Email)
	s.Require().Len(resp.User.Accounts, 1)
	s.Equal(account.AccountNumber, resp.User.Accounts[0].AccountNumber)
}

func (s *UserHandlerSuite) TestGetUserDetails_NotFound() {
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/details/"+uuid.New().String(), "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *UserHandlerSuite) TestGetUserDetails_MalformedID() {
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodGet, "/api/v1/users/details/not-a-uuid", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *UserHandlerSuite) TestUpdateProfile() {
	e := s.echoAs(s.user)

	body := `{"name":"Jane Renamed"}`
	rec := doJSON(e, http.MethodPut, "/api/v1/users/update-profile/"+s.user.ID.String(), body)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.userRepo.GetByID(s.user.ID)
	s.Require().NoError(err)
	s.Equal("Jane Renamed", stored.Name)
}

func (s *UserHandlerSuite) TestUpdateProfile_DuplicateEmail() {
	e := s.echoAs(s.user)

	body := `{"email":"admin@example.com"}`
	rec := doJSON(e, http.MethodPut, "/api/v1/users/update-profile/"+s.user.ID.String(), body)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *UserHandlerSuite) TestUpdatePassword() {
	hash, err := s.password.HashPassword("oldpassword1")
	s.Require().NoError(err)
	s.Require().NoError(s.userRepo.UpdatePasswordHash(s.user.ID, hash))

	e := s.echoAs(s.user)

	body := `{"currentPassword":"oldpassword1","newPassword":"newpassword1"}`
	rec := doJSON(e, http.MethodPut, "/api/v1/users/update-password/"+s.user.ID.String(), body)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.userRepo.GetByID(s.user.ID)
	s.Require().NoError(err)
	s.True(s.password.ComparePassword("newpassword1", stored.PasswordHash))
}

func (s *UserHandlerSuite) TestUpdatePassword_OnlySelf() {
	// Admins cannot change someone else's password either
	e := s.echoAs(s.admin)

	body := `{"currentPassword":"oldpassword1","newPassword":"newpassword1"}`
	rec := doJSON(e, http.MethodPut, "/api/v1/users/update-password/"+s.user.ID.String(), body)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *UserHandlerSuite) TestUpdatePassword_WrongCurrent() {
	hash, err := s.password.HashPassword("oldpassword1")
	s.Require().NoError(err)
	s.Require().NoError(s.userRepo.UpdatePasswordHash(s.user.ID, hash))

	e := s.echoAs(s.user)

	body := `{"currentPassword":"wrongpassword1","newPassword":"newpassword1"}`
	rec := doJSON(e, http.MethodPut, "/api/v1/users/update-password/"+s.user.ID.String(), body)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *UserHandlerSuite) TestDeleteUser() {
	account := database.CreateTestAccount(s.T(), s.db, s.user, models.AccountTypeSavings)
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodDelete, "/api/v1/users/"+s.user.ID.String(), "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	_, err := s.userRepo.GetByID(s.user.ID)
	s.ErrorIs(err, repositories.ErrUserNotFound)

	accountRepo := repositories.NewAccountRepository(s.db.DB)
	_, err = accountRepo.GetByID(account.ID)
	s.ErrorIs(err, repositories.ErrAccountNotFound)
}

func (s *UserHandlerSuite) TestDeleteUser_NotFound() {
	e := s.echoAs(s.admin)

	rec := doJSON(e, http.MethodDelete, fmt.Sprintf("/api/v1/users/%s", uuid.New()), "")
	s.Equal(http.StatusNotFound, rec.Code)
}

package repositories

import (
	"testing"

	"minibank/internal/database"
	"minibank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// UserRepositorySuite defines the test suite for UserRepository
type UserRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo UserRepositoryInterface
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

func (s *UserRepositorySuite) newUser(email, name string) *models.User {
	return &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: "hashedpassword",
		Role:         models.RoleCustomer,
	}
}

func (s *UserRepositorySuite) TestCreate() {
	user := s.newUser("jane@example.com", "Jane Doe")

	err := s.repo.Create(user)
	s.NoError(err)
	s.NotEqual(uuid.Nil, user.ID)

	err = s.repo.Create(s.newUser("jane@example.com", "Other Jane"))
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *UserRepositorySuite) TestCreateWithSavingsAccount() {
	user := s.newUser("jane@example.com", "Jane Doe")

	account, err := s.repo.CreateWithSavingsAccount(user, "1012345678")
	s.NoError(err)
	s.NotNil(account)
	s.Equal(user.ID, account.UserID)
	s.Equal(models.AccountTypeSavings, account.AccountType)
	s.True(account.Balance.IsZero())
}

func (s *UserRepositorySuite) TestCreateWithSavingsAccount_DuplicateEmailRollsBack() {
	first := s.newUser("jane@example.com", "Jane Doe")
	_, err := s.repo.CreateWithSavingsAccount(first, "1012345678")
	s.Require().NoError(err)

	second := s.newUser("jane@example.com", "Jane Again")
	_, err = s.repo.CreateWithSavingsAccount(second, "2012345678")
	s.ErrorIs(err, ErrUserAlreadyExists)

	// The account from the failed transaction must not exist
	var count int64
	s.NoError(s.db.Model(&models.Account{}).Where("account_number = ?", "2012345678").Count(&count).Error)
	s.Zero(count)
}

func (s *UserRepositorySuite) TestGetByEmail() {
	user := s.newUser("jane@example.com", "Jane Doe")
	s.Require().NoError(s.repo.Create(user))

	found, err := s.repo.GetByEmail("jane@example.com")
	s.NoError(err)
	s.Equal(user.ID, found.ID)

	_, err = s.repo.GetByEmail("missing@example.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestSearch() {
	s.Require().NoError(s.repo.Create(s.newUser("jane@example.com", "Jane Doe")))
	s.Require().NoError(s.repo.Create(s.newUser("john@example.com", "John Smith")))
	s.Require().NoError(s.repo.Create(s.newUser("alice@other.org", "Alice Brown")))

	// Case-insensitive match on name
	users, total, err := s.repo.Search("JANE", 0, 10)
	s.NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(users, 1)
	s.Equal("Jane Doe", users[0].Name)

	// Match on email domain
	users, total, err = s.repo.Search("example.com", 0, 10)
	s.NoError(err)
	s.EqualValues(2, total)
	s.Len(users, 2)

	// No matches
	_, total, err = s.repo.Search("nobody", 0, 10)
	s.NoError(err)
	s.Zero(total)
}

func (s *UserRepositorySuite) TestListUsers() {
	s.Require().NoError(s.repo.Create(s.newUser("a@example.com", "A User")))
	s.Require().NoError(s.repo.Create(s.newUser("b@example.com", "B User")))
	s.Require().NoError(s.repo.Create(s.newUser("c@example.com", "C User")))

	users, total, err := s.repo.ListUsers(0, 2)
	s.NoError(err)
	s.EqualValues(3, total)
	s.Len(users, 2)

	users, _, err = s.repo.ListUsers(2, 2)
	s.NoError(err)
	s.Len(users, 1)
}

func (s *UserRepositorySuite) TestUpdateFields() {
	user := s.newUser("jane@example.com", "Jane Doe")
	s.Require().NoError(s.repo.Create(user))

	err := s.repo.UpdateFields(user.ID, map[string]interface{}{"name": "Jane Updated"})
	s.NoError(err)

	found, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("Jane Updated", found.Name)

	err = s.repo.UpdateFields(uuid.New(), map[string]interface{}{"name": "Nobody"})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestUpdateRole() {
	user := s.newUser("jane@example.com", "Jane Doe")
	s.Require().NoError(s.repo.Create(user))

	err := s.repo.UpdateRole(user.ID, models.RoleAdmin)
	s.NoError(err)

	found, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal(models.RoleAdmin, found.Role)

	err = s.repo.UpdateRole(user.ID, "superuser")
	s.Error(err)
}

func (s *UserRepositorySuite) TestUpdatePasswordHash() {
	user := s.newUser("jane@example.com", "Jane Doe")
	s.Require().NoError(s.repo.Create(user))

	err := s.repo.UpdatePasswordHash(user.ID, "newhash")
	s.NoError(err)

	found, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.Equal("newhash", found.PasswordHash)

	err = s.repo.UpdatePasswordHash(user.ID, "")
	s.Error(err)
}

func (s *UserRepositorySuite) TestUnlockAccount() {
	user := s.newUser("jane@example.com", "Jane Doe")
	user.Lock()
	s.Require().NoError(s.repo.Create(user))

	err := s.repo.UnlockAccount(user.ID)
	s.NoError(err)

	found, err := s.repo.GetByID(user.ID)
	s.NoError(err)
	s.False(found.IsLocked())
	s.Zero(found.FailedLoginAttempts)
}

func (s *UserRepositorySuite) TestDelete() {
	user := s.newUser("jane@example.com", "Jane Doe")
	s.Require().NoError(s.repo.Create(user))

	err := s.repo.Delete(user.ID)
	s.NoError(err)

	_, err = s.repo.GetByID(user.ID)
	s.ErrorIs(err, ErrUserNotFound)

	err = s.repo.Delete(user.ID)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestGetByIDWithAccounts() {
	user := s.newUser("jane@example.com", "Jane Doe")
	account, err := s.repo.CreateWithSavingsAccount(user, "1012345678")
	s.Require().NoError(err)

	entry := &models.Transaction{
		AccountID:    account.ID,
		Type:         models.TransactionTypeDeposit,
		Amount:       decimal.NewFromFloat(100.00),
		BalanceAfter: decimal.NewFromFloat(100.00),
	}
	s.Require().NoError(s.db.Create(entry).Error)

	found, err := s.repo.GetByIDWithAccounts(user.ID)
	s.NoError(err)
	s.Require().Len(found.Accounts, 1)
	s.Require().Len(found.Accounts[0].Transactions, 1)
	s.Equal(entry.ID, found.Accounts[0].Transactions[0].ID)
}

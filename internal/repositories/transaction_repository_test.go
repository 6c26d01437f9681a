package repositories

import (
	"testing"
	"time"

	"minibank/internal/database"
	"minibank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// TransactionRepositorySuite defines the test suite for TransactionRepository
type TransactionRepositorySuite struct {
	suite.Suite
	db      *database.DB
	repo    TransactionRepositoryInterface
	account *models.Account
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)

	user := database.CreateTestUser(s.T(), s.db, "test@example.com")
	s.account = database.CreateTestAccount(s.T(), s.db, user, models.AccountTypeSavings)
}

func (s *TransactionRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestTransactionRepositorySuite(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

func (s *TransactionRepositorySuite) createEntry(amount float64, createdAt time.Time) *models.Transaction {
	entry := &models.Transaction{
		AccountID:    s.account.ID,
		Type:         models.TransactionTypeDeposit,
		Amount:       decimal.NewFromFloat(amount),
		BalanceAfter: decimal.NewFromFloat(amount),
		CreatedAt:    createdAt,
	}
	s.Require().NoError(s.repo.Create(entry))
	return entry
}

func (s *TransactionRepositorySuite) TestCreate() {
	entry := s.createEntry(100.00, time.Time{})
	s.NotEqual(uuid.Nil, entry.ID)
	s.NotEmpty(entry.Reference)
	s.NotZero(entry.CreatedAt)
}

func (s *TransactionRepositorySuite) TestCreate_InvalidEntryRejected() {
	entry := &models.Transaction{
		AccountID: s.account.ID,
		Type:      models.TransactionTypeDeposit,
		Amount:    decimal.Zero,
	}
	err := s.repo.Create(entry)
	s.Error(err)
}

func (s *TransactionRepositorySuite) TestImmutability() {
	entry := s.createEntry(100.00, time.Time{})

	entry.Description = "rewritten history"
	err := s.db.Save(entry).Error
	s.Error(err)
	s.Contains(err.Error(), "immutable")
}

func (s *TransactionRepositorySuite) TestGetByID() {
	entry := s.createEntry(100.00, time.Time{})

	found, err := s.repo.GetByID(entry.ID)
	s.NoError(err)
	s.Equal(entry.ID, found.ID)

	_, err = s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionRepositorySuite) TestGetByAccountID_NewestFirst() {
	now := time.Now()
	s.createEntry(10.00, now.Add(-2*time.Hour))
	s.createEntry(20.00, now.Add(-1*time.Hour))
	newest := s.createEntry(30.00, now)

	entries, total, err := s.repo.GetByAccountID(s.account.ID, 0, 10)
	s.NoError(err)
	s.EqualValues(3, total)
	s.Require().Len(entries, 3)
	s.Equal(newest.ID, entries[0].ID)
}

func (s *TransactionRepositorySuite) TestGetByAccountID_Pagination() {
	now := time.Now()
	for i := 0; i < 5; i++ {
		s.createEntry(float64(i+1), now.Add(time.Duration(i)*time.Minute))
	}

	entries, total, err := s.repo.GetByAccountID(s.account.ID, 0, 2)
	s.NoError(err)
	s.EqualValues(5, total)
	s.Len(entries, 2)

	entries, _, err = s.repo.GetByAccountID(s.account.ID, 4, 2)
	s.NoError(err)
	s.Len(entries, 1)
}

func (s *TransactionRepositorySuite) TestGetByDateRange() {
	now := time.Now()
	s.createEntry(10.00, now.Add(-48*time.Hour))
	inRange := s.createEntry(20.00, now.Add(-12*time.Hour))

	entries, err := s.repo.GetByDateRange(s.account.ID, now.Add(-24*time.Hour), now)
	s.NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(inRange.ID, entries[0].ID)
}

func (s *TransactionRepositorySuite) TestCountByAccountID() {
	count, err := s.repo.CountByAccountID(s.account.ID)
	s.NoError(err)
	s.Zero(count)

	s.createEntry(10.00, time.Time{})
	s.createEntry(20.00, time.Time{})

	count, err = s.repo.CountByAccountID(s.account.ID)
	s.NoError(err)
	s.EqualValues(2, count)
}

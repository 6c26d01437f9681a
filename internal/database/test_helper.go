package database

import (
	"testing"

	"minibank/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps a gorm handle. Production code works with *gorm.DB directly; the
// wrapper exists so the test helpers can share one migrated sqlite instance.
type DB struct {
	*gorm.DB
}

// AutoMigrate brings the test schema up to date.
func (db *DB) AutoMigrate() error {
	return autoMigrate(db.DB)
}

// SetupTestDB opens an in-memory sqlite database with the full schema.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	testDB := &DB{DB: db}
	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func newTestUser(t *testing.T, db *DB, email, name, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hashed_password",
		Name:         name,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}

	return user
}

// CreateTestUser inserts a customer with a placeholder password hash.
func CreateTestUser(t *testing.T, db *DB, email string) *models.User {
	return newTestUser(t, db, email, "Test User", models.RoleCustomer)
}

// CreateTestAdminUser inserts an admin with a placeholder password hash.
func CreateTestAdminUser(t *testing.T, db *DB, email string) *models.User {
	return newTestUser(t, db, email, "Admin User", models.RoleAdmin)
}

// CreateTestAccount inserts a zero-balance account for the user.
func CreateTestAccount(t *testing.T, db *DB, user *models.User, accountType string) *models.Account {
	t.Helper()

	account := &models.Account{
		AccountNumber: models.RandomAccountNumber(),
		UserID:        user.ID,
		AccountType:   accountType,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

// CleanupTestDB empties every table, children before parents.
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	for _, table := range []string{
		"transactions", "accounts", "audit_logs",
		"blacklisted_tokens", "refresh_tokens", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}

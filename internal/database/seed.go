package database

import (
	"fmt"
	"log/slog"

	"minibank/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	demoUserCount = 10
	demoPassword  = "password123"
)

// SeedDemoData populates the database with a demo admin, a set of fake
// customers with savings accounts and some ledger history. It is a no-op when
// any user already exists, so restarts do not duplicate data.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		slog.Info("demo data seeding skipped, users already exist")
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedUser(tx, "admin@minibank.local", "Demo Admin", models.RoleAdmin, string(passwordHash)); err != nil {
			return err
		}

		for i := 0; i < demoUserCount; i++ {
			email := gofakeit.Email()
			name := gofakeit.Name()
			if err := seedUser(tx, email, name, models.RoleCustomer, string(passwordHash)); err != nil {
				return err
			}
		}

		slog.Info("seeded demo users", "count", demoUserCount+1, "password", demoPassword)
		return nil
	})
}

func seedUser(tx *gorm.DB, email, name, role, passwordHash string) error {
	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := tx.Create(user).Error; err != nil {
		return fmt.Errorf("failed to seed user %s: %w", email, err)
	}

	account := &models.Account{
		AccountNumber: models.RandomAccountNumber(),
		UserID:        user.ID,
		AccountType:   models.AccountTypeSavings,
	}

	if err := tx.Create(account).Error; err != nil {
		return fmt.Errorf("failed to seed account for %s: %w", email, err)
	}

	return seedLedgerHistory(tx, account)
}

// seedLedgerHistory gives an account an opening deposit and a few random
// entries so the demo UI has something to show.
func seedLedgerHistory(tx *gorm.DB, account *models.Account) error {
	opening := decimal.NewFromFloat(gofakeit.Float64Range(500.0, 5000.0)).Round(2)

	balance := opening
	entries := []*models.Transaction{
		{
			AccountID:    account.ID,
			Type:         models.TransactionTypeDeposit,
			Amount:       opening,
			BalanceAfter: opening,
			Description:  "Opening deposit",
		},
	}

	for i := 0; i < gofakeit.Number(1, 4); i++ {
		amount := decimal.NewFromFloat(gofakeit.Float64Range(10.0, 200.0)).Round(2)

		entryType := models.TransactionTypeDeposit
		if gofakeit.Bool() && balance.GreaterThan(amount) {
			entryType = models.TransactionTypeWithdraw
			balance = balance.Sub(amount)
		} else {
			balance = balance.Add(amount)
		}

		entries = append(entries, &models.Transaction{
			AccountID:    account.ID,
			Type:         entryType,
			Amount:       amount,
			BalanceAfter: balance,
			Description:  gofakeit.Sentence(4),
		})
	}

	for _, entry := range entries {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to seed ledger entry: %w", err)
		}
	}

	if err := tx.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("balance", balance).Error; err != nil {
		return fmt.Errorf("failed to set seeded balance: %w", err)
	}

	return nil
}

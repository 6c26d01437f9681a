package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minibank/internal/config"
	"minibank/internal/database"
	"minibank/internal/handlers"
	custommw "minibank/internal/middleware"
	"minibank/internal/repositories"
	"minibank/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	if cfg.Database.SeedDemoData {
		if err := database.SeedDemoData(db); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	stopJanitor := database.StartTokenJanitor(db, time.Hour)
	defer stopJanitor()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// Services
	metrics := services.NewPrometheusMetrics()
	tokenService := services.NewTokenService(&cfg.JWT)
	passwordService := services.NewPasswordService(userRepo)
	authService := services.NewAuthService(
		userRepo, accountRepo, refreshTokenRepo, blacklistedTokenRepo, auditRepo,
		passwordService, tokenService, metrics, logger,
	)
	ledgerService := services.NewLedgerService(db, accountRepo, transactionRepo, metrics, logger)
	directoryService := services.NewDirectoryService(userRepo, accountRepo, auditRepo, metrics, logger)
	accountService := services.NewAccountService(userRepo, accountRepo, auditRepo, metrics, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, directoryService)
	userHandler := handlers.NewUserHandler(directoryService, passwordService)
	adminHandler := handlers.NewAdminHandler(directoryService)
	accountHandler := handlers.NewAccountHandler(accountService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler

	e.Use(custommw.RequestID())
	e.Use(custommw.PanicRecovery())
	e.Use(custommw.SecurityHeaders())
	e.Use(custommw.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	requireAuth := custommw.RequireAuth(tokenService, blacklistedTokenRepo)
	reconcileRole := custommw.ReconcileRole(userRepo, authService, logger)

	// Auth
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.GET("/me", authHandler.Me, requireAuth, reconcileRole)

	// User directory
	users := api.Group("/users", requireAuth, reconcileRole)
	users.GET("/all", userHandler.ListUsers, custommw.RequireAdmin())
	users.GET("/search-users", userHandler.SearchUsers)
	users.GET("/details/:id", userHandler.GetUserDetails, custommw.RequireSelfOrAdmin("id"))
	users.PUT("/update-profile/:id", userHandler.UpdateProfile, custommw.RequireSelfOrAdmin("id"))
	users.PUT("/update-password/:id", userHandler.UpdatePassword)
	users.DELETE("/:id", userHandler.DeleteUser, custommw.RequireAdmin())

	// Accounts
	accounts := api.Group("/accounts", requireAuth, reconcileRole)
	accounts.POST("/create-credit/:userId", accountHandler.CreateCreditAccount, custommw.RequireAdmin())
	accounts.PUT("/modify-credit/:userId/:accountId", accountHandler.ModifyCreditBalance, custommw.RequireAdmin())
	accounts.GET("/details/:userId/:accountId", accountHandler.GetAccountDetails, custommw.RequireSelfOrAdmin("userId"))
	accounts.GET("/list/:userId", accountHandler.ListAccounts, custommw.RequireSelfOrAdmin("userId"))

	// Ledger
	transactions := api.Group("/transactions", requireAuth, reconcileRole, custommw.RequireSelfOrAdmin("userId"))
	transactions.POST("/deposit/:userId/:accountId", transactionHandler.Deposit)
	transactions.POST("/withdraw/:userId/:accountId", transactionHandler.Withdraw)
	transactions.POST("/transfer/:userId/:accountId", transactionHandler.Transfer)
	transactions.POST("/payment/:userId/:accountId", transactionHandler.Payment)
	transactions.GET("/:userId/:accountId", transactionHandler.ListTransactions)

	// Admin
	admin := api.Group("/admin", requireAuth, reconcileRole, custommw.RequireAdmin())
	admin.PUT("/users/:id/role", adminHandler.AssignRole)
	admin.POST("/users/:id/unlock", adminHandler.UnlockUser)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("starting server", "addr", addr, "environment", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

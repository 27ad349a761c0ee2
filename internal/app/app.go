package app

import (
	"context"
	"fmt"

	"homebudget/internal/api"
	"homebudget/internal/api/handlers"
	"homebudget/internal/notify"
	"homebudget/internal/repository"
	"homebudget/internal/service"
	"homebudget/pkg/auth"
	"homebudget/pkg/config"
	"homebudget/pkg/database"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// App holds the wired services and the HTTP server built on them.
type App struct {
	DB       *database.DB
	JWT      *auth.JWTManager
	Auth     *service.AuthService
	Users    *service.UserService
	Budgets  *service.BudgetService
	Expenses *service.ExpenseService
	Reports  *service.ReportService
	HTTP     *fiber.App

	closers []func() error
}

// New opens the database and the notifier and wires every layer.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{DB: db}
	a.closers = append(a.closers, db.Close)

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.Notify.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.Notify.AMQPURL, cfg.Notify.Queue, logger)
		if err != nil {
			// registration must work without the broker
			logger.Warn("AMQP notifier unavailable, logging notifications instead", zap.Error(err))
		} else {
			notifier = amqpNotifier
			a.closers = append(a.closers, amqpNotifier.Close)
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(db, logger)
	budgetRepo := repository.NewBudgetRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	revocationRepo := repository.NewRevocationRepository(db, logger)

	a.JWT = auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp, cfg.JWT.Issuer)

	// Services
	a.Auth = service.NewAuthService(userRepo, revocationRepo, a.JWT, notifier, logger)
	a.Users = service.NewUserService(userRepo, revocationRepo, logger)
	a.Budgets = service.NewBudgetService(budgetRepo, expenseRepo, logger)
	a.Expenses = service.NewExpenseService(expenseRepo, budgetRepo, cfg.Policy.ExpenseAdmission, logger)
	a.Reports = service.NewReportService(a.Budgets)

	// Handlers
	respond := handlers.NewResponder(cfg.Policy.HideForeignRecords, logger)
	a.HTTP = api.SetupRouter(api.Handlers{
		Auth:    handlers.NewAuthHandler(a.Auth, respond, logger),
		User:    handlers.NewUserHandler(a.Users, respond, logger),
		Budget:  handlers.NewBudgetHandler(a.Budgets, respond, logger),
		Expense: handlers.NewExpenseHandler(a.Expenses, respond, logger),
		Report:  handlers.NewReportHandler(a.Reports, respond, logger),
		Health:  handlers.NewHealthHandler(db, logger),
	}, a.Auth, cfg, logger)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

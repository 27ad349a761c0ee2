package api

import (
	"time"

	"homebudget/docs"
	"homebudget/internal/api/handlers"
	"homebudget/pkg/config"
	"homebudget/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Budget  *handlers.BudgetHandler
	Expense *handlers.ExpenseHandler
	Report  *handlers.ReportHandler
	Health  *handlers.HealthHandler
}

func SetupRouter(
	h Handlers,
	authenticator middleware.Authenticator,
	cfg *config.Config,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "homebudget",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			} else {
				appLogger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Path()))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": msg,
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(appLogger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", h.Health.Health)

	// Auth routes (public)
	auth := app.Group("/user/auth")
	if cfg.RateLimit.AuthMax > 0 {
		auth.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.AuthMax,
			Expiration: authWindow(cfg.RateLimit.AuthWindow),
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests",
				})
			},
		}))
	}
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(authenticator, appLogger))

	protected.Delete("/auth/logout", h.Auth.Logout)

	users := protected.Group("/users/me")
	users.Get("", h.User.GetProfile)
	users.Put("", h.User.UpdateProfile)
	users.Delete("", h.User.DeleteAccount)
	users.Patch("/password", h.User.ChangePassword)

	budgets := protected.Group("/budgets")
	budgets.Post("", h.Budget.CreateBudget)
	budgets.Get("", h.Budget.ListBudgets)
	budgets.Get("/:id", h.Budget.GetBudget)
	budgets.Patch("/:id", h.Budget.UpdateBudget)
	budgets.Delete("/:id", h.Budget.DeleteBudget)

	expenses := protected.Group("/expenses")
	expenses.Post("", h.Expense.CreateExpense)
	expenses.Get("", h.Expense.ListExpenses)
	expenses.Get("/:id", h.Expense.GetExpense)
	expenses.Patch("/:id", h.Expense.UpdateExpense)
	expenses.Delete("/:id", h.Expense.DeleteExpense)

	reports := protected.Group("/reports")
	reports.Get("/spending", h.Report.Spending)
	reports.Get("/savings", h.Report.Savings)

	return app
}

func authWindow(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}

// Package server assembles the HTTP router from the service layer.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pitaka/internal/config"
	"pitaka/internal/events"
	"pitaka/internal/handlers"
	"pitaka/internal/middleware"
	"pitaka/internal/services"
	"pitaka/internal/validator"
)

// Services is the service layer the router dispatches to.
type Services struct {
	Users      services.UserServicer
	Categories services.CategoryServicer
	Banks      services.BankServicer
	Expenses   services.ExpenseServicer
	Budgets    services.BudgetServicer
	Forecasts  services.ForecastServicer
	Savings    services.SavingsServicer
	Insights   services.InsightServicer
	Reports    services.ReportServicer
	Audit      services.AuditServicer
}

// NewServices builds every service on db. Regeneration requests go to
// publisher and generated insights live for insightTTL.
func NewServices(db *gorm.DB, publisher events.Publisher, insightTTL time.Duration) Services {
	return Services{
		Users:      services.NewUserService(db),
		Categories: services.NewCategoryService(db),
		Banks:      services.NewBankService(db),
		Expenses:   services.NewExpenseService(db),
		Budgets:    services.NewBudgetService(db),
		Forecasts:  services.NewForecastService(db),
		Savings:    services.NewSavingsService(db),
		Insights:   services.NewInsightService(db, publisher, insightTTL),
		Reports:    services.NewReportService(db),
		Audit:      services.NewAuditService(db),
	}
}

// NewRouter wires middleware, swagger, health and every API route.
func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	loc := cfg.DefaultTimezone

	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	bankHandler := handlers.NewBankHandler(svc.Banks)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, svc.Audit, loc)
	spendingHandler := handlers.NewSpendingHandler(svc.Expenses, svc.Reports, loc)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Forecasts, svc.Audit, loc)
	savingsHandler := handlers.NewSavingsHandler(svc.Savings, svc.Audit, loc)
	insightHandler := handlers.NewInsightHandler(svc.Insights, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	protected.Use(middleware.UserResolver(svc.Users))

	protected.GET("/profile", userHandler.GetProfile)
	protected.PUT("/profile", userHandler.UpdateProfile)

	spendingRoutes := protected.Group("/spending")
	spendingRoutes.GET("/monthly", spendingHandler.GetMonthlySpending)
	spendingRoutes.GET("/history", spendingHandler.GetSpendingHistory)
	spendingRoutes.GET("/history/export", spendingHandler.ExportSpendingHistory)
	spendingRoutes.GET("/calendar", spendingHandler.GetMonthCalendar)

	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("/status", budgetHandler.GetBudgetStatus)
	budgets.GET("/forecast", budgetHandler.GetForecast)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/recent", expenseHandler.GetRecentExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	savings := protected.Group("/savings")
	savings.POST("/accounts", savingsHandler.CreateAccount)
	savings.GET("/accounts", savingsHandler.ListAccounts)
	savings.GET("/accounts/:id", savingsHandler.GetAccount)
	savings.PUT("/accounts/:id", savingsHandler.UpdateAccount)
	savings.DELETE("/accounts/:id", savingsHandler.DeleteAccount)
	savings.PUT("/accounts/:id/balance", savingsHandler.SetBalance)
	savings.POST("/accounts/:id/transactions", savingsHandler.PostTransaction)
	savings.GET("/transactions", savingsHandler.ListTransactions)
	savings.GET("/summary", savingsHandler.GetSummary)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	banks := protected.Group("/banks")
	banks.GET("", bankHandler.ListBanks)
	banks.GET("/:id", bankHandler.GetBank)

	insights := protected.Group("/insights")
	insights.GET("", insightHandler.GetInsights)
	insights.POST("/regenerate", insightHandler.RegenerateInsights)
	insights.POST("/clear-expired", insightHandler.ClearExpired)
	insights.DELETE("/:id", insightHandler.DeleteInsight)

	internal := router.Group("/internal")
	internal.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	internal.PUT("/users/:user_id/insights", insightHandler.IngestInsights)

	return router
}

package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/prasetyow/warecash/internal/handlers"
	authmw "github.com/prasetyow/warecash/internal/middleware/auth"
	"github.com/prasetyow/warecash/internal/roles"
)

type Deps struct {
	DB               *gorm.DB
	Gate             *authmw.Gate
	AuthHandler      *handlers.AuthHandler
	WarehouseHandler *handlers.WarehouseHandler
	CategoryHandler  *handlers.CategoryHandler
	BudgetHandler    *handlers.BudgetHandler
	FlowLogHandler   *handlers.FlowLogHandler
	AnalyticsHandler *handlers.AnalyticsHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api", d.Gate.RequireLogin)

	user := api.Group("/user")
	user.POST("/login/ldap", d.AuthHandler.LoginLDAP)
	user.POST("/refresh-token", d.AuthHandler.RefreshToken)
	user.DELETE("/logout", d.AuthHandler.Logout)

	warehouse := api.Group("/warehouse")
	warehouse.GET("", d.WarehouseHandler.ListWarehouses)
	warehouse.GET("/:id", d.WarehouseHandler.GetWarehouse)

	adminWh := api.Group("/warehouse", authmw.RequireRole(roles.RoleAdmin))
	adminWh.POST("", d.WarehouseHandler.CreateWarehouse)
	adminWh.PATCH("/:id", d.WarehouseHandler.UpdateWarehouse)
	adminWh.DELETE("/:id", d.WarehouseHandler.DeleteWarehouse)

	category := api.Group("/category")
	category.GET("", d.CategoryHandler.ListCategories)

	adminCat := api.Group("/category", authmw.RequireRole(roles.RoleAdmin, roles.RoleWarehouse))
	adminCat.POST("", d.CategoryHandler.CreateCategory)
	adminCat.PATCH("/:id", d.CategoryHandler.UpdateCategory)
	adminCat.DELETE("/:id", d.CategoryHandler.DeleteCategory)

	budget := api.Group("/budget")
	budget.GET("", d.BudgetHandler.ListBudgets)

	adminBudget := api.Group("/budget", authmw.RequireRole(roles.RoleAdmin, roles.RoleWarehouse))
	adminBudget.POST("", d.BudgetHandler.CreateBudget)
	adminBudget.PATCH("/:id", d.BudgetHandler.UpdateBudget)
	adminBudget.DELETE("/:id", d.BudgetHandler.DeleteBudget)

	flowlog := api.Group("/flowlog")
	flowlog.GET("", d.FlowLogHandler.ListFlowLogs)
	flowlog.GET("/search", d.FlowLogHandler.SearchFlowLogs)
	flowlog.POST("", d.FlowLogHandler.CreateFlowLog)
	flowlog.PATCH("/:id", d.FlowLogHandler.UpdateFlowLog)
	flowlog.DELETE("/:id", d.FlowLogHandler.DeleteFlowLog)

	analytics := api.Group("/analytics")
	analytics.GET("/summary", d.AnalyticsHandler.Summary)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mathew1327/Construction-tracker/internal/handlers"
	"github.com/Mathew1327/Construction-tracker/internal/middleware"
	"github.com/Mathew1327/Construction-tracker/internal/permissions"
)

type financeRouteDeps struct {
	Expenses  *handlers.ExpenseHandler
	Materials *handlers.MaterialHandler
	Reports   *handlers.ReportHandler
}

func registerFinanceRoutes(api *gin.RouterGroup, deps financeRouteDeps, checker middleware.PermissionChecker) {
	expenses := api.Group("/expenses")
	{
		expenses.GET("", middleware.RequirePermission(checker, permissions.ViewExpenses), deps.Expenses.List)
		expenses.GET("/categories", middleware.RequirePermission(checker, permissions.ViewExpenses), deps.Expenses.Categories)
		expenses.POST("", middleware.RequirePermission(checker, permissions.ManageExpenses), deps.Expenses.Create)
	}

	manageMaterials := middleware.RequirePermission(checker, permissions.ManageMaterials)
	api.GET("/materials", manageMaterials, deps.Materials.List)
	api.POST("/materials", manageMaterials, deps.Materials.Create)
	api.GET("/vendors", manageMaterials, deps.Materials.ListVendors)
	api.POST("/vendors", manageMaterials, deps.Materials.CreateVendor)

	reports := api.Group("/reports")
	{
		reports.GET("/expenses", middleware.RequirePermission(checker, permissions.ViewReports), deps.Reports.Expenses)
		reports.GET("/expenses/export", middleware.RequirePermission(checker, permissions.GenerateReports), deps.Reports.ExportExpenses)
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ispstock-api/internal/application/analytics"
	"github.com/jhoicas/ispstock-api/internal/application/auth"
	"github.com/jhoicas/ispstock-api/internal/application/goodsout"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/application/usecase"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC     *inventory.ItemUseCase
	AdjustUC   *inventory.AdjustStockUseCase
	GoodsOutUC *goodsout.WorkflowUseCase
	ReportUC   *analytics.ReportUseCase
	CategoryUC *usecase.CategoryUseCase
	SupplierUC *usecase.SupplierUseCase
	AuthUC     *auth.AuthUseCase
	Errors     *ErrorWriter
	JWTSecret  string
}

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Errors)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Inventario: las rutas fijas van antes de /:id
	inv := protected.Group("/inventory")
	invHandler := NewInventoryHandler(deps.ItemUC, deps.AdjustUC, deps.ReportUC, deps.Errors)
	inv.Post("/", invHandler.Create)
	inv.Get("/", invHandler.List)
	inv.Get("/low-stock", invHandler.LowStock)
	inv.Get("/movements", invHandler.Movements)
	inv.Get("/movements/stats", invHandler.MovementStats)
	inv.Get("/by-code/:code", invHandler.GetByCode)
	inv.Get("/:id", invHandler.GetByID)
	inv.Put("/:id", invHandler.Update)
	inv.Delete("/:id", invHandler.Delete)
	inv.Post("/:id/adjust-stock", invHandler.AdjustStock)
	inv.Get("/:id/movements", invHandler.ItemMovements)

	// Solicitudes de salida
	gor := protected.Group("/good-out-requests")
	gorHandler := NewGoodsOutHandler(deps.GoodsOutUC, deps.Errors)
	gor.Post("/", gorHandler.Create)
	gor.Get("/", gorHandler.List)
	gor.Get("/pending/count", gorHandler.PendingCount)
	gor.Get("/:id", gorHandler.GetByID)
	gor.Put("/:id/approve", gorHandler.Approve)
	gor.Put("/:id/reject", gorHandler.Reject)
	gor.Delete("/:id", gorHandler.Cancel)

	// Reportes (técnicos no tienen acceso)
	reports := protected.Group("/reports", RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleSales))
	reportHandler := NewReportHandler(deps.ReportUC, deps.Errors)
	reports.Get("/stock-variance", reportHandler.StockVariance)
	reports.Get("/stock-aging", reportHandler.StockAging)
	reports.Get("/valuation", reportHandler.Valuation)

	// Catálogos
	catalog := NewCatalogHandler(deps.CategoryUC, deps.SupplierUC, deps.Errors)
	categories := protected.Group("/categories")
	categories.Post("/", catalog.CreateCategory)
	categories.Get("/", catalog.ListCategories)
	categories.Get("/:id", catalog.GetCategory)
	categories.Put("/:id", catalog.UpdateCategory)
	categories.Delete("/:id", catalog.DeleteCategory)
	suppliers := protected.Group("/suppliers")
	suppliers.Post("/", catalog.CreateSupplier)
	suppliers.Get("/", catalog.ListSuppliers)
	suppliers.Get("/:id", catalog.GetSupplier)
	suppliers.Put("/:id", catalog.UpdateSupplier)
	suppliers.Delete("/:id", catalog.DeleteSupplier)
}

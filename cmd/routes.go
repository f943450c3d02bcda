package main

import (
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"dinepos/internal/caching"
	"dinepos/internal/handlers"
	"dinepos/internal/middleware"
	"dinepos/internal/models"
)

type routeDeps struct {
	jwtConfig echojwt.Config
	cache     caching.CacheService
	rateLimit int
	rbac      *middleware.RBACMiddleware

	orders    *handlers.OrderHandlers
	bills     *handlers.BillHandlers
	tables    *handlers.TableHandlers
	inventory *handlers.InventoryHandlers
	items     *handlers.ItemHandlers
	settings  *handlers.SettingsHandlers
	analytics *handlers.AnalyticsHandlers
	me        *handlers.MeHandlers
}

func registerRoutes(e *echo.Echo, vm *middleware.VersionMiddleware, d routeDeps) {
	v1 := e.Group("/v1")
	v1.Use(vm.VersionHeader("v1"))
	v1.Use(echojwt.WithConfig(d.jwtConfig))
	v1.Use(middleware.Identity())
	v1.Use(middleware.RateLimit(d.cache, d.rateLimit, time.Minute))

	can := d.rbac.RequirePermission

	v1.GET("/me/permissions", d.me.Permissions)

	v1.GET("/orders", d.orders.ListOrders, can(models.PermOrdersStatus))
	v1.POST("/orders", d.orders.CreateOrder, can(models.PermOrdersCreate))
	v1.GET("/orders/:id", d.orders.GetOrder, can(models.PermOrdersStatus))
	v1.PATCH("/orders/:id/items", d.orders.ModifyOrderItems, can(models.PermOrdersUpdate))
	v1.PATCH("/orders/:id/status", d.orders.UpdateOrderStatus, can(models.PermOrdersStatus))

	v1.POST("/bills", d.bills.GenerateBill, can(models.PermBillsCreate))
	v1.GET("/bills/:orderId", d.bills.GetBill, can(models.PermBillsView))
	v1.GET("/bills/:orderId/receipt", d.bills.GetReceipt, can(models.PermBillsView))

	v1.GET("/tables", d.tables.ListTables, can(models.PermTablesView))
	v1.GET("/tables/:id", d.tables.GetTable, can(models.PermTablesView))

	v1.GET("/inventory", d.inventory.ListInventory, can(models.PermInventoryView))
	v1.GET("/inventory/low-stock", d.inventory.LowStock, can(models.PermInventoryView))
	v1.PUT("/inventory/:itemId", d.inventory.SetStock, can(models.PermInventoryAdjust))
	v1.GET("/inventory/:itemId/logs", d.inventory.GetLogs, can(models.PermInventoryView))

	v1.GET("/items", d.items.ListItems)
	v1.POST("/items", d.items.CreateItem, can(models.PermItemsManage))
	v1.GET("/items/:id", d.items.GetItem)
	v1.PUT("/items/:id", d.items.UpdateItem, can(models.PermItemsManage))

	v1.GET("/settings", d.settings.GetSettings)
	v1.PUT("/settings", d.settings.PutSettings, can(models.PermSettingsManage))

	v1.GET("/analytics/summary", d.analytics.Summary, can(models.PermAnalyticsView))
}

package router

import (
	"time"

	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
)

// Handlers bundles every procurement handler
type Handlers struct {
	Orders      *handler.OrderHandler
	Transitions *handler.TransitionHandler
	Reports     *handler.ReportHandler
	Ledger      *handler.LedgerHandler
	Partners    *handler.PartnerHandler
	Inventory   *handler.InventoryHandler
	System      *handler.SystemHandler
}

// RegisterProcurement adds every procurement route group to r.
// Report queries get their own deadline.
func RegisterProcurement(r *Router, h Handlers, reportTimeout time.Duration) {
	orders := NewDomainGroup("orders", "/orders/:kind")
	orders.POST("", h.Orders.Create).
		GET("", h.Orders.List).
		GET("/:id", h.Orders.Get).
		PUT("/:id", h.Orders.Update).
		DELETE("/:id", h.Orders.Delete).
		POST("/:id/payment", h.Orders.MarkPaid).
		POST("/:id/lines", h.Orders.AddLine).
		PUT("/:id/lines/:lineId", h.Orders.UpdateLine).
		DELETE("/:id/lines/:lineId", h.Orders.RemoveLine).
		POST("/:id/lines/:lineId/technician", h.Orders.AssignTechnician).
		POST("/:id/transitions/:name", h.Transitions.Submit).
		GET("/:id/transitions/:name/preview", h.Transitions.Preview)

	reports := NewDomainGroup("reports", "/reports").Use(middleware.Timeout(reportTimeout))
	reports.GET("/overview", h.Reports.Overview).
		GET("/trends", h.Reports.Trends).
		GET("/debts", h.Reports.Debts).
		GET("/cash-flow", h.Reports.CashFlow)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.POST("/income", h.Ledger.RecordIncome).
		DELETE("/income/:id", h.Ledger.DeleteIncome).
		POST("/expense", h.Ledger.RecordExpense).
		DELETE("/expense/:id", h.Ledger.DeleteExpense)

	partners := NewDomainGroup("partners", "/partners")
	partners.POST("/reconcile", h.Partners.Reconcile)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/batches/expiring", h.Inventory.ExpiringBatches)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.Info)

	r.Register(orders).
		Register(reports).
		Register(ledger).
		Register(partners).
		Register(inventory).
		Register(system)
}

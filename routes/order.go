package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/boutiqueware/boutique-api/controllers/order"
	"github.com/boutiqueware/boutique-api/events"
	"github.com/boutiqueware/boutique-api/middleware"
	"github.com/boutiqueware/boutique-api/store"
)

// SetupOrderRoutes registers all "/orders" endpoints. Submission is open
// to any authenticated user; the dashboard endpoints require the admin
// role on top of that.
func SetupOrderRoutes(r *gin.Engine, carts store.CartStore, orders store.LifecycleManager, hub *events.Hub) {
	orderGroup := r.Group("/orders")
	orderGroup.Use(middleware.ValidateToken)
	{
		// Submit the caller's cart
		orderGroup.POST("", orderControllers.SubmitOrder(carts, orders))

		adminGroup := orderGroup.Group("")
		adminGroup.Use(middleware.RequireAdmin)
		{
			// Dashboard reads
			adminGroup.GET("", orderControllers.GetAllOrders(orders))
			adminGroup.GET("/states", orderControllers.GetOrderStates(orders))

			// Advance an order to a new state
			adminGroup.PATCH("/:orderID/state", orderControllers.AdvanceOrderState(orders))

			// Excel export of all orders
			adminGroup.GET("/export-excel", orderControllers.ExportOrdersToExcel(orders))

			// websocket endpoint for real-time lifecycle events
			adminGroup.GET("/ws", orderControllers.OrderFeed(hub))
		}
	}
}

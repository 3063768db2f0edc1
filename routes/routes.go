package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/events"
	"github.com/boutiqueware/boutique-api/store"
)

// SetupRoutes is the single entry-point that wires up the public, cart,
// and order route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, carts store.CartStore, orders store.LifecycleManager, hub *events.Hub) {
	// Public routes (no middleware)
	SetupAuthRoutes(r, db)
	SetupProductRoutes(r, db)

	// Cart routes (JWT-protected)
	SetupCartRoutes(r, db, carts)

	// Order routes (JWT-protected, dashboard part admin-only)
	SetupOrderRoutes(r, carts, orders, hub)
}

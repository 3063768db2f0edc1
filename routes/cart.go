package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/boutiqueware/boutique-api/controllers/cart"
	"github.com/boutiqueware/boutique-api/middleware"
	"github.com/boutiqueware/boutique-api/store"
)

// SetupCartRoutes registers all "/cart" endpoints. Requires JWT middleware.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB, carts store.CartStore) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.GET("", cartControllers.GetCart(carts))
		cartGroup.POST("", cartControllers.AddCartItem(db, carts))
		cartGroup.DELETE("/:product_id", cartControllers.RemoveCartItem(carts))
		cartGroup.DELETE("", cartControllers.ClearCart(carts))
	}
}

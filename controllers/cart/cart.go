package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/middleware"
	"github.com/boutiqueware/boutique-api/models"
	"github.com/boutiqueware/boutique-api/store"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
}

// GET /cart
func GetCart(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		lines, err := carts.GetCart(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// POST /cart
//
// Adds N more of a product: an existing line is merged by summing
// quantities, never overwritten.
func AddCartItem(db *gorm.DB, carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		var product models.Product
		if err := db.First(&product, "id = ?", input.ProductID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}

		err := carts.AddItem(c.Request.Context(), userID, product.ID, input.Quantity)
		middleware.RecordOrderOperation("add_item", err == nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
	}
}

// DELETE /cart/:product_id
//
// Removing an absent line, or removing from a user with no cart at all,
// is a no-op by design.
func RemoveCartItem(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil || productID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		err = carts.RemoveItem(c.Request.Context(), userID, uint(productID))
		middleware.RecordOrderOperation("remove_item", err == nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
	}
}

// DELETE /cart
func ClearCart(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		err := carts.ClearCart(c.Request.Context(), userID)
		middleware.RecordOrderOperation("clear_cart", err == nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

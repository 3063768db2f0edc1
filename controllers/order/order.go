package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/middleware"
	"github.com/boutiqueware/boutique-api/store"
)

type AdvanceStateInput struct {
	StateID uint `json:"state_id" binding:"required"`
}

// POST /orders
//
// Promotes the caller's open cart into a submitted order. The cart must
// be non-empty; the lifecycle manager relies on this check.
func SubmitOrder(carts store.CartStore, orders store.LifecycleManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		lines, err := carts.GetCart(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if len(lines) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		err = orders.Submit(c.Request.Context(), userID)
		middleware.RecordOrderOperation("submit", err == nil)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit order"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Order submitted"})
	}
}

// GET /orders
func GetAllOrders(orders store.LifecycleManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /orders/states
func GetOrderStates(orders store.LifecycleManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		states, err := orders.ListStates(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order states"})
			return
		}
		c.JSON(http.StatusOK, states)
	}
}

// PATCH /orders/:orderID/state
func AdvanceOrderState(orders store.LifecycleManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("orderID"))
		if err != nil || orderID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		var input AdvanceStateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		err = orders.AdvanceState(c.Request.Context(), uint(orderID), input.StateID)
		middleware.RecordOrderOperation("advance_state", err == nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order state"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order state updated"})
	}
}

// GET /orders/export-excel
func ExportOrdersToExcel(orders store.LifecycleManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{"ID", "OrderRef", "UserEmail", "State", "Items", "Total", "CreatedAt"}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range list {
			total := decimal.Zero
			items := 0
			for _, line := range o.Lines {
				total = total.Add(line.Product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
				items += line.Quantity
			}

			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.OrderRef)
			row.AddCell().SetValue(o.User.Email)
			row.AddCell().SetValue(o.State.Label)
			row.AddCell().SetValue(items)
			row.AddCell().SetValue(total.StringFixed(2))
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}

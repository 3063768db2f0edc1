package models

import "time"

// StateOpenCart is the reserved state id of a user's in-progress cart.
// Every other row of order_states is an administrative state reached
// after submission; that set is seed data, not logic.
const StateOpenCart uint = 1

type OrderState struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Label string `gorm:"uniqueIndex;not null" json:"label"`
}

type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// The partial unique index backstops the one-open-cart-per-user
	// invariant at the schema level; the literal matches StateOpenCart.
	UserID    uint        `gorm:"not null;index;uniqueIndex:idx_orders_open_user,where:state_id = 1" json:"user_id"`
	User      User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StateID   uint        `gorm:"not null;index" json:"state_id"`
	State     OrderState  `gorm:"foreignKey:StateID" json:"state,omitempty"`
	OrderRef  string      `json:"order_ref,omitempty"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderLine struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index;uniqueIndex:idx_order_line_product" json:"order_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_order_line_product" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int     `gorm:"not null" json:"quantity"`
}

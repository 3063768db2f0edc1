package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boutiqueware/boutique-api/models"
)

// CartLine is one product of the user's open cart joined with its catalog
// data. LineTotal is computed at read time, never stored.
type CartLine struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartStore persists the line items of a user's single open order. The
// open order itself is created lazily on the first AddItem. None of the
// mutations fail on missing data; storage faults propagate untranslated.
type CartStore interface {
	GetCart(ctx context.Context, userID uint) ([]CartLine, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uint) error
	ClearCart(ctx context.Context, userID uint) error
}

type cartStore struct {
	db *gorm.DB
}

func NewCartStore(db *gorm.DB) CartStore {
	return &cartStore{db: db}
}

func (s *cartStore) GetCart(ctx context.Context, userID uint) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	err := s.db.WithContext(ctx).
		Table("order_lines").
		Select("order_lines.product_id, products.name, products.image, products.unit_price, order_lines.quantity").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Joins("JOIN products ON products.id = order_lines.product_id").
		Where("orders.user_id = ? AND orders.state_id = ?", userID, models.StateOpenCart).
		Order("order_lines.id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
	}
	return lines, nil
}

// AddItem merges repeated additions of the same product: the whole
// find-or-create plus upsert runs in one transaction, and the quantity
// merge is a single conditional statement, so two concurrent additions
// cannot lose an update.
func (s *cartStore) AddItem(ctx context.Context, userID, productID uint, quantity int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrCreateOpenOrder(tx, userID)
		if err != nil {
			return err
		}

		line := models.OrderLine{OrderID: order.ID, ProductID: productID, Quantity: quantity}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + excluded.quantity"),
			}),
		}).Create(&line).Error
	})
}

// findOrCreateOpenOrder resolves the user's single open order. The
// partial unique index on orders(user_id) makes the create side safe
// under concurrency: a racing creator's insert becomes a no-op and the
// winner's row is re-read.
func findOrCreateOpenOrder(tx *gorm.DB, userID uint) (models.Order, error) {
	var order models.Order
	err := tx.Where("user_id = ? AND state_id = ?", userID, models.StateOpenCart).
		First(&order).Error
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return order, err
	}

	order = models.Order{UserID: userID, StateID: models.StateOpenCart}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&order).Error; err != nil {
		return order, err
	}
	if order.ID != 0 {
		return order, nil
	}

	// Lost the race: another request created the open order first.
	err = tx.Where("user_id = ? AND state_id = ?", userID, models.StateOpenCart).
		First(&order).Error
	return order, err
}

func (s *cartStore) RemoveItem(ctx context.Context, userID, productID uint) error {
	return s.db.WithContext(ctx).
		Where("product_id = ? AND order_id IN (?)", productID, s.openOrderIDs(ctx, userID)).
		Delete(&models.OrderLine{}).Error
}

// ClearCart deletes every line of the open order but keeps the order row
// itself, so the cart stays addressable for the next AddItem.
func (s *cartStore) ClearCart(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Where("order_id IN (?)", s.openOrderIDs(ctx, userID)).
		Delete(&models.OrderLine{}).Error
}

func (s *cartStore) openOrderIDs(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Select("id").
		Where("user_id = ? AND state_id = ?", userID, models.StateOpenCart)
}

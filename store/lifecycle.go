package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/events"
	"github.com/boutiqueware/boutique-api/models"
)

// LifecycleManager moves orders through their states: Submit promotes a
// user's open cart into a submitted order, AdvanceState applies whatever
// state the dashboard picked. Each transition is a single atomic write
// and publishes a lifecycle event on success.
//
// Submit assumes the caller already verified the cart is non-empty; it
// only guards against the open order being absent entirely.
type LifecycleManager interface {
	Submit(ctx context.Context, userID uint) error
	AdvanceState(ctx context.Context, orderID, stateID uint) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListStates(ctx context.Context) ([]models.OrderState, error)
}

type lifecycleManager struct {
	db  *gorm.DB
	pub events.Publisher
}

func NewLifecycleManager(db *gorm.DB, pub events.Publisher) LifecycleManager {
	return &lifecycleManager{db: db, pub: pub}
}

func (m *lifecycleManager) Submit(ctx context.Context, userID uint) error {
	// The initial submitted state is the lowest-id administrative state,
	// so the post-submission sequence stays pure seed data.
	var next models.OrderState
	if err := m.db.WithContext(ctx).
		Where("id <> ?", models.StateOpenCart).
		Order("id").
		First(&next).Error; err != nil {
		return err
	}

	res := m.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND state_id = ?", userID, models.StateOpenCart).
		Updates(map[string]interface{}{
			"state_id":  next.ID,
			"order_ref": newOrderRef(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	m.pub.Publish(events.Event{Kind: events.KindOrderCreated, UserID: userID})
	return nil
}

// AdvanceState writes the new state unconditionally: no legality check on
// the transition, and re-applying the current state succeeds and publishes
// again. The dashboard is trusted with the state table it was shown.
func (m *lifecycleManager) AdvanceState(ctx context.Context, orderID, stateID uint) error {
	if err := m.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("state_id", stateID).Error; err != nil {
		return err
	}

	m.pub.Publish(events.Event{Kind: events.KindStateChanged, OrderID: orderID, NewStateID: stateID})
	return nil
}

// ListOrders returns every submitted order for the dashboard, newest
// first. Open carts belong to the cart store and are excluded.
func (m *lifecycleManager) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := m.db.WithContext(ctx).
		Preload("User").
		Preload("State").
		Preload("Lines").
		Preload("Lines.Product").
		Where("state_id <> ?", models.StateOpenCart).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (m *lifecycleManager) ListStates(ctx context.Context) ([]models.OrderState, error) {
	var states []models.OrderState
	if err := m.db.WithContext(ctx).Order("id").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// Example: 20250908130500-0f8fad5b-d9cb-469f-a165-70867728950e
func newOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/models"
)

func TestGetCartWithoutOrderIsEmpty(t *testing.T) {
	carts := NewCartStore(newTestDB(t))

	lines, err := carts.GetCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	carts := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := carts.AddItem(ctx, 7, 3, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != 3 || lines[0].Quantity != 2 {
		t.Fatalf("expected one line for product 3 with quantity 2, got %+v", lines)
	}

	// Adding the same product again merges by summing, never duplicates.
	if err := carts.AddItem(ctx, 7, 3, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lines, err = carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line with quantity 3, got %+v", lines)
	}

	wantTotal := lines[0].UnitPrice.Mul(decimal.NewFromInt(3))
	if !lines[0].LineTotal.Equal(wantTotal) {
		t.Fatalf("expected line total %s, got %s", wantTotal, lines[0].LineTotal)
	}
}

func TestAddItemKeepsSeparateProducts(t *testing.T) {
	carts := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := carts.AddItem(ctx, 7, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := carts.AddItem(ctx, 7, 2, 4); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %+v", lines)
	}
}

func TestAddItemDoesNotLeakAcrossUsers(t *testing.T) {
	carts := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := carts.AddItem(ctx, 7, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := carts.AddItem(ctx, 8, 1, 5); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("user 7's cart affected by user 8, got %+v", lines)
	}
}

func TestSecondOpenOrderIsRejectedBySchema(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartStore(db)
	ctx := context.Background()

	if err := carts.AddItem(ctx, 7, 3, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// The partial unique index is the backstop: even a direct insert of a
	// second open order for the same user must fail at the database.
	dup := models.Order{UserID: 7, StateID: models.StateOpenCart}
	if err := db.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate-key error for second open order, got %v", err)
	}

	// A submitted order for the same user is still fine.
	closed := models.Order{UserID: 7, StateID: 2}
	if err := db.Create(&closed).Error; err != nil {
		t.Fatalf("creating a non-open order should succeed: %v", err)
	}

	if err := carts.AddItem(ctx, 7, 3, 1); err != nil {
		t.Fatalf("AddItem after contention: %v", err)
	}
	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != 3 || lines[0].Quantity != 2 {
		t.Fatalf("expected a single merged line for product 3, got %+v", lines)
	}
}

func TestConcurrentAddsShareOneOpenOrder(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartStore(db)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := carts.AddItem(ctx, 7, 3, 1); err != nil {
			t.Fatalf("AddItem %d: %v", i, err)
		}
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).
		Where("user_id = ? AND state_id = ?", 7, models.StateOpenCart).
		Count(&orderCount).Error; err != nil {
		t.Fatalf("count open orders: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("expected exactly one open order, got %d", orderCount)
	}

	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("expected one line with quantity 4, got %+v", lines)
	}
}

func TestRemoveItemWithoutCartIsNoOp(t *testing.T) {
	carts := NewCartStore(newTestDB(t))

	if err := carts.RemoveItem(context.Background(), 7, 3); err != nil {
		t.Fatalf("RemoveItem on absent cart should be a no-op, got %v", err)
	}
}

func TestRemoveItemDeletesOnlyThatLine(t *testing.T) {
	carts := NewCartStore(newTestDB(t))
	ctx := context.Background()

	if err := carts.AddItem(ctx, 7, 1, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := carts.AddItem(ctx, 7, 2, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if err := carts.RemoveItem(ctx, 7, 1); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != 2 {
		t.Fatalf("expected only product 2 left, got %+v", lines)
	}
}

func TestClearCartKeepsOrderAddressable(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartStore(db)
	ctx := context.Background()

	if err := carts.AddItem(ctx, 7, 1, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := carts.ClearCart(ctx, 7); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	lines, err := carts.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", lines)
	}

	// The order row itself survives; the next AddItem reuses it.
	var orderCount int64
	if err := db.Model(&models.Order{}).Where("user_id = ?", 7).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("expected the open order row to survive clear, got %d rows", orderCount)
	}

	if err := carts.AddItem(ctx, 7, 2, 1); err != nil {
		t.Fatalf("AddItem after clear: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("user_id = ?", 7).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("AddItem after clear created a second open order, got %d rows", orderCount)
	}
}

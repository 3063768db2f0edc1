package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/events"
	"github.com/boutiqueware/boutique-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "store.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.OrderState{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	states := []models.OrderState{
		{ID: models.StateOpenCart, Label: "open cart"},
		{ID: 2, Label: "submitted"},
		{ID: 3, Label: "in preparation"},
	}
	if err := db.Create(&states).Error; err != nil {
		t.Fatalf("seed states: %v", err)
	}

	products := []models.Product{
		{ID: 1, Name: "Espresso", UnitPrice: decimal.NewFromFloat(2.50)},
		{ID: 2, Name: "Cappuccino", UnitPrice: decimal.NewFromFloat(3.75)},
		{ID: 3, Name: "Croissant", UnitPrice: decimal.NewFromFloat(2.95)},
	}
	if err := db.Create(&products).Error; err != nil {
		t.Fatalf("seed products: %v", err)
	}

	return db
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

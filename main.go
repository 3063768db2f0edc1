package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/boutiqueware/boutique-api/config"
	"github.com/boutiqueware/boutique-api/events"
	"github.com/boutiqueware/boutique-api/middleware"
	"github.com/boutiqueware/boutique-api/models"
	"github.com/boutiqueware/boutique-api/routes"
	"github.com/boutiqueware/boutique-api/store"
)

func main() {
	log.Println("Starting boutique-api...")

	// Load environment variables
	_ = godotenv.Load()
	cfg := config.Load()

	// Init DB
	db := initDatabase(cfg)

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.OrderState{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// Seed the order-state lookup table and a demo catalog
	if err := seedOrderStates(db); err != nil {
		log.Fatalf("Seeding order states failed: %v", err)
	}
	if err := seedProducts(db); err != nil {
		log.Fatalf("Seeding products failed: %v", err)
	}

	// Core wiring: broadcast hub, cart store, order lifecycle
	hub := events.NewHub()
	carts := store.NewCartStore(db)
	orders := store.NewLifecycleManager(db, hub)

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Prometheus metrics
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup routes
	routes.SetupRoutes(r, db, carts, orders, hub)

	// Start server
	log.Printf("Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(cfg *config.Config) *gorm.DB {
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("DB connection failed: %v", err)
		}
		return db
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}
	return db
}

// seedOrderStates inserts the state lookup table. Id 1 is the reserved
// open-cart state; the rest is the administrative sequence the dashboard
// works with. Labels are configuration, not logic.
func seedOrderStates(db *gorm.DB) error {
	states := []models.OrderState{
		{ID: models.StateOpenCart, Label: "open cart"},
		{ID: 2, Label: "submitted"},
		{ID: 3, Label: "in preparation"},
		{ID: 4, Label: "shipped"},
		{ID: 5, Label: "delivered"},
	}
	for _, state := range states {
		if err := db.FirstOrCreate(&state, models.OrderState{ID: state.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedProducts fills the read-only catalog on first boot.
func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Espresso", Image: "/img/espresso.jpg", UnitPrice: decimal.NewFromFloat(2.50)},
		{Name: "Cappuccino", Image: "/img/cappuccino.jpg", UnitPrice: decimal.NewFromFloat(3.75)},
		{Name: "Croissant", Image: "/img/croissant.jpg", UnitPrice: decimal.NewFromFloat(2.95)},
		{Name: "Baguette", Image: "/img/baguette.jpg", UnitPrice: decimal.NewFromFloat(4.25)},
		{Name: "Quiche Lorraine", Image: "/img/quiche.jpg", UnitPrice: decimal.NewFromFloat(6.50)},
	}
	return db.Create(&products).Error
}

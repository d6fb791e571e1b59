// Seed fills an empty local store with demo accounts and a small clothing
// catalog so the agent is usable before its first successful remote pull.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shopsync/internal/core/config"
	"shopsync/internal/core/database"
	"shopsync/internal/core/logger"
	"shopsync/internal/domain"
	"shopsync/internal/repo"
	"shopsync/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Product{}, &domain.CartItem{}, &domain.Order{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	ctx := context.Background()
	users := repo.NewUserRepo(db)
	products := repo.NewProductRepo(db)

	for _, u := range demoUsers() {
		if err := users.Upsert(ctx, &u); err != nil {
			log.Fatal("seed user", zap.String("email", u.Email), zap.Error(err))
		}
	}
	for _, p := range demoProducts() {
		if err := products.Upsert(ctx, &p); err != nil {
			log.Fatal("seed product", zap.String("name", p.Name), zap.Error(err))
		}
	}
	log.Info("seed done",
		zap.Int("users", len(demoUsers())),
		zap.Int("products", len(demoProducts())),
	)
}

func demoUsers() []domain.User {
	return []domain.User{
		{
			ID:           utils.NewID(),
			Email:        "admin@shop.local",
			PasswordHash: utils.HashPassword("admin123"),
			Name:         "Store Admin",
			IsAdmin:      true,
		},
		{
			ID:           utils.NewID(),
			Email:        "demo@shop.local",
			PasswordHash: utils.HashPassword("demo1234"),
			Name:         "Demo Shopper",
			Phone:        "555-0100",
			Address:      "1 Demo Street",
		},
	}
}

func demoProducts() []domain.Product {
	now := time.Now().UnixMilli()
	allSizes := []string{"S", "M", "L", "XL"}
	return []domain.Product{
		{
			ID: utils.NewID(), Name: "Classic White Tee",
			Description: "Heavyweight cotton t-shirt with a relaxed fit.",
			Price:       19.99, Category: "T-Shirts", Sizes: allSizes,
			Stock: 120, Active: true, CreatedAt: now,
		},
		{
			ID: utils.NewID(), Name: "Slim Fit Jeans",
			Description: "Stretch denim, mid rise, tapered leg.",
			Price:       59.90, Category: "Jeans", Sizes: allSizes,
			Stock: 45, Active: true, CreatedAt: now,
		},
		{
			ID: utils.NewID(), Name: "Hooded Sweatshirt",
			Description: "Fleece-lined hoodie with kangaroo pocket.",
			Price:       44.50, Category: "Hoodies", Sizes: allSizes,
			Stock: 60, Active: true, CreatedAt: now,
		},
		{
			ID: utils.NewID(), Name: "Summer Floral Dress",
			Description: "Lightweight viscose dress with floral print.",
			Price:       64.00, Category: "Dresses", Sizes: []string{"S", "M", "L"},
			Stock: 30, Active: true, CreatedAt: now,
		},
		{
			ID: utils.NewID(), Name: "Wool Overcoat",
			Description: "Single-breasted wool blend coat in charcoal.",
			Price:       149.00, Category: "Coats", Sizes: []string{"M", "L", "XL"},
			Stock: 15, Active: true, CreatedAt: now,
		},
	}
}

package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"techstore/internal/config"
	"techstore/internal/entity"
	"techstore/internal/repository"
)

func main() {
	log.Println("Starting database seeder...")

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)

	seedAdmin(ctx, users)
	seedCatalog(ctx, categories, products)

	log.Println("Database seeding completed successfully!")
}

func seedAdmin(ctx context.Context, users *repository.UserRepository) {
	if _, err := users.GetByEmail(ctx, "admin@techstore.local"); err == nil {
		log.Println("Admin user already exists, skipping")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123!"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := &entity.User{
		Username: "admin",
		Email:    "admin@techstore.local",
		Password: string(hash),
		FullName: "Store Administrator",
		Role:     entity.RoleAdmin,
		Active:   true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Println("Seeded admin user admin@techstore.local")
}

func seedCatalog(ctx context.Context, categories *repository.CategoryRepository, products *repository.ProductRepository) {
	existing, err := categories.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	if len(existing) > 0 {
		log.Println("Catalog already seeded, skipping")
		return
	}

	catalog := map[string][]*entity.Product{
		"Laptops": {
			{Name: "Aurora 14 Ultrabook", Description: "14-inch ultrabook, 16GB RAM, 512GB SSD", Price: 22990000, StockQuantity: 25, Active: true},
			{Name: "Titan 16 Workstation", Description: "16-inch creator laptop, RTX graphics", Price: 41990000, StockQuantity: 10, Active: true},
		},
		"Phones": {
			{Name: "Nova X2", Description: "6.5-inch OLED, 256GB", Price: 15990000, StockQuantity: 60, Active: true},
			{Name: "Nova X2 Lite", Description: "6.1-inch LCD, 128GB", Price: 8990000, StockQuantity: 80, Active: true},
		},
		"Accessories": {
			{Name: "Drift Wireless Mouse", Description: "Silent click, USB-C charging", Price: 590000, StockQuantity: 200, Active: true},
			{Name: "Anchor 65W Charger", Description: "GaN fast charger, dual port", Price: 790000, StockQuantity: 150, Active: true},
		},
	}

	for name, items := range catalog {
		category := &entity.Category{Name: name}
		if err := categories.Create(ctx, category); err != nil {
			log.Fatalf("Failed to create category %s: %v", name, err)
		}
		for _, product := range items {
			product.CategoryID = category.ID
			if err := products.Create(ctx, product); err != nil {
				log.Fatalf("Failed to create product %s: %v", product.Name, err)
			}
		}
		log.Printf("Seeded category %s with %d products", name, len(items))
	}
}

package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"techstore/internal/api"
	"techstore/internal/config"
	consumer2 "techstore/internal/consumer"
	"techstore/internal/repository"
	"techstore/internal/service"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		panic(err)
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		panic(err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
	kafkaReader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, "techstore-catalog")

	pricing := service.Pricing{
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	userService := service.NewUserService(userRepo, repository.NewSessionStore(rdb),
		[]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	productService := service.NewProductService(productRepo, categoryRepo, repository.NewProductCache(rdb))
	categoryService := service.NewCategoryService(categoryRepo, productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, pricing)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo,
		repository.NewIdempotencyGuard(rdb), kafkaWriter, pricing)
	dashboardService := service.NewDashboardService(orderRepo, userRepo, productRepo)

	authHandler := api.NewAuthHandler(userService, cfg.SecureCookies)
	productHandler := api.NewProductHandler(productService)
	categoryHandler := api.NewCategoryHandler(categoryService)
	cartHandler := api.NewCartHandler(cartService)
	orderHandler := api.NewOrderHandler(orderService)
	adminHandler := api.NewAdminHandler(dashboardService, userService)

	// consumer
	consumer := consumer2.New(productService, kafkaReader)
	go consumer.Run(ctx)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     40,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	jwtAuth := api.JWTMiddleware([]byte(cfg.JWTSecret))

	// Public routes
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/refresh", authHandler.Refresh)
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/products", productHandler.List)
	e.GET("/api/products/:id", productHandler.Get)
	e.GET("/api/categories", categoryHandler.List)

	// Authenticated storefront routes
	authed := e.Group("/api", jwtAuth)
	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/me", authHandler.UpdateMe)
	authed.GET("/cart", cartHandler.Get)
	authed.POST("/cart", cartHandler.Add)
	authed.PUT("/cart/:cartItemId", cartHandler.Update)
	authed.DELETE("/cart/:cartItemId", cartHandler.Remove)
	authed.DELETE("/cart", cartHandler.Clear)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:orderId", orderHandler.Get)
	authed.PUT("/orders/:orderId/cancel", orderHandler.Cancel)

	// Back-office routes
	admin := e.Group("/api/admin", jwtAuth, api.RequireStaff)
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/orders", orderHandler.AdminList)
	admin.PUT("/orders/:orderId", orderHandler.AdminUpdate)
	admin.GET("/products", productHandler.AdminList)
	admin.POST("/products", productHandler.Create)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)
	admin.POST("/categories", categoryHandler.Create)
	admin.PUT("/categories/:id", categoryHandler.Update)
	admin.DELETE("/categories/:id", categoryHandler.Delete)
	admin.GET("/customers", adminHandler.ListCustomers)
	admin.GET("/staff", api.RequireAdmin(adminHandler.ListStaff))
	admin.POST("/staff", api.RequireAdmin(adminHandler.CreateStaff))
	admin.PUT("/users/:id", api.RequireAdmin(adminHandler.UpdateUser))

	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "techstore",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(cfg.HTTPAddr))
}

package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/akshat03/shopcart/internal/cache"
	"github.com/akshat03/shopcart/internal/config"
	"github.com/akshat03/shopcart/internal/db"
	"github.com/akshat03/shopcart/internal/handlers"
	"github.com/akshat03/shopcart/internal/middleware"
	"github.com/akshat03/shopcart/internal/services"
	"github.com/akshat03/shopcart/internal/storage"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	database, err := db.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}

	denylist, err := cache.NewTokenDenylist(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	images, err := storage.NewImageStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey)
	if err != nil {
		log.Fatalf("MinIO connection failed: %v", err)
	}

	users := db.NewUserStore(database)
	products := db.NewProductStore(database)

	authSvc := services.NewAuthService(users, denylist, cfg.JWTSecret)
	catalogSvc := services.NewCatalogService(products, images)
	cartSvc := services.NewCartService(users, products)

	if err := authSvc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	api := handlers.API{
		Auth:      &handlers.AuthHandler{Svc: authSvc},
		Products:  &handlers.ProductHandler{Svc: catalogSvc},
		Cart:      &handlers.CartHandler{Svc: cartSvc},
		AuthMW:    middleware.Auth(authSvc.JWTSecret, denylist),
		AdminMW:   middleware.RequireAdmin,
		StaticDir: cfg.StaticDir,
	}
	api.Register(app)

	log.Fatal(app.Listen(":" + cfg.Port))
}

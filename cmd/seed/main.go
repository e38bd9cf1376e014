package main

import (
	"context"
	"log"

	"linkpay/internal/cache"
	"linkpay/internal/config"
	"linkpay/internal/db"
	"linkpay/internal/model"
	"linkpay/internal/paypal"
	"linkpay/internal/repository"
	"linkpay/internal/service"
)

// Seeds a handful of sample payment links for sandbox testing.
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.PaymentLink{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	linkRepo := repository.NewLinkRepository(gormDB)
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	links := service.NewLinkService(linkRepo, cacheClient, cfg.PublicBaseURL)

	samples := []service.CreateLinkInput{
		{ProductName: "Scarf", Price: "20.00", DeliveryCost: "3.50", ClientName: "Amira", DeliveryMethod: "Mondial Relay"},
		{ProductName: "Dress", Price: "45.90", ClientName: "Leila", DeliveryMethod: "Colissimo"},
		{ProductName: "Handbag", Price: "79.00", DeliveryCost: "5.00", DeliveryMethod: "Hand delivery"},
	}

	ctx := context.Background()
	for _, input := range samples {
		link, err := links.CreateLink(ctx, input)
		if err != nil {
			log.Fatalf("seed %q: %v", input.ProductName, err)
		}
		log.Printf("seeded %s (%s %s): %s", link.ProductName, link.TotalAmount().StringFixed(2), paypal.Currency, links.PaymentURL(link.UniqueID))
	}
}

package main

import (
	"log"
	"net/http"
	"os"

	_ "linkpay/docs" // swagger docs

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"linkpay/internal/cache"
	"linkpay/internal/config"
	"linkpay/internal/db"
	"linkpay/internal/handler"
	"linkpay/internal/model"
	"linkpay/internal/paypal"
	"linkpay/internal/repository"
	"linkpay/internal/router"
	"linkpay/internal/service"
)

// @title Payment Link API
// @version 1.0
// @description Shareable payment links with PayPal checkout capture.
// @host localhost:8080
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()

	renderer, err := router.NewRenderer("web/templates/*.html")
	if err != nil {
		log.Fatalf("parse templates: %v", err)
	}
	e.Renderer = renderer

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping payment_links...")
		if err := gormDB.Migrator().DropTable(&model.PaymentLink{}); err != nil {
			log.Printf("Warning: Failed to drop table (may not exist): %v", err)
		}
	}

	if err := gormDB.AutoMigrate(&model.PaymentLink{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	// The gateway is an explicit instance; missing credentials degrade
	// to the Disabled variant so link creation and browsing keep working.
	var gateway paypal.Gateway
	client, err := paypal.New(paypal.Config{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalSecret,
		Environment:  cfg.PayPalEnv,
		BrandName:    cfg.PayPalBrandName,
	})
	if err != nil {
		log.Printf("CRITICAL: paypal gateway disabled: %v", err)
		gateway = paypal.Disabled{Reason: err.Error()}
	} else {
		log.Printf("paypal gateway initialized in %s mode", cfg.PayPalEnv)
		gateway = client
	}

	// Initialize repositories
	linkRepo := repository.NewLinkRepository(gormDB)

	// Initialize services
	linkService := service.NewLinkService(linkRepo, cacheClient, cfg.PublicBaseURL)
	checkoutService := service.NewCheckoutService(linkRepo, gateway, cacheClient, linkService, cfg.IsSandbox())

	// Initialize handlers
	linkHandler := handler.NewLinkHandler(linkService, store, cfg.PayPalClientID)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, linkService, cfg.IsSandbox())
	healthHandler := handler.NewHealthHandler(cfg, gateway)

	// Register routes
	router.Register(e, cfg, linkHandler, checkoutHandler, healthHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mahiprime2001/Billing-system/internal/config"
	"github.com/mahiprime2001/Billing-system/internal/database"
	"github.com/mahiprime2001/Billing-system/internal/handler"
	"github.com/mahiprime2001/Billing-system/internal/queue"
	"github.com/mahiprime2001/Billing-system/internal/repository"
	"github.com/mahiprime2001/Billing-system/internal/router"
	"github.com/mahiprime2001/Billing-system/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Monetary amounts serialize as JSON numbers, matching the
	// DECIMAL(10,2) columns they come from.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; nil disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	billRepo := repository.NewBillRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	linkRepo := repository.NewLinkRepo(db)
	userRepo := repository.NewUserRepo(db)
	merchantRepo := repository.NewMerchantRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	linkTTL := time.Duration(cfg.LinkTTLHours) * time.Hour
	linkSvc := service.NewLinkService(cfg.JWTSecret, cfg.BaseURL, linkTTL, linkRepo)
	smsSvc := service.NewSMSService(linkSvc, notificationRepo)

	billHandler := handler.NewBillHandler(billRepo, paymentRepo, merchantRepo, linkSvc, rdb)
	smsHandler := handler.NewSMSHandler(billRepo, userRepo, merchantRepo, linkSvc, smsSvc)
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo, billRepo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBills(e, billHandler, rdb)
	router.RegisterSMS(e, smsHandler, rdb)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)

	// Billing event consumer runs for the life of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartBillingConsumer(); err != nil {
			log.Printf("billing consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

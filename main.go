package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"radar-screener/internal/api"
	"radar-screener/internal/config"
	"radar-screener/internal/database"
	"radar-screener/internal/scanner"
	"radar-screener/internal/services/notify"
	"radar-screener/internal/services/retailed"
	"radar-screener/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.RetailedAPIKey == "" {
		log.Println("⚠️  RETAILED_API_KEY not set, price fetches will fail until configured")
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	products := store.NewProductStore(db)
	prices := store.NewPriceStore(db)
	alerts := store.NewAlertStore(db)

	source := retailed.NewClient(cfg.RetailedAPIKey, cfg.RetailedCurrency, cfg.RetailedCountry, cfg.RateLimitDelay)

	telegram, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal("Failed to initialize Telegram notifier:", err)
	}
	hub := notify.NewHub()

	scan := scanner.New(products, prices, alerts, source, notify.Multi{telegram, hub},
		cfg.DefaultDipThreshold, cfg.AntiSpamWindow)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := scanner.NewScheduler(scan, cfg.ScanInterval)
	scheduler.Start(ctx)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := r.Group("/")
	api.SetupRoutes(apiGroup, products, prices, alerts, source, scheduler, telegram, hub, cfg.DefaultDipThreshold)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// Shut down on SIGINT/SIGTERM: cancel the scan context so an in-flight
	// scan stops between products, then stop the scheduler and the server.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
	scheduler.Stop()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

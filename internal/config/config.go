package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	// Retailed.io scraper API
	RetailedAPIKey   string
	RetailedCurrency string
	RetailedCountry  string

	// Telegram notifications
	TelegramBotToken string
	TelegramChatID   int64

	// Dip detection
	DefaultDipThreshold float64 // percent, used when a product has no threshold set
	AntiSpamWindow      time.Duration
	ScanInterval        time.Duration
	RateLimitDelay      time.Duration // minimum spacing between Retailed requests
}

func Load() *Config {
	chatID, _ := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "root:radar@tcp(127.0.0.1:3306)/radar?charset=utf8mb4&parseTime=True&loc=Local"),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RetailedAPIKey:   getEnv("RETAILED_API_KEY", ""),
		RetailedCurrency: getEnv("RETAILED_CURRENCY", "EUR"),
		RetailedCountry:  getEnv("RETAILED_COUNTRY", "FR"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   chatID,

		DefaultDipThreshold: getEnvFloat("DIP_THRESHOLD", 15),
		AntiSpamWindow:      time.Duration(getEnvInt("ANTI_SPAM_HOURS", 6)) * time.Hour,
		ScanInterval:        time.Duration(getEnvInt("SCAN_INTERVAL_HOURS", 6)) * time.Hour,
		RateLimitDelay:      time.Duration(getEnvInt("RATE_LIMIT_SECONDS", 2)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

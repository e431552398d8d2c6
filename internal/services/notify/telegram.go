package notify

import (
	"errors"
	"fmt"
	"log"

	"radar-screener/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNotConfigured is returned when the bot token or chat ID is missing.
// The scan keeps running; only delivery is short-circuited.
var ErrNotConfigured = errors.New("notify: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not configured")

// Telegram delivers dip alerts to a single Telegram chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates the Telegram notifier. With an empty token it returns
// a notifier whose Notify always reports ErrNotConfigured, so the rest of
// the process starts normally without credentials.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return &Telegram{}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to initialize Telegram bot: %w", err)
	}
	log.Printf("Telegram notifier ready (bot @%s)", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(alert models.Alert) error {
	if t.bot == nil || t.chatID == 0 {
		return ErrNotConfigured
	}

	msg := tgbotapi.NewMessage(t.chatID, formatAlert(alert))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: failed to send Telegram alert: %w", err)
	}
	return nil
}

// SendTest sends a plain confirmation message, used by the /test-telegram
// endpoint.
func (t *Telegram) SendTest() error {
	if t.bot == nil || t.chatID == 0 {
		return ErrNotConfigured
	}
	msg := tgbotapi.NewMessage(t.chatID, "✅ RADAR — test message, the bot is configured.")
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: failed to send test message: %w", err)
	}
	return nil
}

func formatAlert(alert models.Alert) string {
	return fmt.Sprintf(
		"🚨 *PRICE DIP DETECTED*\n\n"+
			"📦 *%s*\n\n"+
			"💰 Current price: *$%.2f*\n"+
			"📊 30d median: $%.2f\n"+
			"📉 Discount: *-%.1f%%*\n\n"+
			"👉 [Buy on StockX](https://stockx.com/%s)",
		alert.ProductName, alert.AlertPrice, alert.ReferencePrice, alert.DiscountPct, alert.Slug,
	)
}

package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"shopcore/internal/models"
)

// AlertService pushes operational alerts to a Telegram ops chat. A nil
// receiver is a no-op so deployments without a bot token need no special
// casing at call sites.
type AlertService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewAlertService(botToken string, chatID int64) (*AlertService, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &AlertService{bot: bot, chatID: chatID}, nil
}

func (a *AlertService) send(text string) {
	if a == nil {
		return
	}
	if _, err := a.bot.Send(tgbotapi.NewMessage(a.chatID, text)); err != nil {
		log.Printf("[alert][telegram] send failed: %v", err)
	}
}

func (a *AlertService) NotifyDeliveryFailure(userID int, cause error) {
	a.send(fmt.Sprintf("⚠️ Verification email for user %d failed after all retries: %v", userID, cause))
}

func (a *AlertService) NotifyLowStock(variant *models.ProductVariant) {
	a.send(fmt.Sprintf("📦 Low stock: %s (sku %s) down to %d units", variant.Name, variant.SKU, variant.Stock))
}

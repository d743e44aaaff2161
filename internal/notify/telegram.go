// Package notify sends moderation notifications to an admin Telegram chat.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"blocktek-radio/internal/models"
)

// Telegram notifies a configured chat about newly filed DJ requests.
// Delivery is best-effort: failures are logged and never surfaced.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegram(botToken string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	logger.Info("Telegram notifier initialized", zap.String("bot", bot.Self.UserName))
	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) DJRequestFiled(account *models.User, requestID int64) {
	text := fmt.Sprintf(
		"New DJ request #%d\nAccount: %s (%s)",
		requestID, account.DisplayName, account.Email,
	)
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.logger.Error("Failed to send Telegram notification",
			zap.Int64("request_id", requestID),
			zap.Error(err),
		)
	}
}

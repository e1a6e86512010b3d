package services

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bloghive/internal/utils"
)

// TelegramNotifier mirrors admin events into a Telegram chat.
type TelegramNotifier interface {
	Notify(ctx context.Context, text string) error
}

type TelegramService struct {
	token  string
	chatID int64

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// NewTelegramService returns a notifier that does nothing when token or chat is empty.
// The bot is created on the first message, NewBotAPI calls getMe over the network.
func NewTelegramService(botToken string, adminChatID int64) *TelegramService {
	return &TelegramService{token: botToken, chatID: adminChatID}
}

func (t *TelegramService) Enabled() bool {
	return t != nil && t.token != "" && t.chatID != 0
}

func (t *TelegramService) client() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	t.bot = bot
	return bot, nil
}

func (t *TelegramService) Notify(_ context.Context, text string) error {
	if !t.Enabled() {
		utils.Logger.Debug("[tg][skip] token or chat id empty")
		return nil
	}
	bot, err := t.client()
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	utils.Logger.WithField("chat_id", t.chatID).Debug("[tg][send] ok")
	return nil
}

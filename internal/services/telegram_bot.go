package services

import (
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender delivers an HTML-formatted text to a Telegram chat.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

type TelegramService struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramService builds the bot client without calling getMe, so a bad
// or missing token only shows up when a message is sent. Methods on a
// service with an empty token are no-ops.
func NewTelegramService(botToken string) *TelegramService {
	return newTelegramService(botToken, tgbotapi.APIEndpoint, &http.Client{Timeout: 10 * time.Second})
}

func newTelegramService(botToken, endpoint string, client tgbotapi.HTTPClient) *TelegramService {
	bot := &tgbotapi.BotAPI{
		Token:  botToken,
		Client: client,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(endpoint)
	return &TelegramService{bot: bot}
}

func (t *TelegramService) enabled() bool {
	return t != nil && t.bot != nil && t.bot.Token != ""
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if !t.enabled() || chatID == 0 {
		log.Printf("[tg][skip] token or chatID empty (token? %v chatID=%d)", t.enabled(), chatID)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	log.Printf("[tg][send] chatID=%d text=%q", chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

// SetWebhook registers url with Telegram. A non-empty secret is echoed back by
// Telegram in the X-Telegram-Bot-Api-Secret-Token header of every update.
func (t *TelegramService) SetWebhook(url, secret string) error {
	if !t.enabled() || url == "" {
		return nil
	}
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)

	log.Printf("[tg][setWebhook] url=%s", url)
	resp, err := t.bot.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("telegram setWebhook failed: %w", err)
	}
	log.Printf("[tg][setWebhook] ok=%v desc=%s", resp.Ok, resp.Description)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
	"taskdeck/internal/utils"
)

const LinkTokenTTL = 30 * time.Minute

var ErrInvalidLinkToken = errors.New("invalid or expired link token")

// TelegramLinkService binds Telegram chats to accounts. The bot hands a
// one-time token to the chat on /start; the user then posts it from the app.
type TelegramLinkService struct {
	links   repositories.TelegramLinkRepository
	users   repositories.UserRepository
	sender  MessageSender
	newCode func() (string, error)
}

func NewTelegramLinkService(links repositories.TelegramLinkRepository, users repositories.UserRepository, sender MessageSender) *TelegramLinkService {
	return &TelegramLinkService{
		links:   links,
		users:   users,
		sender:  sender,
		newCode: func() (string, error) { return utils.NewLinkCode(16) },
	}
}

// HandleUpdate reacts to bot commands from a webhook update. Non-message
// updates are ignored.
func (s *TelegramLinkService) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	log.Printf("[tg][update] id=%d chat=%d text=%q", upd.UpdateID, chatID, msg.Text)

	switch msg.Command() {
	case "start":
		code, err := s.newCode()
		if err != nil {
			return fmt.Errorf("generate link code: %w", err)
		}
		if _, err := s.links.Create(ctx, chatID, code, LinkTokenTTL); err != nil {
			return fmt.Errorf("store link code: %w", err)
		}
		return s.reply(chatID, "👋 Your link token:\n<code>"+code+"</code>\n"+
			"Paste it into the Telegram section of your profile within 30 minutes.")
	case "stop":
		user, err := s.users.GetByChatID(ctx, chatID)
		if errors.Is(err, models.ErrNotFound) {
			return s.reply(chatID, "This chat is not linked to any account.")
		}
		if err != nil {
			return err
		}
		if err := s.users.ClearTelegramLink(ctx, user.ID); err != nil {
			return err
		}
		return s.reply(chatID, "🔕 Unlinked. You will not receive task notifications here anymore.")
	default:
		return s.reply(chatID, "Send /start to get a link token, /stop to unlink this chat.")
	}
}

func (s *TelegramLinkService) reply(chatID int64, text string) error {
	if s.sender == nil {
		return nil
	}
	return s.sender.SendMessage(chatID, text)
}

func (s *TelegramLinkService) Link(ctx context.Context, userID int64, token string) (*models.TelegramStatus, error) {
	code, ok := normalizeLinkCode(token)
	if !ok {
		return nil, ErrInvalidLinkToken
	}
	link, err := s.links.UseByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidLinkToken
		}
		return nil, err
	}
	if err := s.users.UpdateTelegramLink(ctx, userID, link.ChatID, true); err != nil {
		return nil, fmt.Errorf("save telegram link: %w", err)
	}
	if err := s.reply(link.ChatID, "✅ Chat linked. Task notifications will arrive here."); err != nil {
		log.Printf("[tg][link] confirm to chat=%d failed: %v", link.ChatID, err)
	}
	return s.Status(ctx, userID)
}

// normalizeLinkCode strips quotes and punctuation that get pasted along with
// the token and keeps the hex digits.
func normalizeLinkCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”«»<>.,;:()[]{}\\")
	s = strings.ToUpper(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Hex_Digit, r) {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) != 32 {
		return "", false
	}
	return code, true
}

func (s *TelegramLinkService) Unlink(ctx context.Context, userID int64) (*models.TelegramStatus, error) {
	if err := s.users.ClearTelegramLink(ctx, userID); err != nil {
		return nil, err
	}
	return &models.TelegramStatus{Success: true, Linked: false}, nil
}

func (s *TelegramLinkService) Status(ctx context.Context, userID int64) (*models.TelegramStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := &models.TelegramStatus{Success: true, Linked: user.TelegramChatID != 0}
	if st.Linked {
		st.LinkInfo = &models.LinkInfo{
			ChatID:   user.TelegramChatID,
			LinkedAt: user.TelegramLinkedAt,
			Notify:   user.NotifyTasksTelegram,
		}
	}
	return st, nil
}

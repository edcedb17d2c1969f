package services

import (
	"context"
	"html"
	"log"
	"strconv"

	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
)

const deadlineLayout = "2006-01-02 15:04"

// TodoNotifier pushes todo events to the owner's linked Telegram chat.
type TodoNotifier struct {
	sender MessageSender
	users  repositories.UserRepository
}

// NewTodoNotifier returns nil when there is nothing to send with; a nil
// notifier is safe to call.
func NewTodoNotifier(sender MessageSender, users repositories.UserRepository) *TodoNotifier {
	if sender == nil || users == nil {
		return nil
	}
	return &TodoNotifier{sender: sender, users: users}
}

func (n *TodoNotifier) chatFor(ctx context.Context, userID int64) (int64, bool) {
	chatID, allow, err := n.users.GetTelegramSettings(ctx, userID)
	if err != nil {
		log.Printf("[todo][notify] get telegram settings failed: user=%d err=%v", userID, err)
		return 0, false
	}
	if !allow || chatID == 0 {
		return 0, false
	}
	return chatID, true
}

func (n *TodoNotifier) Notify(ctx context.Context, prefix string, t *models.Todo) {
	if n == nil || t == nil {
		return
	}
	if chatID, ok := n.chatFor(ctx, t.UserID); ok {
		_ = n.sender.SendMessage(chatID, FormatTodo(prefix, t))
	}
}

func (n *TodoNotifier) NotifyDeleted(ctx context.Context, t *models.Todo) {
	if n == nil || t == nil {
		return
	}
	if chatID, ok := n.chatFor(ctx, t.UserID); ok {
		msg := "🗑️ Task deleted\n" +
			"• <b>" + html.EscapeString(t.Title) + "</b>\n" +
			"• Deadline: <code>" + t.Deadline.Format(deadlineLayout) + "</code>"
		_ = n.sender.SendMessage(chatID, msg)
	}
}

// FormatTodo renders a todo for parse_mode=HTML.
func FormatTodo(prefix string, t *models.Todo) string {
	status := "open"
	if t.IsCompleted {
		status = "done"
	}
	return prefix + "\n" +
		"• <b>" + html.EscapeString(t.Title) + "</b>\n" +
		"• Status: <code>" + status + "</code>\n" +
		"• Priority: <code>" + strconv.Itoa(t.Priority) + "</code>\n" +
		"• Deadline: <code>" + t.Deadline.Format(deadlineLayout) + " UTC</code>"
}

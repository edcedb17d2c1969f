package models

import "time"

// TelegramLink is a one-time token the bot hands out to a chat; posting it to
// /telegram/link binds that chat to the caller's account.
type TelegramLink struct {
	ID        int64
	ChatID    int64
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type LinkInfo struct {
	ChatID   int64      `json:"chat_id"`
	LinkedAt *time.Time `json:"linked_at,omitempty"`
	Notify   bool       `json:"notify"`
}

// TelegramStatus is the body of the /telegram/* endpoints.
type TelegramStatus struct {
	Success  bool      `json:"success"`
	Linked   bool      `json:"linked"`
	LinkInfo *LinkInfo `json:"linkInfo,omitempty"`
}

type TelegramLinkRequest struct {
	Token string `json:"token" binding:"required"`
}

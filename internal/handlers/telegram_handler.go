package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskdeck/internal/models"
	"taskdeck/internal/services"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramLinker is implemented by services.TelegramLinkService.
type TelegramLinker interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update) error
	Link(ctx context.Context, userID int64, token string) (*models.TelegramStatus, error)
	Unlink(ctx context.Context, userID int64) (*models.TelegramStatus, error)
	Status(ctx context.Context, userID int64) (*models.TelegramStatus, error)
}

type TelegramHandler struct {
	links  TelegramLinker
	secret string
}

func NewTelegramHandler(links TelegramLinker, webhookSecret string) *TelegramHandler {
	return &TelegramHandler{links: links, secret: webhookSecret}
}

// @Summary  Telegram link status
// @Tags     Telegram
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.TelegramStatus
// @Router   /telegram/status [get]
func (h *TelegramHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	st, err := h.links.Status(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[tg][status][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load telegram status"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary  Link Telegram chat
// @Tags     Telegram
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      models.TelegramLinkRequest  true  "Token from the bot"
// @Success  200   {object}  models.TelegramStatus
// @Failure  400   {object}  map[string]string
// @Router   /telegram/link [post]
func (h *TelegramHandler) Link(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.TelegramLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindMessage(err, "")})
		return
	}
	st, err := h.links.Link(c.Request.Context(), userID, req.Token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLinkToken) {
			log.Printf("[tg][link][400] userID=%d", userID)
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}
		log.Printf("[tg][link][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to link telegram"})
		return
	}
	log.Printf("[tg][link][ok] userID=%d linked=%v", userID, st.Linked)
	c.JSON(http.StatusOK, st)
}

// @Summary  Unlink Telegram chat
// @Tags     Telegram
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.TelegramStatus
// @Router   /telegram/unlink [post]
func (h *TelegramHandler) Unlink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	st, err := h.links.Unlink(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[tg][unlink][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to unlink telegram"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// Webhook receives bot updates. It answers 200 even on processing errors so
// Telegram does not redeliver.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(telegramSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			log.Printf("[tg][webhook][401] bad secret token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		log.Printf("[tg][webhook] bind json error: %v", err)
		c.Status(http.StatusOK)
		return
	}
	if err := h.links.HandleUpdate(c.Request.Context(), upd); err != nil {
		log.Printf("[tg][webhook][err] update=%d: %v", upd.UpdateID, err)
	}
	c.Status(http.StatusOK)
}

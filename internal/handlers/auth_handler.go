package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/services"
)

// TokenRevoker is satisfied by services.TokenBlacklist.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthHandler struct {
	userService  services.UserService
	tokens       *middleware.TokenManager
	revoker      TokenRevoker
	passwordRule string
}

// NewAuthHandler wires auth endpoints. revoker may be nil; logout then only
// asks the client to drop its token.
func NewAuthHandler(userService services.UserService, tokens *middleware.TokenManager, revoker TokenRevoker, passwordRule string) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens, revoker: revoker, passwordRule: passwordRule}
}

// @Summary      Register
// @Description  Creates an account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "New account"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][register][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err, h.passwordRule)})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			log.Printf("[auth][register][409] username=%q", req.Username)
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		log.Printf("[auth][register][err] username=%q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}
	log.Printf("[auth][register][ok] id=%d username=%q", user.ID, user.Username)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// @Summary      Login
// @Description  Authenticates by username and password and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  models.LoginResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err, h.passwordRule)})
		return
	}
	username := strings.TrimSpace(req.Username)
	log.Printf("[auth][login] attempt username=%q", username)

	user, err := h.userService.Authenticate(c.Request.Context(), username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			middleware.TrackAuthAttempt("failure", "login")
			log.Printf("[auth][login] rejected username=%q", username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		log.Printf("[auth][login][err] username=%q: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	token, claims, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("[auth][login] sign access token failed for userID=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}
	middleware.TrackAuthAttempt("success", "login")
	log.Printf("[auth][login] success userID=%d jti=%s took=%s", user.ID, claims.ID, time.Since(start).Truncate(time.Millisecond))

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}

// @Summary      Logout
// @Description  Revokes the current access token
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.revoker != nil && claims.ExpiresAt != nil {
		if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			log.Printf("[auth][logout][err] userID=%d: %v", claims.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
			return
		}
	}
	log.Printf("[auth][logout][ok] userID=%d jti=%s", claims.UserID, claims.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

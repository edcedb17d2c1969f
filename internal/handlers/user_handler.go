package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/models"
	"taskdeck/internal/pdf"
	"taskdeck/internal/services"
)

type UserHandler struct {
	userService  services.UserService
	todoService  services.TodoService
	reports      pdf.Generator
	passwordRule string
}

func NewUserHandler(userService services.UserService, todoService services.TodoService, reports pdf.Generator, passwordRule string) *UserHandler {
	return &UserHandler{userService: userService, todoService: todoService, reports: reports, passwordRule: passwordRule}
}

// @Summary  Profile with statistics
// @Tags     Users
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  models.ProfileResponse
// @Router   /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	resp, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("[user][profile][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary  Update profile
// @Tags     Users
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      models.UpdateProfileRequest  true  "Profile"
// @Success  200   {object}  models.Profile
// @Failure  400   {object}  map[string]string
// @Router   /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[user][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err, h.passwordRule)})
		return
	}
	p, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("[user][update][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	log.Printf("[user][update][ok] userID=%d", userID)
	c.JSON(http.StatusOK, p)
}

// @Summary  Change password
// @Tags     Users
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      models.ChangePasswordRequest  true  "Passwords"
// @Success  200   {object}  map[string]string
// @Failure  400   {object}  map[string]string
// @Router   /users/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err, h.passwordRule)})
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}
		log.Printf("[user][password][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}
	log.Printf("[user][password][ok] userID=%d", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// @Summary  PDF task report
// @Tags     Users
// @Produce  application/pdf
// @Security BearerAuth
// @Success  200
// @Router   /users/profile/report [get]
func (h *UserHandler) Report(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("[user][report][err] profile userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	todos, err := h.todoService.GetAll(ctx, userID)
	if err != nil {
		log.Printf("[user][report][err] todos userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	var buf bytes.Buffer
	if err := h.reports.TodoReport(&buf, pdf.ReportData{
		Profile:     profile.User,
		Statistics:  profile.Statistics,
		Todos:       todos,
		GeneratedAt: time.Now(),
	}); err != nil {
		log.Printf("[user][report][err] render userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"taskdeck/internal/middleware"
)

// currentUserID aborts with 401 when the auth middleware did not run.
func currentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return id, true
}

// bindMessage turns binding errors into a short client-facing sentence.
// passwordRule describes the active password policy.
func bindMessage(err error, passwordRule string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "looseemail":
		return "invalid email format"
	case "phone11":
		return "phone must be exactly 11 digits"
	case "password":
		if passwordRule == "" {
			return "password is too weak"
		}
		return "password must be " + passwordRule
	case "min", "max":
		return fmt.Sprintf("%s is out of range", field)
	}
	return fmt.Sprintf("invalid %s", field)
}

package models

import "time"

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture"`
	PasswordHash   string    `json:"-"` // не отдаём наружу
	CreatedAt      time.Time `json:"created_at"`

	TelegramChatID      int64      `json:"-"`
	TelegramLinkedAt    *time.Time `json:"-"`
	NotifyTasksTelegram bool       `json:"-"`
}

// Profile is the editable, client-visible part of a user.
type Profile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

func (u *User) Profile() Profile {
	return Profile{
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

type RegisterRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,looseemail"`
	Phone          string `json:"phone" binding:"required,phone11"`
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required,password"`
	ProfilePicture string `json:"profile_picture"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UpdateProfileRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,looseemail"`
	Phone          string `json:"phone" binding:"required,phone11"`
	ProfilePicture string `json:"profile_picture"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

// ProfileResponse is the body of GET /users/profile.
type ProfileResponse struct {
	User       Profile    `json:"user"`
	Statistics Statistics `json:"statistics"`
}

package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func welcomeMessage(from, to, name string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to Taskdeck!")

	body := fmt.Sprintf(`
		<h2>Welcome to Taskdeck, %s!</h2>
		<p>Your account has been created. Add your first task and keep an eye on the deadlines.</p>
		<p>Link the Telegram bot from your profile to get reminders before tasks are due.</p>
	`, html.EscapeString(name))

	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	if err := s.dialer.DialAndSend(welcomeMessage(s.from, email, name)); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

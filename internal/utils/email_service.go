package utils

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"USER_REGISTRATION_BACK-END/internal/config"
)

// ErrEmailNotConfigured is returned when SMTP credentials are missing.
var ErrEmailNotConfigured = errors.New("email credentials not configured")

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending operations
type EmailService struct {
	config   *config.EmailConfig
	sendMail sendMailFunc
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{
		config:   cfg,
		sendMail: smtp.SendMail,
	}
}

// SendEmailConfirmation sends the link that verifies a new address.
func (e *EmailService) SendEmailConfirmation(to, username, key string) error {
	link := fmt.Sprintf(e.config.ConfirmURL, key)
	subject := "Please confirm your e-mail address"
	body := fmt.Sprintf(`
Hello %s,

You're receiving this e-mail because this address was used to register an account.

To confirm this is correct, go to %s

If you didn't register, please ignore this email.
`, username, link)

	return e.sendEmail(to, subject, body)
}

// SendPasswordResetCode sends verification code to user's email
func (e *EmailService) SendPasswordResetCode(to, code string, ttl time.Duration) error {
	subject := "Password Reset Verification Code"
	body := fmt.Sprintf(`
Hello,

You requested to reset your password.

Your verification code is: %s

This code will expire in %s.

If you didn't request this, please ignore this email.
`, code, HumanDuration(ttl))

	return e.sendEmail(to, subject, body)
}

// sendEmail sends an email using SMTP
func (e *EmailService) sendEmail(to, subject, body string) error {
	if e.config.SMTPUsername == "" || e.config.SMTPPassword == "" {
		return ErrEmailNotConfigured
	}

	auth := smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)

	fromEmail := e.config.FromEmail
	if fromEmail == "" {
		fromEmail = e.config.SMTPUsername
	}

	message := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s\r\n",
		e.config.FromName, fromEmail, to, subject, strings.ReplaceAll(body, "\n", "\r\n")))

	addr := e.config.SMTPHost + ":" + e.config.SMTPPort
	if err := e.sendMail(addr, auth, fromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// HumanDuration renders d as "3 minutes" or "1 hour" when it is whole.
func HumanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

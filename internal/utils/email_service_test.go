package utils

import (
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"USER_REGISTRATION_BACK-END/internal/config"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestEmailService(cfg *config.EmailConfig) (*EmailService, *[]capturedMail) {
	var sent []capturedMail
	svc := NewEmailService(cfg)
	svc.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return svc, &sent
}

func testEmailConfig() *config.EmailConfig {
	return &config.EmailConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUsername: "mailer@example.com",
		SMTPPassword: "secret",
		FromName:     "Accounts",
		ConfirmURL:   "https://app.example.com/verify?key=%s",
	}
}

func TestSendEmailConfirmation(t *testing.T) {
	svc, sent := newTestEmailService(testEmailConfig())

	require.NoError(t, svc.SendEmailConfirmation("jane@example.com", "jane", "abc-123"))
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, "mailer@example.com", mail.from)
	assert.Equal(t, []string{"jane@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Please confirm your e-mail address")
	assert.Contains(t, mail.msg, "https://app.example.com/verify?key=abc-123")
}

func TestSendPasswordResetCode(t *testing.T) {
	svc, sent := newTestEmailService(testEmailConfig())

	require.NoError(t, svc.SendPasswordResetCode("jane@example.com", "123456", 3*time.Minute))
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "123456")
	assert.Contains(t, (*sent)[0].msg, "3 minutes")
}

func TestSendEmailWithoutCredentials(t *testing.T) {
	cfg := testEmailConfig()
	cfg.SMTPPassword = ""
	svc, sent := newTestEmailService(cfg)

	assert.ErrorIs(t, svc.SendEmailConfirmation("jane@example.com", "jane", "k"), ErrEmailNotConfigured)
	assert.Empty(t, *sent)
}

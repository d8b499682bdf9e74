package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"iquiz-service/internal/config"
)

type EmailService struct {
	config config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{config: cfg}
}

func (e *EmailService) Send(subject, body string, recipients []string) error {
	message := fmt.Appendf(nil, "To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", strings.Join(recipients, ","), subject, body)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := e.config.Host + ":" + e.config.Port

	if err := smtp.SendMail(addr, auth, e.config.From, recipients, message); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"ourtime-api/core/config"
	"ourtime-api/core/logger"
)

// Mailer delivers plain-text mail to a list of recipients. The SMTP
// conversation is the only implementation the service ships; tests and
// development environments substitute their own.
type Mailer interface {
	Send(to []string, subject string, body string) error
}

type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(cfg config.MailConfig) Mailer {
	return &smtpMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (m *smtpMailer) Send(to []string, subject string, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := strings.Builder{}
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, to, []byte(msg.String())); err != nil {
		logger.Error("Mailer:Send", "error", err, "recipients", len(to))
		return err
	}

	logger.Info("Mailer:Send:Success", "recipients", len(to), "subject", subject)
	return nil
}

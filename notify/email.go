package notify

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/simplexsales/backend/config"
)

type smtpEmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func newSMTPEmailSender(cfg *config.Config) *smtpEmailSender {
	return &smtpEmailSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
	}
}

func (s *smtpEmailSender) send(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}

// Package notify is the best-effort email/SMS delivery collaborator. Real
// providers are selected once at startup based on configured credentials;
// anything unconfigured degrades to a logging sink, never to a failure.
package notify

import (
	"context"
	"log"

	"github.com/simplexsales/backend/config"
)

type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, phone, message string) error
}

// New picks the email and SMS backends from the configuration.
func New(cfg *config.Config) Notifier {
	s := &sink{
		email: logEmailSender{},
		sms:   logSMSSender{},
	}
	if cfg.EmailConfigured() {
		s.email = newSMTPEmailSender(cfg)
	}
	if cfg.SMSConfigured() {
		s.sms = newGatewaySMSSender(cfg)
	}
	return s
}

type emailSender interface {
	send(ctx context.Context, to, subject, body string) error
}

type smsSender interface {
	send(ctx context.Context, phone, message string) error
}

type sink struct {
	email emailSender
	sms   smsSender
}

func (s *sink) SendEmail(ctx context.Context, to, subject, body string) error {
	return s.email.send(ctx, to, subject, body)
}

func (s *sink) SendSMS(ctx context.Context, phone, message string) error {
	return s.sms.send(ctx, phone, message)
}

type logEmailSender struct{}

func (logEmailSender) send(_ context.Context, to, subject, body string) error {
	log.Printf("[notify] sendEmail -> to: %s, subject: %s, text: %s", to, subject, body)
	return nil
}

type logSMSSender struct{}

func (logSMSSender) send(_ context.Context, phone, message string) error {
	log.Printf("[notify] sendSMS -> phone: %s, message: %s", phone, message)
	return nil
}

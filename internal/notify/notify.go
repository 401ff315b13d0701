// Package notify delivers confirmation messages over email and SMS.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends confirmation messages. Both methods report delivery
// failures to the caller.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
	SendSMS(ctx context.Context, to, body string) error
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Dispatcher routes each channel to its transport.
type Dispatcher struct {
	mail Mailer
	sms  SMSSender
}

func NewDispatcher(mail Mailer, sms SMSSender) *Dispatcher {
	return &Dispatcher{mail: mail, sms: sms}
}

func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	return d.mail.SendEmail(ctx, to, subject, htmlBody)
}

func (d *Dispatcher) SendSMS(ctx context.Context, to, body string) error {
	return d.sms.SendSMS(ctx, to, body)
}

// LogNotifier writes messages to the logger instead of delivering them.
// It stands in for a transport that is not configured in development.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	n.logger.InfoContext(ctx, "notification", "channel", "email", "to", to, "subject", subject, "body", htmlBody)
	return nil
}

func (n *LogNotifier) SendSMS(ctx context.Context, to, body string) error {
	n.logger.InfoContext(ctx, "notification", "channel", "sms", "to", to, "body", body)
	return nil
}

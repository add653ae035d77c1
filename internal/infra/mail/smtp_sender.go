package mail

import (
	"context"
	"fmt"

	"epi_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers report mails through a password-authenticated SMTP relay.
type SMTPSender struct {
	dialer        *gomail.Dialer
	senderAddress string
	senderName    string
	log           *logrus.Logger
}

func NewSMTPSender(cfg *config.AppConfig, log *logrus.Logger) *SMTPSender {
	log.WithFields(logrus.Fields{
		"host": cfg.SMTPHost,
		"port": cfg.SMTPPort,
		"user": cfg.SMTPUser,
	}).Info("Initializing SMTP mail sender")

	return &SMTPSender{
		dialer:        gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
		log:           log,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	s.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Debug("Sending report mail via SMTP")
	if err := sendContext(ctx, func() error { return s.dialer.DialAndSend(msg) }); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

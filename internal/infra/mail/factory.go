package mail

import (
	"fmt"

	domainmail "epi_notifier/internal/domain/mail"
	"epi_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// NewSenderFromConfig selects the configured mail transport. Everything past
// this point sees only the domain Sender interface.
func NewSenderFromConfig(cfg *config.AppConfig, log *logrus.Logger) (domainmail.Sender, error) {
	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		return NewSMTPSender(cfg, log), nil
	case config.MailDriverGmailOAuth2:
		return NewGmailOAuth2Sender(cfg, log), nil
	case config.MailDriverAPI:
		return NewAPISender(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown mail driver: %q", cfg.MailDriver)
	}
}

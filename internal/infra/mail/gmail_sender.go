package mail

import (
	"context"
	"fmt"

	"epi_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gopkg.in/gomail.v2"
)

const gmailSMTPHost = "smtp.gmail.com"
const gmailSMTPPort = 587

// GmailOAuth2Sender delivers report mails through Gmail using an OAuth2
// refresh token instead of a password. The token source caches the access
// token and refreshes it transparently when it expires.
type GmailOAuth2Sender struct {
	tokens        oauth2.TokenSource
	userEmail     string
	senderAddress string
	senderName    string
	log           *logrus.Logger
}

func NewGmailOAuth2Sender(cfg *config.AppConfig, log *logrus.Logger) *GmailOAuth2Sender {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
	}
	tokens := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})

	log.WithField("user", cfg.GoogleUserEmail).Info("Initializing Gmail OAuth2 mail sender")

	return &GmailOAuth2Sender{
		tokens:        tokens,
		userEmail:     cfg.GoogleUserEmail,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
		log:           log,
	}
}

func (s *GmailOAuth2Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	token, err := s.tokens.Token()
	if err != nil {
		return fmt.Errorf("gmail oauth2 token refresh failed: %w", err)
	}

	dialer := &gomail.Dialer{
		Host: gmailSMTPHost,
		Port: gmailSMTPPort,
		Auth: xoauth2Auth{user: s.userEmail, token: token.AccessToken},
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	s.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Debug("Sending report mail via Gmail OAuth2")
	if err := sendContext(ctx, func() error { return dialer.DialAndSend(msg) }); err != nil {
		return fmt.Errorf("gmail send to %s failed: %w", to, err)
	}
	return nil
}

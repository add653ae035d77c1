package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"epi_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// APISender delivers report mails through a transactional email HTTP API:
// one JSON POST per message, authenticated with a bearer key.
type APISender struct {
	client        *http.Client
	endpoint      string
	apiKey        string
	senderAddress string
	senderName    string
	log           *logrus.Logger
}

type apiSendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func NewAPISender(cfg *config.AppConfig, log *logrus.Logger) *APISender {
	log.WithField("endpoint", cfg.MailAPIURL).Info("Initializing transactional API mail sender")
	return &APISender{
		client:        &http.Client{},
		endpoint:      cfg.MailAPIURL,
		apiKey:        cfg.MailAPIKey,
		senderAddress: cfg.SenderAddress,
		senderName:    cfg.SenderName,
		log:           log,
	}
}

func (s *APISender) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(apiSendRequest{
		From:    fmt.Sprintf("%s <%s>", s.senderName, s.senderAddress),
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("error encoding mail API payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building mail API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	s.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Debug("Sending report mail via transactional API")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail API request to %s failed: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail API rejected send to %s: status %d: %s", to, resp.StatusCode, string(detail))
	}
	return nil
}

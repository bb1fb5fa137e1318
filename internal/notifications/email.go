package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wooftrace/wooftrace-backend/pkg/config"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

// EmailSender delivers messages through a Resend-compatible HTTP API. Without
// an API key it logs the message and reports success, which keeps local
// development working without outbound mail.
type EmailSender struct {
	cfg      config.EmailConfig
	client   *http.Client
	endpoint string
	logg     *logger.Logger
}

func NewEmailSender(cfg config.EmailConfig, logg *logger.Logger) *EmailSender {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimRight(cfg.APIBaseURL, "/")
	if base == "" {
		base = "https://api.resend.com"
	}
	return &EmailSender{
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
		endpoint: base + "/emails",
		logg:     logg,
	}
}

type emailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject})
			s.logg.Info(ctx, "email.skipped_no_api_key")
		}
		return nil
	}

	body, err := json.Marshal(emailPayload{
		From:    s.cfg.FromAddress,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/config"
)

// OnfonSender relays one-time codes over the Onfon bulk-SMS gateway to the
// fixed operator numbers. The requesting user never receives the code
// directly; an operator reads it back to them.
type OnfonSender struct {
	cfg    config.SMSConfig
	client *http.Client
	logger *zap.Logger
}

// NewOnfonSender builds a sender with a bounded request timeout.
func NewOnfonSender(cfg config.SMSConfig, logger *zap.Logger) *OnfonSender {
	return &OnfonSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

type messageParameter struct {
	Number string `json:"Number"`
	Text   string `json:"Text"`
}

type bulkSMSRequest struct {
	SenderID          string             `json:"SenderId"`
	MessageParameters []messageParameter `json:"MessageParameters"`
	APIKey            string             `json:"ApiKey"`
	ClientID          string             `json:"ClientId"`
}

type bulkSMSResponse struct {
	ErrorCode int `json:"ErrorCode"`
	Data      []struct {
		MessageErrorCode int `json:"MessageErrorCode"`
	} `json:"Data"`
}

// Send dispatches the code to every configured recipient. The gateway call
// succeeds only when the top-level error code and every per-message error
// code are zero.
func (s *OnfonSender) Send(ctx context.Context, code string) error {
	if len(s.cfg.Recipients) == 0 {
		return errors.New("no otp recipients configured")
	}

	text := fmt.Sprintf("Your certificate system OTP is: %s", code)
	params := make([]messageParameter, 0, len(s.cfg.Recipients))
	for _, number := range s.cfg.Recipients {
		params = append(params, messageParameter{Number: number, Text: text})
	}

	payload, err := json.Marshal(bulkSMSRequest{
		SenderID:          s.cfg.SenderID,
		MessageParameters: params,
		APIKey:            s.cfg.APIKey,
		ClientID:          s.cfg.ClientID,
	})
	if err != nil {
		return fmt.Errorf("encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accesskey", s.cfg.AccessKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}

	var result bulkSMSResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode sms response: %w", err)
	}
	if result.ErrorCode != 0 {
		return fmt.Errorf("sms gateway error code %d", result.ErrorCode)
	}
	for _, msg := range result.Data {
		if msg.MessageErrorCode != 0 {
			return fmt.Errorf("sms message error code %d", msg.MessageErrorCode)
		}
	}

	s.logger.Info("otp sms dispatched", zap.Int("recipients", len(params)))
	return nil
}

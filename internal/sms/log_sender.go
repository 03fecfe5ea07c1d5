package sms

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes codes to the log instead of dispatching SMS. Used in
// development when no Onfon API key is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a logging sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the code at warn level so it is hard to miss in dev output.
func (s *LogSender) Send(_ context.Context, code string) error {
	s.logger.Warn("sms disabled; logging otp instead", zap.String("code", code))
	return nil
}

package otp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultLifetime is how long an issued code stays valid.
const DefaultLifetime = 5 * time.Minute

// Sender dispatches a code out-of-band. The production implementation
// relays codes to fixed operator phone numbers over SMS.
type Sender interface {
	Send(ctx context.Context, code string) error
}

// MetricsRecorder receives issue/verify counts.
type MetricsRecorder interface {
	RecordOTPIssued()
	RecordOTPVerified()
}

// Service issues and verifies one-time codes against a shared Store.
type Service struct {
	store    Store
	sender   Sender
	lifetime time.Duration
	logger   *zap.Logger
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService builds the issuer/verifier pair over the given store and sender.
func NewService(store Store, sender Sender, lifetime time.Duration, logger *zap.Logger) *Service {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Service{
		store:    store,
		sender:   sender,
		lifetime: lifetime,
		logger:   logger,
		now:      time.Now,
	}
}

// WithMetrics attaches a recorder for issue/verify counters.
func (s *Service) WithMetrics(m MetricsRecorder) *Service {
	s.metrics = m
	return s
}

// Issue generates a fresh code for the subject, persists it (replacing any
// prior unconsumed code for the same key) and dispatches it. The challenge
// is persisted before dispatch, so a failed dispatch leaves a valid code in
// the store; the caller sees ErrNotificationFailed and can decide whether to
// retry issuing.
func (s *Service) Issue(ctx context.Context, subjectKey string) (*Challenge, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	now := s.now()
	ch := Challenge{
		SubjectKey: subjectKey,
		Code:       code,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.lifetime),
	}
	if err := s.store.Put(ctx, subjectKey, ch); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	if err := s.sender.Send(ctx, code); err != nil {
		s.logger.Error("otp dispatch failed", zap.String("subject", subjectKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	if s.metrics != nil {
		s.metrics.RecordOTPIssued()
	}
	s.logger.Info("otp issued", zap.String("subject", subjectKey), zap.Time("expires_at", ch.ExpiresAt))
	return &ch, nil
}

// Verify checks the submitted code for the subject and consumes it on
// success. Exactly one of two concurrent calls with the correct code can
// succeed; the loser sees ErrNotFound. An expired record is removed as a
// side effect before ErrExpired is returned.
func (s *Service) Verify(ctx context.Context, subjectKey, submitted string) error {
	submitted = strings.TrimSpace(submitted)

	ch, err := s.store.Get(ctx, subjectKey)
	if err != nil {
		return fmt.Errorf("load challenge: %w", err)
	}
	if ch == nil {
		return ErrNotFound
	}
	if ch.Expired(s.now()) {
		// Conditional on the stored code so a concurrently re-issued
		// challenge is not clobbered.
		if _, err := s.store.Consume(ctx, subjectKey, ch.Code); err != nil {
			return fmt.Errorf("discard expired challenge: %w", err)
		}
		return ErrExpired
	}
	if submitted != ch.Code {
		return ErrMismatch
	}

	consumed, err := s.store.Consume(ctx, subjectKey, submitted)
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	if !consumed {
		// Lost the race to another verifier, or the code was replaced
		// between Get and Consume.
		return ErrNotFound
	}
	if s.metrics != nil {
		s.metrics.RecordOTPVerified()
	}
	return nil
}

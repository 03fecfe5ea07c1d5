package otp

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Challenge is a single one-time code bound to a subject key and an expiry.
type Challenge struct {
	SubjectKey string    `json:"subject_key"`
	Code       string    `json:"code"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the challenge is past its expiry at the given instant.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Verification outcomes and dispatch failures. Handlers map these onto the
// HTTP error taxonomy.
var (
	ErrNotFound           = errors.New("no active code for subject")
	ErrExpired            = errors.New("code expired")
	ErrMismatch           = errors.New("code does not match")
	ErrNotificationFailed = errors.New("code dispatch failed")
)

// Store is keyed storage for challenges. Put replaces any existing
// challenge for the key, so at most one live challenge exists per subject.
// Consume is an atomic compare-and-delete: it removes the stored challenge
// only when its code equals the given one, so concurrent verifiers racing
// on the same key cannot both succeed.
type Store interface {
	Put(ctx context.Context, key string, ch Challenge) error
	Get(ctx context.Context, key string) (*Challenge, error)
	Consume(ctx context.Context, key, code string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Login and approval challenges share one store under disjoint prefixes.

// LoginKey builds the subject key for a login challenge.
func LoginKey(email string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(email))
}

// CertificateKey builds the subject key for an approval challenge.
func CertificateKey(certID string) string {
	return "cert:" + certID
}

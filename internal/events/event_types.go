package events

import (
	"time"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventOTPIssued           EventType = "otp_issued"
	EventCertificateCreated  EventType = "certificate_created"
	EventCertificateUpdated  EventType = "certificate_updated"
	EventCertificateDeleted  EventType = "certificate_deleted"
	EventCertificateApproved EventType = "certificate_approved"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// OTPIssuedPayload payload. The code itself is never placed on the event.
type OTPIssuedPayload struct {
	SubjectKey string    `json:"subject_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CertificateCreatedPayload payload.
type CertificateCreatedPayload struct {
	SerialNo string                 `json:"serial_no"`
	Type     domain.CertificateType `json:"type"`
	IssuedTo string                 `json:"issued_to"`
}

// CertificateApprovedPayload payload.
type CertificateApprovedPayload struct {
	SerialNo   string    `json:"serial_no"`
	ApprovedAt time.Time `json:"approved_at"`
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/events"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/pdf"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/repository"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

const serialPrefix = "NDS"

// defaultCAKNumber fills radio certificates created without a CAK number.
const defaultCAKNumber = "1234567890"

// CertificateService coordinates certificate workflows, including the
// OTP-gated approval step.
type CertificateService struct {
	certs      repository.CertificateRepository
	otp        *otp.Service
	dispatcher events.Dispatcher
}

// CertificateDependencies bundles collaborators for certificate service.
type CertificateDependencies struct {
	CertificateRepo repository.CertificateRepository
	OTP             *otp.Service
	Dispatcher      events.Dispatcher
}

// CertificateInput describes create/update payloads. Type and serial are
// fixed at creation.
type CertificateInput struct {
	Type     domain.CertificateType
	IssuedTo string

	VehicleRegNumber   string
	Make               string
	BodyType           string
	ChassisNumber      string
	IMEINo             string
	SIMNo              string
	DeviceFittedWith   string
	DateOfInstallation *time.Time
	ExpiryDate         *time.Time
	IDNumber           string
	PhoneNumber        string

	CompanyName        string
	RadioLicenseNumber string
	DeviceID           string
	Model              string
	CAKNumber          string
}

// CertificateListInput describes listing filters.
type CertificateListInput struct {
	Type      *domain.CertificateType
	Customer  *string
	SerialNo  *string
	From      *time.Time
	To        *time.Time
	CreatedBy *string
	Limit     int
	Offset    int
}

// NewCertificateService constructs the service.
func NewCertificateService(deps CertificateDependencies) *CertificateService {
	return &CertificateService{
		certs:      deps.CertificateRepo,
		otp:        deps.OTP,
		dispatcher: deps.Dispatcher,
	}
}

// Create issues a new certificate with a server-generated sequential serial.
func (s *CertificateService) Create(ctx context.Context, actor *domain.User, input CertificateInput) (*domain.Certificate, error) {
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("certificate type must be tracking or radio", nil)
	}
	if input.IssuedTo == "" {
		return nil, apperrors.NewValidationError("issued_to is required", nil)
	}

	count, err := s.certs.Count(ctx)
	if err != nil {
		return nil, err
	}

	cert := &domain.Certificate{
		SerialNo:    fmt.Sprintf("%s-%05d", serialPrefix, count+1),
		Type:        input.Type,
		IssuedTo:    input.IssuedTo,
		DateOfIssue: time.Now(),
		CreatedBy:   actor.ID,
	}
	applyInput(cert, input)
	if cert.Type == domain.CertificateTypeRadio && cert.CAKNumber == "" {
		cert.CAKNumber = defaultCAKNumber
	}

	if err := s.certs.Create(ctx, cert); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCertificateCreated, cert.ID, actor.ID, events.CertificateCreatedPayload{
		SerialNo: cert.SerialNo,
		Type:     cert.Type,
		IssuedTo: cert.IssuedTo,
	})
	return cert, nil
}

// List returns certificates visible to the actor. Non-admins only ever see
// their own; the created_by filter is honored for admins only.
func (s *CertificateService) List(ctx context.Context, actor *domain.User, input CertificateListInput) ([]domain.Certificate, error) {
	filter := repository.CertificateFilter{
		Type:     input.Type,
		Customer: input.Customer,
		SerialNo: input.SerialNo,
		From:     input.From,
		To:       input.To,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if actor.Role == domain.RoleAdmin {
		filter.CreatedBy = input.CreatedBy
	} else {
		filter.OwnerID = &actor.ID
	}
	return s.certs.List(ctx, filter)
}

// Get loads one certificate, enforcing owner-or-admin visibility.
func (s *CertificateService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Certificate, error) {
	return s.getVisible(ctx, actor, id)
}

// Update modifies an unapproved certificate. Approval is terminal: an
// approved certificate can no longer be edited.
func (s *CertificateService) Update(ctx context.Context, actor *domain.User, id string, input CertificateInput) (*domain.Certificate, error) {
	cert, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if cert.Approved {
		return nil, apperrors.NewConflict("ALREADY_APPROVED", "certificate already approved", nil)
	}
	if input.IssuedTo != "" {
		cert.IssuedTo = input.IssuedTo
	}
	applyInput(cert, input)

	if err := s.certs.Update(ctx, cert); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventCertificateUpdated, cert.ID, actor.ID, nil)
	return cert, nil
}

// Delete removes an unapproved certificate.
func (s *CertificateService) Delete(ctx context.Context, actor *domain.User, id string) error {
	cert, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if cert.Approved {
		return apperrors.NewConflict("ALREADY_APPROVED", "certificate already approved", nil)
	}
	if err := s.certs.Delete(ctx, cert.ID); err != nil {
		return err
	}
	s.publish(ctx, events.EventCertificateDeleted, cert.ID, actor.ID, nil)
	return nil
}

// RequestApprovalOTP issues the approval challenge for a certificate and
// relays the code to the operator numbers. Any prior unconsumed approval
// code for the same certificate is replaced.
func (s *CertificateService) RequestApprovalOTP(ctx context.Context, actor *domain.User, id string) error {
	cert, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if cert.Approved {
		return apperrors.NewConflict("ALREADY_APPROVED", "certificate already approved", nil)
	}
	if _, err := s.otp.Issue(ctx, otp.CertificateKey(cert.ID)); err != nil {
		return mapOTPError(err)
	}
	return nil
}

// ConfirmApproval consumes the approval code and flips the approved flag.
// The flag update is conditional on approved=false, so two racing
// confirmations cannot both approve.
func (s *CertificateService) ConfirmApproval(ctx context.Context, actor *domain.User, id, code string) (*domain.Certificate, error) {
	cert, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if cert.Approved {
		return nil, apperrors.NewConflict("ALREADY_APPROVED", "certificate already approved", nil)
	}

	if err := s.otp.Verify(ctx, otp.CertificateKey(cert.ID), code); err != nil {
		return nil, mapOTPError(err)
	}

	approvedAt := time.Now()
	updated, err := s.certs.SetApproved(ctx, cert.ID, approvedAt)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.NewConflict("ALREADY_APPROVED", "certificate already approved", nil)
	}

	cert.Approved = true
	cert.ApprovedAt = &approvedAt

	s.publish(ctx, events.EventCertificateApproved, cert.ID, actor.ID, events.CertificateApprovedPayload{
		SerialNo:   cert.SerialNo,
		ApprovedAt: approvedAt,
	})
	return cert, nil
}

// ExportPDF renders the printable document for a certificate.
func (s *CertificateService) ExportPDF(ctx context.Context, actor *domain.User, id string) ([]byte, string, error) {
	cert, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	data, err := pdf.RenderCertificate(cert)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("certificate_%s.pdf", cert.SerialNo), nil
}

func (s *CertificateService) getVisible(ctx context.Context, actor *domain.User, id string) (*domain.Certificate, error) {
	cert, err := s.certs.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("certificate", nil)
		}
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && cert.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("not authorized")
	}
	return cert, nil
}

func applyInput(cert *domain.Certificate, input CertificateInput) {
	switch cert.Type {
	case domain.CertificateTypeTracking:
		cert.VehicleRegNumber = input.VehicleRegNumber
		cert.Make = input.Make
		cert.BodyType = input.BodyType
		cert.ChassisNumber = input.ChassisNumber
		cert.IMEINo = input.IMEINo
		cert.SIMNo = input.SIMNo
		cert.DeviceFittedWith = input.DeviceFittedWith
		cert.DateOfInstallation = input.DateOfInstallation
		cert.ExpiryDate = input.ExpiryDate
		cert.IDNumber = input.IDNumber
		cert.PhoneNumber = input.PhoneNumber
	case domain.CertificateTypeRadio:
		cert.CompanyName = input.CompanyName
		cert.RadioLicenseNumber = input.RadioLicenseNumber
		cert.DeviceID = input.DeviceID
		cert.Model = input.Model
		if input.CAKNumber != "" {
			cert.CAKNumber = input.CAKNumber
		}
	}
}

func (s *CertificateService) publish(ctx context.Context, eventType events.EventType, subjectID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

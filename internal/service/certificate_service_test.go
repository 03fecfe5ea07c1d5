package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/events"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/service"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

func newCertFixture(t *testing.T) (*service.CertificateService, *memCertRepo, *captureSender) {
	t.Helper()
	certs := newMemCertRepo()
	sender := &captureSender{}
	otpService := otp.NewService(otp.NewMemoryStore(), sender, 5*time.Minute, zap.NewNop())
	certService := service.NewCertificateService(service.CertificateDependencies{
		CertificateRepo: certs,
		OTP:             otpService,
		Dispatcher:      events.NewInMemoryDispatcher(),
	})
	return certService, certs, sender
}

func testUser(role domain.Role) *domain.User {
	return &domain.User{ID: "user-" + string(role), Name: "Test", Email: string(role) + "@example.com", Role: role}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

func TestCreate_SerialFormat(t *testing.T) {
	ctx := context.Background()
	certService, _, _ := newCertFixture(t)
	owner := testUser(domain.RoleUser)

	first, err := certService.Create(ctx, owner, service.CertificateInput{
		Type:     domain.CertificateTypeTracking,
		IssuedTo: "Acme Transport Ltd",
	})
	require.NoError(t, err)
	require.Equal(t, "NDS-00001", first.SerialNo)

	second, err := certService.Create(ctx, owner, service.CertificateInput{
		Type:     domain.CertificateTypeRadio,
		IssuedTo: "Beacon Couriers",
	})
	require.NoError(t, err)
	require.Equal(t, "NDS-00002", second.SerialNo)
}

func TestCreate_RadioDefaultsCAKNumber(t *testing.T) {
	ctx := context.Background()
	certService, _, _ := newCertFixture(t)

	cert, err := certService.Create(ctx, testUser(domain.RoleUser), service.CertificateInput{
		Type:     domain.CertificateTypeRadio,
		IssuedTo: "Beacon Couriers",
	})
	require.NoError(t, err)
	require.Equal(t, "1234567890", cert.CAKNumber)
}

func TestCreate_InvalidType(t *testing.T) {
	ctx := context.Background()
	certService, _, _ := newCertFixture(t)

	_, err := certService.Create(ctx, testUser(domain.RoleUser), service.CertificateInput{
		Type:     "boat",
		IssuedTo: "Acme",
	})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestVisibility_OwnerVsAdmin(t *testing.T) {
	ctx := context.Background()
	certService, _, _ := newCertFixture(t)
	owner := testUser(domain.RoleUser)
	stranger := &domain.User{ID: "user-other", Role: domain.RoleUser}
	admin := testUser(domain.RoleAdmin)

	cert, err := certService.Create(ctx, owner, service.CertificateInput{
		Type:     domain.CertificateTypeTracking,
		IssuedTo: "Acme Transport Ltd",
	})
	require.NoError(t, err)

	_, err = certService.Get(ctx, stranger, cert.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = certService.Get(ctx, owner, cert.ID)
	require.NoError(t, err)

	_, err = certService.Get(ctx, admin, cert.ID)
	require.NoError(t, err)

	ownerList, err := certService.List(ctx, stranger, service.CertificateListInput{})
	require.NoError(t, err)
	require.Empty(t, ownerList)
}

func TestGet_Unknown(t *testing.T) {
	ctx := context.Background()
	certService, _, _ := newCertFixture(t)

	_, err := certService.Get(ctx, testUser(domain.RoleAdmin), "missing-id")
	requireCode(t, err, "NOT_FOUND")
}

func TestApprovalFlow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	certService, _, sender := newCertFixture(t)
	admin := testUser(domain.RoleAdmin)

	cert, err := certService.Create(ctx, admin, service.CertificateInput{
		Type:     domain.CertificateTypeTracking,
		IssuedTo: "Acme Transport Ltd",
	})
	require.NoError(t, err)

	require.NoError(t, certService.RequestApprovalOTP(ctx, admin, cert.ID))
	code := sender.last()
	require.Len(t, code, 6)

	approved, err := certService.ConfirmApproval(ctx, admin, cert.ID, code)
	require.NoError(t, err)
	require.True(t, approved.Approved)
	require.NotNil(t, approved.ApprovedAt)

	// Replay: the challenge was consumed and the certificate is terminal.
	_, err = certService.ConfirmApproval(ctx, admin, cert.ID, code)
	requireCode(t, err, "ALREADY_APPROVED")

	// A fresh request on an approved certificate is refused too.
	err = certService.RequestApprovalOTP(ctx, admin, cert.ID)
	requireCode(t, err, "ALREADY_APPROVED")
}

func TestConfirmApproval_WrongCode(t *testing.T) {
	ctx := context.Background()
	certService, _, sender := newCertFixture(t)
	admin := testUser(domain.RoleAdmin)

	cert, err := certService.Create(ctx, admin, service.CertificateInput{
		Type:     domain.CertificateTypeTracking,
		IssuedTo: "Acme Transport Ltd",
	})
	require.NoError(t, err)
	require.NoError(t, certService.RequestApprovalOTP(ctx, admin, cert.ID))

	wrong := "000000"
	if sender.last() == wrong {
		wrong = "000001"
	}
	_, err = certService.ConfirmApproval(ctx, admin, cert.ID, wrong)
	requireCode(t, err, "OTP_MISMATCH")

	// The right code still works after a failed attempt.
	_, err = certService.ConfirmApproval(ctx, admin, cert.ID, sender.last())
	require.NoError(t, err)
}

func TestUpdateAndDelete_ApprovedIsTerminal(t *testing.T) {
	ctx := context.Background()
	certService, _, sender := newCertFixture(t)
	admin := testUser(domain.RoleAdmin)

	cert, err := certService.Create(ctx, admin, service.CertificateInput{
		Type:     domain.CertificateTypeTracking,
		IssuedTo: "Acme Transport Ltd",
	})
	require.NoError(t, err)
	require.NoError(t, certService.RequestApprovalOTP(ctx, admin, cert.ID))
	_, err = certService.ConfirmApproval(ctx, admin, cert.ID, sender.last())
	require.NoError(t, err)

	_, err = certService.Update(ctx, admin, cert.ID, service.CertificateInput{IssuedTo: "Renamed"})
	requireCode(t, err, "ALREADY_APPROVED")

	err = certService.Delete(ctx, admin, cert.ID)
	requireCode(t, err, "ALREADY_APPROVED")
}

func TestExportPDF(t *testing.T) {
	ctx := context.Background()
	certService, _, _ := newCertFixture(t)
	owner := testUser(domain.RoleUser)

	installed := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	cert, err := certService.Create(ctx, owner, service.CertificateInput{
		Type:               domain.CertificateTypeTracking,
		IssuedTo:           "Acme Transport Ltd",
		VehicleRegNumber:   "KDA 123A",
		Make:               "Toyota",
		DateOfInstallation: &installed,
	})
	require.NoError(t, err)

	data, filename, err := certService.ExportPDF(ctx, owner, cert.ID)
	require.NoError(t, err)
	require.Equal(t, "certificate_"+cert.SerialNo+".pdf", filename)
	require.True(t, len(data) > 4)
	require.Equal(t, "%PDF", string(data[:4]))
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/api/dto"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/auth"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/service"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

// CertificatesHandler manages certificate endpoints.
type CertificatesHandler struct {
	service *service.CertificateService
}

// NewCertificatesHandler constructs handler.
func NewCertificatesHandler(certService *service.CertificateService) *CertificatesHandler {
	return &CertificatesHandler{service: certService}
}

// Create POST /api/certificates.
func (h *CertificatesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cert, err := h.service.Create(c.Context(), principal.User, certificateInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CertificateView(cert)})
}

// List GET /api/certificates.
func (h *CertificatesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	certs, err := h.service.List(c.Context(), principal.User, parseListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.CertificateResponse, 0, len(certs))
	for i := range certs {
		items = append(items, dto.CertificateView(&certs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/certificates/:id.
func (h *CertificatesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	cert, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CertificateView(cert)})
}

// Update PUT /api/certificates/:id.
func (h *CertificatesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cert, err := h.service.Update(c.Context(), principal.User, c.Params("id"), certificateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CertificateView(cert)})
}

// Delete DELETE /api/certificates/:id.
func (h *CertificatesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// RequestApprovalOTP POST /api/certificates/:id/approve/request-otp.
func (h *CertificatesHandler) RequestApprovalOTP(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.RequestApprovalOTP(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"accepted": true,
			"message":  "Approval OTP sent to admin numbers.",
		},
	})
}

// VerifyApprovalOTP POST /api/certificates/:id/approve/verify-otp.
func (h *CertificatesHandler) VerifyApprovalOTP(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ApprovalVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OTP == "" {
		return apperrors.NewValidationError("otp required", nil)
	}

	cert, err := h.service.ConfirmApproval(c.Context(), principal.User, c.Params("id"), req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CertificateView(cert)})
}

// Share POST /api/certificates/:id/share streams the printable PDF.
func (h *CertificatesHandler) Share(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	data, filename, err := h.service.ExportPDF(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// Email POST /api/certificates/:id/email. Stub, as in the original system.
func (h *CertificatesHandler) Email(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if _, err := h.service.Get(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "Certificate sent by email (stub implementation)"}})
}

// WhatsApp POST /api/certificates/:id/whatsapp. Stub, as in the original system.
func (h *CertificatesHandler) WhatsApp(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if _, err := h.service.Get(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "Certificate shared via WhatsApp (stub implementation)"}})
}

func certificateInput(req dto.CertificateRequest) service.CertificateInput {
	return service.CertificateInput{
		Type:               req.Type,
		IssuedTo:           req.IssuedTo,
		VehicleRegNumber:   req.VehicleRegNumber,
		Make:               req.Make,
		BodyType:           req.BodyType,
		ChassisNumber:      req.ChassisNumber,
		IMEINo:             req.IMEINo,
		SIMNo:              req.SIMNo,
		DeviceFittedWith:   req.DeviceFittedWith,
		DateOfInstallation: req.DateOfInstallation,
		ExpiryDate:         req.ExpiryDate,
		IDNumber:           req.IDNumber,
		PhoneNumber:        req.PhoneNumber,
		CompanyName:        req.CompanyName,
		RadioLicenseNumber: req.RadioLicenseNumber,
		DeviceID:           req.DeviceID,
		Model:              req.Model,
		CAKNumber:          req.CAKNumber,
	}
}

func parseListQuery(c *fiber.Ctx) service.CertificateListInput {
	input := service.CertificateListInput{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("type"); v != "" {
		t := domain.CertificateType(v)
		input.Type = &t
	}
	if v := c.Query("customer"); v != "" {
		input.Customer = &v
	}
	if v := c.Query("serial"); v != "" {
		input.SerialNo = &v
	}
	if v := c.Query("created_by"); v != "" {
		input.CreatedBy = &v
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			input.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			input.To = &t
		}
	}
	return input
}

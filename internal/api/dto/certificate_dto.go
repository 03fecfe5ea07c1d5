package dto

import (
	"time"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
)

// CertificateRequest payload for create and update.
type CertificateRequest struct {
	Type     domain.CertificateType `json:"type"`
	IssuedTo string                 `json:"issued_to"`

	VehicleRegNumber   string     `json:"vehicle_reg_number,omitempty"`
	Make               string     `json:"make,omitempty"`
	BodyType           string     `json:"body_type,omitempty"`
	ChassisNumber      string     `json:"chassis_number,omitempty"`
	IMEINo             string     `json:"imei_no,omitempty"`
	SIMNo              string     `json:"sim_no,omitempty"`
	DeviceFittedWith   string     `json:"device_fitted_with,omitempty"`
	DateOfInstallation *time.Time `json:"date_of_installation,omitempty"`
	ExpiryDate         *time.Time `json:"expiry_date,omitempty"`
	IDNumber           string     `json:"id_number,omitempty"`
	PhoneNumber        string     `json:"phone_number,omitempty"`

	CompanyName        string `json:"company_name,omitempty"`
	RadioLicenseNumber string `json:"radio_license_number,omitempty"`
	DeviceID           string `json:"device_id,omitempty"`
	Model              string `json:"model,omitempty"`
	CAKNumber          string `json:"cak_number,omitempty"`
}

// ApprovalVerifyRequest payload for the approval OTP confirmation.
type ApprovalVerifyRequest struct {
	OTP string `json:"otp"`
}

// CertificateResponse is the full API view of a certificate.
type CertificateResponse struct {
	ID          string                 `json:"id"`
	SerialNo    string                 `json:"serial_no"`
	Type        domain.CertificateType `json:"type"`
	IssuedTo    string                 `json:"issued_to"`
	DateOfIssue time.Time              `json:"date_of_issue"`
	CreatedBy   string                 `json:"created_by"`

	VehicleRegNumber   string     `json:"vehicle_reg_number,omitempty"`
	Make               string     `json:"make,omitempty"`
	BodyType           string     `json:"body_type,omitempty"`
	ChassisNumber      string     `json:"chassis_number,omitempty"`
	IMEINo             string     `json:"imei_no,omitempty"`
	SIMNo              string     `json:"sim_no,omitempty"`
	DeviceFittedWith   string     `json:"device_fitted_with,omitempty"`
	DateOfInstallation *time.Time `json:"date_of_installation,omitempty"`
	ExpiryDate         *time.Time `json:"expiry_date,omitempty"`
	IDNumber           string     `json:"id_number,omitempty"`
	PhoneNumber        string     `json:"phone_number,omitempty"`

	CompanyName        string `json:"company_name,omitempty"`
	RadioLicenseNumber string `json:"radio_license_number,omitempty"`
	DeviceID           string `json:"device_id,omitempty"`
	Model              string `json:"model,omitempty"`
	CAKNumber          string `json:"cak_number,omitempty"`

	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CertificateView maps a domain certificate to its API view.
func CertificateView(cert *domain.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:          cert.ID,
		SerialNo:    cert.SerialNo,
		Type:        cert.Type,
		IssuedTo:    cert.IssuedTo,
		DateOfIssue: cert.DateOfIssue,
		CreatedBy:   cert.CreatedBy,

		VehicleRegNumber:   cert.VehicleRegNumber,
		Make:               cert.Make,
		BodyType:           cert.BodyType,
		ChassisNumber:      cert.ChassisNumber,
		IMEINo:             cert.IMEINo,
		SIMNo:              cert.SIMNo,
		DeviceFittedWith:   cert.DeviceFittedWith,
		DateOfInstallation: cert.DateOfInstallation,
		ExpiryDate:         cert.ExpiryDate,
		IDNumber:           cert.IDNumber,
		PhoneNumber:        cert.PhoneNumber,

		CompanyName:        cert.CompanyName,
		RadioLicenseNumber: cert.RadioLicenseNumber,
		DeviceID:           cert.DeviceID,
		Model:              cert.Model,
		CAKNumber:          cert.CAKNumber,

		Approved:   cert.Approved,
		ApprovedAt: cert.ApprovedAt,
		CreatedAt:  cert.CreatedAt,
		UpdatedAt:  cert.UpdatedAt,
	}
}

package domain

import "time"

// CertificateType enumerates the two certificate kinds the company issues.
type CertificateType string

const (
	CertificateTypeTracking CertificateType = "tracking"
	CertificateTypeRadio    CertificateType = "radio"
)

// Valid reports whether the type is a known certificate kind.
func (t CertificateType) Valid() bool {
	return t == CertificateTypeTracking || t == CertificateTypeRadio
}

// Certificate models an issued compliance certificate. Tracking and radio
// certificates share the envelope fields; the type-specific sections are
// sparse depending on Type.
type Certificate struct {
	ID          string
	SerialNo    string
	Type        CertificateType
	IssuedTo    string
	DateOfIssue time.Time
	CreatedBy   string

	// Vehicle tracking installation fields.
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

	// Radio call ownership fields.
	CompanyName        string
	RadioLicenseNumber string
	DeviceID           string
	Model              string
	CAKNumber          string

	Approved   bool
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

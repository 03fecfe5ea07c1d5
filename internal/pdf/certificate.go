package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
)

// RenderCertificate produces the printable PDF for a certificate. The
// layout mirrors the share/print document the frontend expects: a common
// envelope followed by the type-specific section.
func RenderCertificate(cert *domain.Certificate) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Certificate", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 14)
	line(doc, "Type", typeLabel(cert.Type))
	line(doc, "Certificate Serial No", cert.SerialNo)
	line(doc, "Issued To", cert.IssuedTo)
	line(doc, "Date of Issue", cert.DateOfIssue.Format("2006-01-02"))

	switch cert.Type {
	case domain.CertificateTypeTracking:
		doc.Ln(4)
		line(doc, "Vehicle Reg Number", cert.VehicleRegNumber)
		line(doc, "Make", cert.Make)
		line(doc, "Body Type", cert.BodyType)
		line(doc, "Chassis Number", cert.ChassisNumber)
		line(doc, "Device Fitted With", cert.DeviceFittedWith)
		line(doc, "IMEI No", cert.IMEINo)
		line(doc, "SIM No", cert.SIMNo)
		line(doc, "Date of Installation", formatDate(cert.DateOfInstallation))
		line(doc, "Expiry Date", formatDate(cert.ExpiryDate))
		line(doc, "ID Number", cert.IDNumber)
		line(doc, "Phone Number", cert.PhoneNumber)
	case domain.CertificateTypeRadio:
		doc.Ln(4)
		line(doc, "Company Name", cert.CompanyName)
		line(doc, "Radio License Number", cert.RadioLicenseNumber)
		line(doc, "Device ID", cert.DeviceID)
		line(doc, "Model", cert.Model)
		line(doc, "CAK Number", cert.CAKNumber)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func line(doc *gofpdf.Fpdf, label, value string) {
	doc.CellFormat(0, 8, fmt.Sprintf("%s: %s", label, value), "", 1, "L", false, 0, "")
}

func typeLabel(t domain.CertificateType) string {
	if t == domain.CertificateTypeTracking {
		return "Vehicle Tracking Installation"
	}
	return "Radio Call Ownership"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
)

// CertificateFilter captures listing parameters. OwnerID is enforced by the
// service for non-admin callers; CreatedBy is the admin-only filter.
type CertificateFilter struct {
	OwnerID   *string
	CreatedBy *string
	Type      *domain.CertificateType
	Customer  *string
	SerialNo  *string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// CertificateRepository encapsulates certificate persistence.
type CertificateRepository interface {
	Create(ctx context.Context, cert *domain.Certificate) error
	Update(ctx context.Context, cert *domain.Certificate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Certificate, error)
	List(ctx context.Context, filter CertificateFilter) ([]domain.Certificate, error)
	Count(ctx context.Context) (int64, error)
	// SetApproved flips the approval flag exactly once; it reports false
	// when the certificate was already approved (or does not exist).
	SetApproved(ctx context.Context, id string, approvedAt time.Time) (bool, error)
}

type certificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository instantiates repository.
func NewCertificateRepository(pool *pgxpool.Pool) CertificateRepository {
	return &certificateRepository{pool: pool}
}

const certificateColumns = `
        id, serial_no, type, issued_to, date_of_issue, created_by,
        vehicle_reg_number, make, body_type, chassis_number, imei_no, sim_no,
        device_fitted_with, date_of_installation, expiry_date, id_number, phone_number,
        company_name, radio_license_number, device_id, model, cak_number,
        approved, approved_at, created_at, updated_at`

func (r *certificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	const query = `
        INSERT INTO certificates (
            serial_no, type, issued_to, date_of_issue, created_by,
            vehicle_reg_number, make, body_type, chassis_number, imei_no, sim_no,
            device_fitted_with, date_of_installation, expiry_date, id_number, phone_number,
            company_name, radio_license_number, device_id, model, cak_number)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING id, approved, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cert.SerialNo,
		cert.Type,
		cert.IssuedTo,
		cert.DateOfIssue,
		cert.CreatedBy,
		cert.VehicleRegNumber,
		cert.Make,
		cert.BodyType,
		cert.ChassisNumber,
		cert.IMEINo,
		cert.SIMNo,
		cert.DeviceFittedWith,
		cert.DateOfInstallation,
		cert.ExpiryDate,
		cert.IDNumber,
		cert.PhoneNumber,
		cert.CompanyName,
		cert.RadioLicenseNumber,
		cert.DeviceID,
		cert.Model,
		cert.CAKNumber,
	).Scan(&cert.ID, &cert.Approved, &cert.CreatedAt, &cert.UpdatedAt)
}

func (r *certificateRepository) Update(ctx context.Context, cert *domain.Certificate) error {
	const query = `
        UPDATE certificates SET
            issued_to=$1,
            vehicle_reg_number=$2, make=$3, body_type=$4, chassis_number=$5,
            imei_no=$6, sim_no=$7, device_fitted_with=$8,
            date_of_installation=$9, expiry_date=$10, id_number=$11, phone_number=$12,
            company_name=$13, radio_license_number=$14, device_id=$15, model=$16, cak_number=$17,
            updated_at=NOW()
        WHERE id=$18`
	cmd, err := r.pool.Exec(ctx, query,
		cert.IssuedTo,
		cert.VehicleRegNumber,
		cert.Make,
		cert.BodyType,
		cert.ChassisNumber,
		cert.IMEINo,
		cert.SIMNo,
		cert.DeviceFittedWith,
		cert.DateOfInstallation,
		cert.ExpiryDate,
		cert.IDNumber,
		cert.PhoneNumber,
		cert.CompanyName,
		cert.RadioLicenseNumber,
		cert.DeviceID,
		cert.Model,
		cert.CAKNumber,
		cert.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *certificateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM certificates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *certificateRepository) GetByID(ctx context.Context, id string) (*domain.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanCertificate(row)
}

func (r *certificateRepository) List(ctx context.Context, filter CertificateFilter) ([]domain.Certificate, error) {
	var (
		conditions []string
		args       []any
	)
	addArg := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.OwnerID != nil {
		addArg("created_by=$%d", *filter.OwnerID)
	}
	if filter.CreatedBy != nil {
		addArg("created_by=$%d", *filter.CreatedBy)
	}
	if filter.Type != nil {
		addArg("type=$%d", *filter.Type)
	}
	if filter.Customer != nil {
		addArg("issued_to ILIKE $%d", "%"+*filter.Customer+"%")
	}
	if filter.SerialNo != nil {
		addArg("serial_no=$%d", *filter.SerialNo)
	}
	if filter.From != nil {
		addArg("date_of_issue >= $%d", *filter.From)
	}
	if filter.To != nil {
		addArg("date_of_issue <= $%d", *filter.To)
	}

	query := `SELECT ` + certificateColumns + ` FROM certificates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date_of_issue DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []domain.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, *cert)
	}
	return certs, rows.Err()
}

func (r *certificateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *certificateRepository) SetApproved(ctx context.Context, id string, approvedAt time.Time) (bool, error) {
	const query = `
        UPDATE certificates SET approved=TRUE, approved_at=$1, updated_at=NOW()
        WHERE id=$2 AND approved=FALSE`
	cmd, err := r.pool.Exec(ctx, query, approvedAt, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanCertificate(row pgx.Row) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := row.Scan(
		&cert.ID,
		&cert.SerialNo,
		&cert.Type,
		&cert.IssuedTo,
		&cert.DateOfIssue,
		&cert.CreatedBy,
		&cert.VehicleRegNumber,
		&cert.Make,
		&cert.BodyType,
		&cert.ChassisNumber,
		&cert.IMEINo,
		&cert.SIMNo,
		&cert.DeviceFittedWith,
		&cert.DateOfInstallation,
		&cert.ExpiryDate,
		&cert.IDNumber,
		&cert.PhoneNumber,
		&cert.CompanyName,
		&cert.RadioLicenseNumber,
		&cert.DeviceID,
		&cert.Model,
		&cert.CAKNumber,
		&cert.Approved,
		&cert.ApprovedAt,
		&cert.CreatedAt,
		&cert.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cert, nil
}

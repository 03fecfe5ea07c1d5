package service

import (
	"errors"
	"net/http"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

// mapOTPError translates challenge outcomes into the HTTP error taxonomy.
func mapOTPError(err error) error {
	switch {
	case errors.Is(err, otp.ErrNotFound):
		return apperrors.NewDomainError("OTP_NOT_FOUND",
			"no OTP found, please request a new code", http.StatusBadRequest, nil)
	case errors.Is(err, otp.ErrExpired):
		return apperrors.NewDomainError("OTP_EXPIRED",
			"OTP expired, please request a new code", http.StatusBadRequest, nil)
	case errors.Is(err, otp.ErrMismatch):
		return apperrors.NewDomainError("OTP_MISMATCH",
			"OTP is incorrect", http.StatusBadRequest, nil)
	case errors.Is(err, otp.ErrNotificationFailed):
		return apperrors.NewNotificationFailed(err)
	default:
		return err
	}
}

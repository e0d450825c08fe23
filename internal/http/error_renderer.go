package httpx

import (
	"net/http"

	apperrors "github.com/quickgig/quickgig-api/internal/errors"
)

// statusForCode maps application error codes to HTTP statuses. Codes that
// describe a state the client can re-read and retry map to 409.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidRating,
		apperrors.ErrCodeLocationUnavailable, apperrors.ErrCodeMissingLocation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict, apperrors.ErrCodeInvalidTransition,
		apperrors.ErrCodeAlreadyApplied, apperrors.ErrCodeAlreadyDecided,
		apperrors.ErrCodeSelfApplication, apperrors.ErrCodeJobNotOpen,
		apperrors.ErrCodeNotInProgress, apperrors.ErrCodeNoPendingRequest,
		apperrors.ErrCodeTasksIncomplete, apperrors.ErrCodeForeignKey:
		return http.StatusConflict
	case apperrors.ErrCodeLocationVerificationFailed:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// RenderError writes an application error as a JSON response, carrying the
// error code and any structured details (for example the geofence
// verification outcome on a rejected start).
func RenderError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	WriteError(w, ErrorParams{
		Code:    statusForCode(code),
		ErrCode: string(code),
		Err:     err,
		Details: apperrors.DetailsOf(err),
	})
}

package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names the schema defines for lifecycle invariants. MapDBError
// translates their violations into domain error codes so races resolved by
// the database surface the same way as races caught in the service layer.
const (
	// constraintWorkerActiveApplication enforces at most one non-rejected
	// application per worker per job.
	constraintWorkerActiveApplication = "uq_applications_worker_active"
	// constraintOneAcceptedApplication enforces at most one accepted
	// application per job.
	constraintOneAcceptedApplication = "uq_applications_one_accepted"
	// constraintWorkerRatingRange and constraintPosterRatingRange bound
	// ratings to 1-5.
	constraintWorkerRatingRange = "ck_completion_worker_rating"
	constraintPosterRatingRange = "ck_completion_poster_rating"
)

// MapDBError maps database errors to AppError instances. It handles:
// - pgx.ErrNoRows → NotFound
// - lifecycle constraint violations → AlreadyApplied / Conflict / InvalidRating
// - other unique violations → Conflict
// - foreign key violations → ForeignKey
// - check and NOT NULL violations → Validation
// - context timeouts/cancellations → Timeout/Canceled
//
// If the error is not a recognized database error, it returns the original error.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled.",
			Cause:   err,
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{
			Code:    ErrCodeNotFound,
			Message: "Resource not found",
			Cause:   err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return &AppError{
			Code:    ErrCodeForeignKey,
			Message: "A referenced record does not exist or is still in use.",
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation:
		return mapCheckViolation(pgErr)
	case pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Required field is missing.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

func mapUniqueViolation(pgErr *pgconn.PgError) error {
	switch pgErr.ConstraintName {
	case constraintWorkerActiveApplication:
		return &AppError{
			Code:    ErrCodeAlreadyApplied,
			Message: "You have already applied to this job.",
			Cause:   pgErr,
		}
	case constraintOneAcceptedApplication:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "Another application has already been accepted for this job.",
			Cause:   pgErr,
		}
	default:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists.",
			Cause:   pgErr,
		}
	}
}

func mapCheckViolation(pgErr *pgconn.PgError) error {
	switch pgErr.ConstraintName {
	case constraintWorkerRatingRange, constraintPosterRatingRange:
		return &AppError{
			Code:    ErrCodeInvalidRating,
			Message: "Ratings must be between 1 and 5.",
			Cause:   pgErr,
		}
	default:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Invalid data. Please check your input.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	}
}

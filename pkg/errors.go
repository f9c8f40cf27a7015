package pkg

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrorCode defines a standardized error code
type ErrorCode struct {
	Code    string
	Status  int
	Message string // default message
}

var (
	// Generic app
	ErrServerCode = ErrorCode{Code: "APP_INTERNAL", Status: http.StatusInternalServerError, Message: "internal server error"}

	// Request gate
	ErrContentTypeCode = ErrorCode{Code: "REQ_CONTENT_TYPE", Status: http.StatusBadRequest, Message: "Content-Type must be application/json"}
	ErrParseCode       = ErrorCode{Code: "REQ_PARSE", Status: http.StatusBadRequest, Message: "JSON parse error"}
	ErrRateLimitCode   = ErrorCode{Code: "REQ_RATE_LIMIT", Status: http.StatusInternalServerError, Message: "rate limit exceeded"}

	// Message processing
	ErrTransformCode  = ErrorCode{Code: "MSG_TRANSFORM", Status: http.StatusUnprocessableEntity, Message: "field transformation failed"}
	ErrValidationCode = ErrorCode{Code: "MSG_VALIDATION", Status: http.StatusUnprocessableEntity, Message: "business rule violated"}

	// Persistence layer. The underlying cause is logged, never surfaced.
	ErrStoreCode = ErrorCode{Code: "STORE_UNAVAILABLE", Status: http.StatusServiceUnavailable, Message: "Service Unavailable. Your request could not be processed at this time."}
)

type AppError struct {
	Code    ErrorCode
	Message string // public-facing message
	Cause   error  // internal cause (wrapped)
}

func (e AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}
func (e AppError) Unwrap() error { return e.Cause }

func NewAppError(code ErrorCode, msg string, cause error) error {
	return AppError{Code: code, Message: msg, Cause: cause}
}

// StatusFor resolves the HTTP status for an error. Non-AppError values map to 500.
func StatusFor(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code.Status
	}
	return ErrServerCode.Status
}

// PublicMessage resolves the client-safe message for an error. Non-AppError
// values map to a generic status-coded message so internal detail never leaks.
func PublicMessage(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fmt.Sprintf("Status code: %d", ErrServerCode.Status)
}

// HandleStoreError logs rich SQL error context and maps any persistence
// failure onto the generic 503 outcome. Constraint violations, connectivity
// errors and timeouts all look the same to the client.
func HandleStoreError(traceId string, logger *zap.Logger, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		logger.Error("store error",
			zap.String(TraceId, traceId),
			zap.String("code", pgErr.Code),
			zap.String("message", pgErr.Message),
			zap.String("detail", pgErr.Detail),
			zap.String("table", pgErr.TableName),
			zap.String("column", pgErr.ColumnName),
			zap.String("constraint", pgErr.ConstraintName),
		)
	} else {
		logger.Error("store error", zap.String(TraceId, traceId), zap.Error(err))
	}
	return NewAppError(ErrStoreCode, ErrStoreCode.Message, err)
}

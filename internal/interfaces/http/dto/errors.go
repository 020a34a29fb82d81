package dto

import (
	"errors"
	"net/http"

	"github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
)

// Transport error codes. Ledger rule violations keep their domain codes
// (NOTHING_TO_CLAIM, MIXED_OWNER_BATCH, ...) so clients can branch on them.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeStoreUnavailable    = "ERR_STORE_UNAVAILABLE"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeMissingActor        = "ERR_MISSING_ACTOR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Malformed input -> 400
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeMissingActor:        http.StatusBadRequest,
	shared.CodeInvalidAmount:   http.StatusBadRequest,
	shared.CodeInvalidPeriod:   http.StatusBadRequest,
	shared.CodeUnknownOwner:    http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	// Ledger rules -> 422
	shared.CodeNothingToClaim:       http.StatusUnprocessableEntity,
	shared.CodeMixedOwnerBatch:      http.StatusUnprocessableEntity,
	shared.CodeNotReimbursable:      http.StatusUnprocessableEntity,
	shared.CodeConfirmationRequired: http.StatusUnprocessableEntity,
	shared.CodeIneligibleOwner:      http.StatusUnprocessableEntity,
	shared.CodeOwnerNotSelected:     http.StatusUnprocessableEntity,

	ErrCodeStoreUnavailable:         http.StatusServiceUnavailable,
	shared.CodeStatementUnavailable: http.StatusServiceUnavailable,
	ledger.CodePartialApplication:   http.StatusMultiStatus,
}

// kindHTTPStatus is the fallback for domain codes missing from ErrorCodeHTTPStatus
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:  http.StatusBadRequest,
	shared.KindNotFound:    http.StatusNotFound,
	shared.KindConflict:    http.StatusConflict,
	shared.KindUnavailable: http.StatusServiceUnavailable,
	shared.KindInternal:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic domain codes to transport codes
var LegacyErrorCodeMapping = map[string]string{
	shared.CodeNotFound:            ErrCodeNotFound,
	shared.CodeValidation:          ErrCodeValidation,
	shared.CodeConcurrencyConflict: ErrCodeConcurrencyConflict,
	shared.CodeDuplicateRequest:    ErrCodeDuplicateRequest,
	shared.CodeStoreUnavailable:    ErrCodeStoreUnavailable,
	"BAD_REQUEST":                  ErrCodeBadRequest,
	"INTERNAL_ERROR":               ErrCodeInternal,
}

// NormalizeErrorCode converts a generic domain code to the ERR_ form.
// Ledger rule codes and unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// ErrorStatus resolves the response code and status of err. Unknown errors
// are internal; their message is not exposed.
func ErrorStatus(err error) (code string, status int, message string) {
	var partial *ledger.PartialApplicationError
	if errors.As(err, &partial) {
		return ledger.CodePartialApplication, http.StatusMultiStatus, partial.Error()
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = NormalizeErrorCode(domainErr.Code)
		if status, ok := ErrorCodeHTTPStatus[code]; ok {
			return code, status, domainErr.Message
		}
		if status, ok := kindHTTPStatus[domainErr.Kind]; ok && domainErr.Kind != shared.KindInternal {
			return code, status, domainErr.Message
		}
	}
	return ErrCodeInternal, http.StatusInternalServerError, "An unexpected error occurred"
}

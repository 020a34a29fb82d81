package shared

import "errors"

// ErrorKind classifies a DomainError for callers that need to branch on the
// failure category rather than on the exact code.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindUnavailable ErrorKind = "unavailable"
	KindInternal    ErrorKind = "internal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Kind: KindInternal, Code: code, Message: message}
}

// NewValidationError creates an error for input the ledger refuses to accept
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewNotFoundError creates an error for a missing resource
func NewNotFoundError(message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

// NewConflictError creates an error for a lost race on a store-enforced constraint
func NewConflictError(message string, cause error) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeConcurrencyConflict, Message: message, cause: cause}
}

// NewStoreUnavailableError wraps a transport or connection failure of the ledger store
func NewStoreUnavailableError(cause error) *DomainError {
	return &DomainError{Kind: KindUnavailable, Code: CodeStoreUnavailable, Message: "Ledger store unavailable", cause: cause}
}

// KindOf returns the kind of the first DomainError in err's chain
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Error codes
const (
	CodeNotFound             = "NOT_FOUND"
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeDuplicateRequest     = "DUPLICATE_REQUEST"
	CodeNothingToClaim       = "NOTHING_TO_CLAIM"
	CodeMixedOwnerBatch      = "MIXED_OWNER_BATCH"
	CodeNotReimbursable      = "NOT_REIMBURSABLE"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeIneligibleOwner      = "INELIGIBLE_OWNER"
	CodeOwnerNotSelected     = "OWNER_NOT_SELECTED"
	CodeUnknownOwner         = "UNKNOWN_OWNER"
	CodeInvalidPeriod        = "INVALID_PERIOD"
	CodeStatementUnavailable = "STATEMENT_UNAVAILABLE"
)

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: CodeNotFound, Message: "Resource not found"}
	ErrInvalidInput        = NewValidationError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("Resource was modified by another process", nil)
	ErrDuplicateRequest    = &DomainError{Kind: KindConflict, Code: CodeDuplicateRequest, Message: "Request with this idempotency key was already processed"}
)

package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)

// Pipeline and lifecycle errors
var (
	ErrTenantNotFound      = NewDomainError("TENANT_NOT_FOUND", "No business account matches this channel identity")
	ErrExtractionFailed    = NewDomainError("EXTRACTION_FAILED", "Could not extract an invoice intent from the message")
	ErrValidationFailed    = NewDomainError("VALIDATION_FAILED", "Invoice draft is missing required fields")
	ErrInvalidTransition   = NewDomainError("INVALID_TRANSITION", "Invoice state transition not allowed")
	ErrSignatureInvalid    = NewDomainError("SIGNATURE_INVALID", "Webhook signature verification failed")
	ErrDuplicateEvent      = NewDomainError("DUPLICATE_EVENT", "Payment event has already been processed")
	ErrTaskExecutionFailed = NewDomainError("TASK_EXECUTION_FAILED", "Background task execution failed")
)

package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a gateway-layer failure with a stable code.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes. UnsupportedOperation and MappingError are programmer/config
// errors; TransportError and IntegrityError abort the current transaction and
// surface to the caller as failed calls. Bank declines are not errors at all
// (see GatewayResponse).
const (
	ErrCodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	ErrCodeMappingError         = "MAPPING_ERROR"
	ErrCodeIntegrityError       = "INTEGRITY_ERROR"
	ErrCodeTransportError       = "TRANSPORT_ERROR"
	ErrCodeSessionNotFound      = "SESSION_NOT_FOUND"
)

func NewUnsupportedOperationError(gateway string, tx TransactionType) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnsupportedOperation,
		Message: fmt.Sprintf("operation %s is not implemented for gateway %s", tx, gateway),
	}
}

func NewMappingError(table, key string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMappingError,
		Message: fmt.Sprintf("no %s mapping declared for %q", table, key),
	}
}

func NewIntegrityError(orderID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeIntegrityError,
		Message: fmt.Sprintf("callback hash mismatch for order %s", orderID),
	}
}

func NewTransportError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransportError,
		Message: "gateway exchange failed",
		Err:     err,
	}
}

// NewUndecodableResponseError keeps the raw body as context so a failed
// decode is diagnosable after the fact.
func NewUndecodableResponseError(body string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransportError,
		Message: fmt.Sprintf("undecodable gateway response: %q", body),
	}
}

func NewSessionNotFoundError(orderID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeSessionNotFound,
		Message: fmt.Sprintf("payment session for order %s not found", orderID),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

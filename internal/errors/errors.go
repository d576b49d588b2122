// Package errors provides error handling utilities.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeUnsupportedDestination indicates no pricing zone covers the destination
	TypeUnsupportedDestination Type = "UNSUPPORTED_DESTINATION"

	// TypeAmbiguousZone indicates zone configuration matches more than one zone
	TypeAmbiguousZone Type = "AMBIGUOUS_ZONE"

	// TypeNoPricingAvailable indicates no effective pricing table exists
	TypeNoPricingAvailable Type = "NO_PRICING_AVAILABLE"

	// TypeWeightOutOfRange indicates no pricing rule covers the effective weight
	TypeWeightOutOfRange Type = "WEIGHT_OUT_OF_RANGE"

	// TypeMissingDeclaredValue indicates a percentage-priced rule or service
	// was requested without a declared shipment value
	TypeMissingDeclaredValue Type = "MISSING_DECLARED_VALUE"

	// TypeUnknownService indicates a requested additional service code is not configured
	TypeUnknownService Type = "UNKNOWN_SERVICE"

	// TypeInvalidPromoCode indicates a promo code is unknown, expired, or exhausted
	TypeInvalidPromoCode Type = "INVALID_PROMO_CODE"

	// TypeBatchTooLarge indicates a bulk request exceeds the batch size cap
	TypeBatchTooLarge Type = "BATCH_TOO_LARGE"

	// TypeValidation indicates malformed request input
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeConfig indicates invalid pricing configuration data
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// TypeOf returns the error type, or TypeInternal for foreign errors
func TypeOf(err error) Type {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return TypeInternal
}

// UnsupportedDestination creates an unsupported destination error
func UnsupportedDestination(countryCode, postalCode string) *Error {
	return Newf(TypeUnsupportedDestination, "no pricing zone covers %s %s", countryCode, postalCode)
}

// AmbiguousZone creates an ambiguous zone error
func AmbiguousZone(countryCode, postalCode string, zoneCodes []string) *Error {
	e := Newf(TypeAmbiguousZone, "destination %s %s matches multiple zones", countryCode, postalCode)
	return e.WithContext("zones", zoneCodes)
}

// NoPricingAvailable creates a no pricing available error
func NoPricingAvailable(carrier, zone, serviceType string) *Error {
	return Newf(TypeNoPricingAvailable, "no effective pricing table for carrier=%s zone=%s service=%s", carrier, zone, serviceType)
}

// WeightOutOfRange creates a weight out of range error
func WeightOutOfRange(weight, tableID string) *Error {
	return Newf(TypeWeightOutOfRange, "no pricing rule covers effective weight %s kg in table %s", weight, tableID)
}

// MissingDeclaredValue creates a missing declared value error
func MissingDeclaredValue(subject string) *Error {
	return Newf(TypeMissingDeclaredValue, "%s requires a declared shipment value", subject)
}

// UnknownService creates an unknown service error
func UnknownService(carrier, code string) *Error {
	return Newf(TypeUnknownService, "additional service %q is not configured for carrier %s", code, carrier)
}

// InvalidPromoCode creates an invalid promo code error
func InvalidPromoCode(code, reason string) *Error {
	return Newf(TypeInvalidPromoCode, "promo code %q %s", code, reason)
}

// BatchTooLarge creates a batch too large error
func BatchTooLarge(size, limit int) *Error {
	return Newf(TypeBatchTooLarge, "bulk request of %d items exceeds limit of %d", size, limit)
}

// Validation creates an input validation error
func Validation(message string) *Error {
	return New(TypeValidation, message)
}

// Validationf creates a formatted input validation error
func Validationf(format string, args ...interface{}) *Error {
	return Newf(TypeValidation, format, args...)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// Configf creates a formatted configuration error
func Configf(format string, args ...interface{}) *Error {
	return Newf(TypeConfig, format, args...)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

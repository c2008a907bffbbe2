package errors

import "fmt"

// ErrorCode represents a Sealbox error code.
type ErrorCode string

const (
	ErrValidation         ErrorCode = "VALIDATION_ERROR"      // 400
	ErrInvalidCode        ErrorCode = "INVALID_CODE"          // 400
	ErrInvalidOpenTime    ErrorCode = "INVALID_OPEN_TIME"     // 400
	ErrNotFound           ErrorCode = "CAPSULE_NOT_FOUND"     // 404
	ErrCapsuleLocked      ErrorCode = "CAPSULE_LOCKED"        // 403
	ErrDuplicateCode      ErrorCode = "DUPLICATE_CODE"        // 409, internal to the create retry loop
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"          // 401
	ErrInvalidPassword    ErrorCode = "INVALID_PASSWORD"      // 401
	ErrCodeSpaceExhausted ErrorCode = "CODE_SPACE_EXHAUSTED"  // 503, safe to retry the whole create
	ErrInternal           ErrorCode = "INTERNAL"              // 500
)

// CapsuleError represents a structured error with code, status, and details.
// Expected business conditions are values of this type; anything else that
// escapes the store is wrapped as ErrInternal.
type CapsuleError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CapsuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for malformed or out-of-range input.
func NewValidation(msg string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidCode creates a 400 error for a code failing the shape check.
func NewInvalidCode(code string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrInvalidCode,
		Status:  400,
		Message: "capsule code must be exactly 8 characters from [A-Z0-9]",
		Details: map[string]any{"code": code},
	}
}

// NewInvalidOpenTime creates a 400 error for an open time not strictly in
// the future.
func NewInvalidOpenTime() *CapsuleError {
	return &CapsuleError{
		Code:    ErrInvalidOpenTime,
		Status:  400,
		Message: "open time must be in the future",
	}
}

// NewNotFound creates a 404 error for when a capsule cannot be found.
func NewNotFound(identifier string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewCapsuleLocked creates a 403 error for content requested before the
// capsule's open time.
func NewCapsuleLocked(openTime string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrCapsuleLocked,
		Status:  403,
		Message: "capsule is not yet open",
		Details: map[string]any{"open_time": openTime},
	}
}

// NewDuplicateCode creates a 409 error for a code collision at insert.
// Never surfaces past Create; the retry loop consumes it.
func NewDuplicateCode(code string) *CapsuleError {
	return &CapsuleError{
		Code:    ErrDuplicateCode,
		Status:  409,
		Message: fmt.Sprintf("capsule code already in use: %s", code),
		Details: map[string]any{"code": code},
	}
}

// NewUnauthorized creates a 401 error for a missing or rejected credential.
func NewUnauthorized() *CapsuleError {
	return &CapsuleError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "missing or invalid admin credential",
	}
}

// NewInvalidPassword creates a 401 error for a failed admin login.
func NewInvalidPassword() *CapsuleError {
	return &CapsuleError{
		Code:    ErrInvalidPassword,
		Status:  401,
		Message: "invalid password",
	}
}

// NewCodeSpaceExhausted creates a 503 error for a create that ran out of
// collision-retry attempts. The whole create call is safe to retry.
func NewCodeSpaceExhausted(attempts int) *CapsuleError {
	return &CapsuleError{
		Code:    ErrCodeSpaceExhausted,
		Status:  503,
		Message: fmt.Sprintf("could not allocate a free capsule code in %d attempts", attempts),
		Details: map[string]any{"attempts": attempts},
	}
}

// NewInternal creates a 500 error for unexpected internal faults.
func NewInternal(err error) *CapsuleError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CapsuleError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a CapsuleError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*CapsuleError); ok {
		return cErr.Code == code
	}
	return false
}

package domain

import "fmt"

// ValidationKind identifies which registration rule a request violated.
type ValidationKind string

const (
	MissingField      ValidationKind = "missing_field"
	TypeMismatch      ValidationKind = "type_mismatch"
	UntrimmedField    ValidationKind = "untrimmed_field"
	TooShort          ValidationKind = "too_short"
	TooLong           ValidationKind = "too_long"
	DuplicateUsername ValidationKind = "duplicate_username"
)

// ValidationError is a caller-correctable rejection of a registration request.
// Field names the offending input so clients can attach the message to the
// right form control. Message is safe to show to end users verbatim.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Message)
}

// NewDuplicateUsername is the validation error for a username that is already
// taken. It is produced both by the read-side pre-check and by a unique-index
// violation at write time, so the two paths are indistinguishable to callers.
func NewDuplicateUsername() *ValidationError {
	return &ValidationError{
		Kind:    DuplicateUsername,
		Field:   "username",
		Message: "Username already taken",
	}
}

package errs

import "fmt"

// ValidationError reports a malformed manifest, an unsupported encoding, an
// invalid path or a failed content-integrity check. The message is safe to
// return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError carries a deliberately generic message. The specific
// cause is logged server-side and never echoed to the caller.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotAuthorized returns the uniform authorization failure surfaced to callers.
func NotAuthorized() error {
	return &AuthorizationError{Message: "Not authorized for this operation"}
}

// DocumentError reports a document that does not resolve to an active version.
type DocumentError struct {
	Message string
}

func (e *DocumentError) Error() string {
	return e.Message
}

func Documentf(format string, args ...any) error {
	return &DocumentError{Message: fmt.Sprintf(format, args...)}
}

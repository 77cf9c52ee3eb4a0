package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken is returned when an insert hits the unique
	// username index.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrNoUsableFrame is returned when no capture attempt produced a
	// face-containing frame.
	ErrNoUsableFrame = errors.New("no usable frame captured")
)

// FailureKind tags the internal cause of an authentication failure.
// Callers outside the service see only a boolean outcome; the kind is
// for diagnostics and tests.
type FailureKind string

const (
	FailureInvalidInput     FailureKind = "invalid_input"
	FailureUsernameTaken    FailureKind = "username_taken"
	FailurePlayerNotFound   FailureKind = "player_not_found"
	FailurePasswordMismatch FailureKind = "password_mismatch"
	FailureNoFace           FailureKind = "no_face"
	FailureNoDescriptor     FailureKind = "no_descriptor"
	FailureFaceMismatch     FailureKind = "face_mismatch"
	FailureInfrastructure   FailureKind = "infrastructure"
)

// AuthError is a failure of an enrollment or verification workflow,
// tagged with its cause.
type AuthError struct {
	Kind FailureKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError builds a tagged workflow failure.
func NewAuthError(kind FailureKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// FailureKindOf extracts the failure kind from err, or empty string if
// err is not a tagged workflow failure.
func FailureKindOf(err error) FailureKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}

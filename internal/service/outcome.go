package service

import "github.com/facegate/facegate/internal/model"

// Mode selects which workflow a UI request drives.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// Outcome collapses a workflow result to the (success, message, color)
// triple the UI displays. Input and enrollment-conflict causes are
// worded specifically; verification failures stay generic so the
// display never reveals whether the password or the face was wrong.
func Outcome(mode Mode, err error) (bool, string, model.DisplayColor) {
	if err == nil {
		if mode == ModeRegister {
			return true, "Registration successful", model.DisplayColorSuccess
		}
		return true, "Login successful", model.DisplayColorSuccess
	}

	switch model.FailureKindOf(err) {
	case model.FailureInvalidInput:
		return false, "All fields and a captured photo are required", model.DisplayColorFailure
	case model.FailureUsernameTaken:
		return false, "Username already exists", model.DisplayColorFailure
	case model.FailureNoFace:
		return false, "No face detected in photo", model.DisplayColorFailure
	}

	if mode == ModeRegister {
		return false, "Registration failed", model.DisplayColorFailure
	}
	return false, "Login failed", model.DisplayColorFailure
}

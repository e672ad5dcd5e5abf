package domain

import "errors"

var (
	// ErrNotFound is returned when no message exists with the requested id
	ErrNotFound = errors.New("message not found")
	// ErrStorage wraps every failure coming from the persistence medium
	ErrStorage = errors.New("storage fault")
)

// ValidationError is a client-correctable input problem
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

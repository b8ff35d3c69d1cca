package dialog

import "errors"

var (
	ErrNotFound        = errors.New("dialog: referenced record not found")
	ErrNoDialog        = errors.New("dialog: no active dialog")
	ErrUnknownFlow     = errors.New("dialog: unknown flow")
	ErrUnexpectedInput = errors.New("dialog: unexpected input for this step")
	ErrEmptyText       = errors.New("dialog: text must not be empty")
	ErrToolUnavailable = errors.New("dialog: tool is not available")
	ErrDeleteBlocked   = errors.New("dialog: tool has active bookings")
	ErrBadTransition   = errors.New("dialog: booking status cannot change this way")
	ErrForbidden       = errors.New("dialog: not allowed for this user")
)

// ValidationError — плохой ввод. Диалог остаётся в том же состоянии и переспрашивает.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error { return &ValidationError{Err: err} }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

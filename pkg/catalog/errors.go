package catalog

import "errors"

var (
	ErrNotFound      = errors.New("media not found")
	ErrDuplicateID   = errors.New("media id already exists")
	ErrInvalidRecord = errors.New("invalid media record")
)

// ValidationError is a rejected upload. Message is shown to the admin as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a rejected upload
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

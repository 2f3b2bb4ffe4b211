package session

import "errors"

var (
	ErrEmptyName            = errors.New("participant name is empty")
	ErrDuplicateParticipant = errors.New("participant already exists")
	ErrInvalidItem          = errors.New("invalid item")
	ErrInvalidUpdate        = errors.New("invalid item update")
	ErrItemNotFound         = errors.New("item not found")
	ErrMalformedSnapshot    = errors.New("malformed bill snapshot")
)

// ValidationError is a rejected mutation. It carries the text shown to the
// user and wraps one of the sentinel errors above.
type ValidationError struct {
	Title       string
	Description string
	Err         error
}

func (e *ValidationError) Error() string {
	return e.Err.Error() + ": " + e.Description
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing title and description.
func (e *ValidationError) Message() (string, string) {
	return e.Title, e.Description
}

func invalid(err error, title, description string) *ValidationError {
	return &ValidationError{Title: title, Description: description, Err: err}
}

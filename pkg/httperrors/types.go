package httperrors

import "errors"

var (
	ErrRequestBodyEmpty   = errors.New("the request body must not be empty")
	ErrInvalidBody        = errors.New("the body of your request contains invalid or un-parseable data. Please check and try again")
	ErrInvalidID          = errors.New("the specified resource ID is not a valid ID")
	ErrInvalidQueryString = errors.New("the query string contains unparseable data. Please check the values")
)

// Error is used to return an error with the corresponding HTTP status code to a controller.
type Error struct {
	Err    error
	Status int // Used with http.StatusX for the corresponding HTTP status code
}

// Nil checks if the ErrorStatus is the zero value.
func (e Error) Nil() bool {
	return e.Err == nil && e.Status == 0
}

// Error returns the error as a string.
func (e Error) Error() string {
	s := e.Err.Error()
	return s
}

func (e Error) Unwrap() error {
	return e.Err
}

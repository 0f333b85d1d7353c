package types

import (
	"errors"
	"fmt"
)

// Failure outcomes of the auth and composition services. Handlers map these
// to transport statuses; anything not in this list is an internal error.
var (
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrDuplicateEmail     = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("composition not found")
	ErrForbidden          = errors.New("not the owner of this composition")
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

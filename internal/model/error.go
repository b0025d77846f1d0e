package model

import (
	"errors"
	"fmt"
)

var ErrorNotFound = errors.New("transaction not found")
var ErrorUserNotFound = errors.New("user not found")
var ErrorForbidden = errors.New("not a participant of this transaction")
var ErrorInvalidState = errors.New("operation not valid for transaction state")
var ErrorExpired = errors.New("transaction has expired")
var ErrorAlreadyClaimed = errors.New("transaction already has a buyer")
var ErrorSelfJoin = errors.New("cannot join your own transaction")
var ErrorConflict = errors.New("transaction was modified concurrently")
var ErrorUnauthenticated = errors.New("not authenticated")
var ErrorInvalidUsernameOrPassword = errors.New("invalid username or password")
var ErrorDuplicateUsername = errors.New("username already exists")
var ErrorDuplicateEmail = errors.New("email already exists")

// ValidationError reports malformed input the caller can fix and resubmit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

package service

import (
	"errors"
	"fmt"
	"strings"

	"sprint-tracker/pkg/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("not signed in")
)

type credentialsError string

func (e credentialsError) Error() string        { return string(e) }
func (e credentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

// Sign-in failures keep the wording users already know.
var (
	ErrUnknownEmployee error = credentialsError("Employee ID not found")
	ErrWrongPassword   error = credentialsError("Incorrect password")
)

// ValidationError lists the required fields a form left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// notFound turns a store miss into ErrNotFound, leaving other errors alone.
func notFound(err error, what, key string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", what, key, ErrNotFound)
	}
	return err
}

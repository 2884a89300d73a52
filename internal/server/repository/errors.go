package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the addressed user or recipe does not exist.
// Not transient; callers translate it to 404 without retry.
var ErrNotFound = errors.New("not found")

// ErrDuplicate indicates a uniqueness constraint was violated
// (username or email already taken).
var ErrDuplicate = errors.New("already exists")

// ValidationError reports caller-supplied fields that are missing or
// malformed, naming each offending field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

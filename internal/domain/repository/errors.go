package repository

import "errors"

// ErrDuplicate is returned when a write violates a uniqueness constraint
// such as a product slug or a user email.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned by updates addressing a record that does not exist.
var ErrNotFound = errors.New("record not found")

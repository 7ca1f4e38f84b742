// Package repository is the persistence layer over the shared gorm handle.
// Name uniqueness is enforced here, case-insensitively on the trimmed name,
// because sqlite's unique index alone is case-sensitive.
package repository

import "errors"

// ErrNameTaken is returned when a job, schedule, data source, or variable
// name collides within its scope.
var ErrNameTaken = errors.New("name already exists")

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

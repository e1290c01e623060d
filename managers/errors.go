// Package managers holds the record managers that own the data
// consistency rules for posts, comments, reactions, follows and users.
// Each manager is handed a storage interface at construction and never
// calls another manager; they share only record ids.
package managers

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed input with one message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError means a referenced record does not exist (or is not
// visible to the caller).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ForbiddenError means the caller is authenticated but not allowed to
// mutate the target record.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ConflictError reports a uniqueness violation, e.g. a duplicate email
// or a slug collision under race.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// StorageError wraps an underlying store failure. It is never retried
// here; callers surface it as an opaque failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

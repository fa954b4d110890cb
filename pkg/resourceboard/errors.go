package resourceboard

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrResourceNotFound indicates a resource was not found
	ErrResourceNotFound = errors.New("resource not found")

	// ErrTopicNotFound indicates a topic id did not resolve in the directory
	ErrTopicNotFound = errors.New("topic not found")

	// ErrDuplicateURL indicates another resource already holds the same url
	ErrDuplicateURL = errors.New("duplicate resource url")

	// ErrAlreadyPublished indicates a publish attempt on a published resource
	ErrAlreadyPublished = errors.New("resource already published")

	// ErrUnauthorized indicates the caller's access tier does not permit the operation
	ErrUnauthorized = errors.New("unauthorized")
)

// ResourceError represents an error related to resource operations
type ResourceError struct {
	ResourceID uuid.UUID
	Op         string
	Err        error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource operation %s failed for resource %s: %v", e.Op, e.ResourceID, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// ValidationError carries per-field messages for a rejected payload. All
// failing fields are reported together in a single error.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

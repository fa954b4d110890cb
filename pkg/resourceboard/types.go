package resourceboard

import (
	"time"

	"github.com/google/uuid"
)

// Resource represents a curated link submitted by an authenticated user.
//
// A resource enters the system as a draft and stays invisible to the public
// until a superuser publishes it. Publication is recorded once and never
// changes afterwards.
type Resource struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description *string    `json:"description"`
	TopicID     *uuid.UUID `json:"topic"`
	Source      uuid.UUID  `json:"source"`
	Accession   time.Time  `json:"accession"`
	Draft       bool       `json:"draft"`
	Publication *time.Time `json:"publication"`
}

// Topic is a category a resource can be filed under. Topics are managed
// outside this service; the directory only resolves and lists them.
type Topic struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ResourceView is the outward representation of a resource: the stored
// record plus the resolved topic name. The name is looked up at read time
// and never persisted.
type ResourceView struct {
	Resource
	TopicName string `json:"topic_name,omitempty"`
}

// CreateResourceRequest carries the user-supplied fields for a new
// resource. TopicID is kept as a string so that malformed values can be
// reported through field validation rather than a decode failure.
type CreateResourceRequest struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
	TopicID     *string `json:"topic"`
}

// ResourceFilter narrows a list operation.
type ResourceFilter struct {
	// DraftsOnly requests unpublished resources instead of published
	// ones. Honored only for superusers; everyone else gets the
	// published listing regardless.
	DraftsOnly bool
}

package resourceboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the main interface for resource submission and moderation.
type Service interface {
	// CreateResource stores a new draft resource on behalf of the
	// principal. Anonymous callers are rejected. The whole payload is
	// validated before any write; a url already held by another resource
	// (draft or published) fails with ErrDuplicateURL.
	CreateResource(ctx context.Context, principal Principal, req CreateResourceRequest) (*ResourceView, error)

	// ListResources returns resources matching the filter. Non-superusers
	// always receive the published listing, even when drafts were
	// requested.
	ListResources(ctx context.Context, principal Principal, filter ResourceFilter) ([]*ResourceView, error)

	// PublishResource moves a draft to published. Only superusers may
	// call it; the payload must request exactly draft=false and nothing
	// else. A resource that is already published fails with
	// ErrAlreadyPublished.
	PublishResource(ctx context.Context, principal Principal, id uuid.UUID, payload PublishRequest) (*ResourceView, error)

	// ListTopics exposes the topic directory for clients building
	// submission forms.
	ListTopics(ctx context.Context) ([]*Topic, error)
}

// Repository defines the interface for resource persistence.
type Repository interface {
	CreateResource(ctx context.Context, resource *Resource) error
	GetResource(ctx context.Context, id uuid.UUID) (*Resource, error)
	GetResourceByURL(ctx context.Context, url string) (*Resource, error)
	ListResources(ctx context.Context, draftsOnly bool) ([]*Resource, error)
	// PublishResource clears the draft flag and records the publication
	// time in one atomic step. It fails with ErrAlreadyPublished when the
	// resource is no longer a draft.
	PublishResource(ctx context.Context, id uuid.UUID, publishedAt time.Time) (*Resource, error)
}

// TopicDirectory resolves topic ids to topics. It is an external
// collaborator; resource writes never modify it.
type TopicDirectory interface {
	GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error)
	ListTopics(ctx context.Context) ([]*Topic, error)
}

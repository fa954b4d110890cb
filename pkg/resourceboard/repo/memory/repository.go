package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencurate/resource-board/pkg/resourceboard"
)

// Repository implements resourceboard.Repository and
// resourceboard.TopicDirectory using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	resources map[uuid.UUID]*resourceboard.Resource
	byURL     map[string]uuid.UUID // url -> resource_id
	topics    map[uuid.UUID]*resourceboard.Topic
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		resources: make(map[uuid.UUID]*resourceboard.Resource),
		byURL:     make(map[string]uuid.UUID),
		topics:    make(map[uuid.UUID]*resourceboard.Topic),
	}
}

// Resource operations

func (r *Repository) CreateResource(ctx context.Context, resource *resourceboard.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The url index is the in-memory stand-in for a unique constraint.
	if _, exists := r.byURL[resource.URL]; exists {
		return resourceboard.ErrDuplicateURL
	}

	// Create a copy to avoid external modifications
	resourceCopy := *resource
	r.resources[resource.ID] = &resourceCopy
	r.byURL[resource.URL] = resource.ID

	return nil
}

func (r *Repository) GetResource(ctx context.Context, id uuid.UUID) (*resourceboard.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, exists := r.resources[id]
	if !exists {
		return nil, resourceboard.ErrResourceNotFound
	}

	// Return a copy to prevent external modifications
	resourceCopy := *resource
	return &resourceCopy, nil
}

func (r *Repository) GetResourceByURL(ctx context.Context, url string) (*resourceboard.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byURL[url]
	if !exists {
		return nil, resourceboard.ErrResourceNotFound
	}

	resourceCopy := *r.resources[id]
	return &resourceCopy, nil
}

func (r *Repository) ListResources(ctx context.Context, draftsOnly bool) ([]*resourceboard.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*resourceboard.Resource
	for _, resource := range r.resources {
		if resource.Draft == draftsOnly {
			resourceCopy := *resource
			result = append(result, &resourceCopy)
		}
	}

	// Sort by accession ascending, id as tie-break for a stable order
	sort.Slice(result, func(i, j int) bool {
		if result[i].Accession.Equal(result[j].Accession) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].Accession.Before(result[j].Accession)
	})

	return result, nil
}

func (r *Repository) PublishResource(ctx context.Context, id uuid.UUID, publishedAt time.Time) (*resourceboard.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resource, exists := r.resources[id]
	if !exists {
		return nil, resourceboard.ErrResourceNotFound
	}
	if !resource.Draft {
		return nil, resourceboard.ErrAlreadyPublished
	}

	resource.Draft = false
	publishedCopy := publishedAt
	resource.Publication = &publishedCopy

	resourceCopy := *resource
	return &resourceCopy, nil
}

// Topic operations

func (r *Repository) GetTopic(ctx context.Context, id uuid.UUID) (*resourceboard.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topic, exists := r.topics[id]
	if !exists {
		return nil, resourceboard.ErrTopicNotFound
	}

	topicCopy := *topic
	return &topicCopy, nil
}

func (r *Repository) ListTopics(ctx context.Context) ([]*resourceboard.Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*resourceboard.Topic, 0, len(r.topics))
	for _, topic := range r.topics {
		topicCopy := *topic
		result = append(result, &topicCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// SeedTopic registers a topic in the directory. Topics are managed outside
// the service, so the in-memory directory takes them at startup.
func (r *Repository) SeedTopic(topic resourceboard.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topicCopy := topic
	r.topics[topic.ID] = &topicCopy
}

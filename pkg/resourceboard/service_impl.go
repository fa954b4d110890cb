package resourceboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	topics     TopicDirectory
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithTopicDirectory sets the topic directory for the service
func WithTopicDirectory(topics TopicDirectory) Option {
	return func(s *service) {
		s.topics = topics
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		now: func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.topics == nil {
		return nil, fmt.Errorf("topic directory is required")
	}

	return s, nil
}

func (s *service) CreateResource(ctx context.Context, principal Principal, req CreateResourceRequest) (*ResourceView, error) {
	if !principal.CanSubmit() {
		return nil, ErrUnauthorized
	}

	errs := req.Validate()

	var topic *Topic
	if req.TopicID != nil {
		resolved, err := s.resolveTopic(ctx, *req.TopicID)
		if err != nil {
			if errors.Is(err, ErrTopicNotFound) {
				errs["topic"] = errors.New(`"topic" must exist`)
			} else {
				return nil, fmt.Errorf("failed to resolve topic: %w", err)
			}
		}
		topic = resolved
	}

	if err := asValidationError(errs); err != nil {
		return nil, err
	}

	// Uniqueness is keyed on the url alone, across drafts and published
	// resources alike.
	if _, err := s.repository.GetResourceByURL(ctx, req.URL); err == nil {
		return nil, ErrDuplicateURL
	} else if !errors.Is(err, ErrResourceNotFound) {
		return nil, fmt.Errorf("failed to check url uniqueness: %w", err)
	}

	resource := &Resource{
		ID:          uuid.New(),
		Title:       req.Title,
		URL:         req.URL,
		Description: normalizeDescription(req.Description),
		Source:      principal.ID,
		Accession:   s.now(),
		Draft:       true,
	}
	if topic != nil {
		id := topic.ID
		resource.TopicID = &id
	}

	if err := s.repository.CreateResource(ctx, resource); err != nil {
		// A concurrent submission can slip past the pre-check; the
		// storage-level unique constraint reports it the same way.
		if errors.Is(err, ErrDuplicateURL) {
			return nil, ErrDuplicateURL
		}
		return nil, &ResourceError{
			ResourceID: resource.ID,
			Op:         "create",
			Err:        err,
		}
	}

	view := &ResourceView{Resource: *resource}
	if topic != nil {
		view.TopicName = topic.Name
	}
	return view, nil
}

func (s *service) ListResources(ctx context.Context, principal Principal, filter ResourceFilter) ([]*ResourceView, error) {
	// Drafts are a moderation view; everyone else silently gets the
	// published listing.
	draftsOnly := filter.DraftsOnly && principal.CanModerate()

	resources, err := s.repository.ListResources(ctx, draftsOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	views := make([]*ResourceView, 0, len(resources))
	names := map[uuid.UUID]string{}
	for _, resource := range resources {
		view := &ResourceView{Resource: *resource}
		if resource.TopicID != nil {
			view.TopicName = s.topicName(ctx, names, *resource.TopicID)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) PublishResource(ctx context.Context, principal Principal, id uuid.UUID, payload PublishRequest) (*ResourceView, error) {
	if !principal.CanModerate() {
		return nil, ErrUnauthorized
	}

	resource, err := s.repository.GetResource(ctx, id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, &ResourceError{ResourceID: id, Op: "publish", Err: err}
	}

	if err := asValidationError(payload.Validate()); err != nil {
		return nil, err
	}

	// Published is terminal: the draft flag moves true->false exactly
	// once, so a second publish is rejected rather than absorbed.
	if !resource.Draft {
		return nil, ErrAlreadyPublished
	}

	published, err := s.repository.PublishResource(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, ErrAlreadyPublished) || errors.Is(err, ErrResourceNotFound) {
			return nil, err
		}
		return nil, &ResourceError{ResourceID: id, Op: "publish", Err: err}
	}

	view := &ResourceView{Resource: *published}
	if published.TopicID != nil {
		if topic, err := s.topics.GetTopic(ctx, *published.TopicID); err == nil {
			view.TopicName = topic.Name
		}
	}
	return view, nil
}

func (s *service) ListTopics(ctx context.Context) ([]*Topic, error) {
	return s.topics.ListTopics(ctx)
}

// resolveTopic parses and looks up a topic id supplied by the client. A
// string that is not a uuid cannot resolve, so it reports the same
// not-found outcome as an unknown id.
func (s *service) resolveTopic(ctx context.Context, raw string) (*Topic, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrTopicNotFound
	}
	return s.topics.GetTopic(ctx, id)
}

// topicName resolves a topic name with a per-call cache. Lookup failures
// leave the decoration blank rather than failing the listing.
func (s *service) topicName(ctx context.Context, cache map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := ""
	if topic, err := s.topics.GetTopic(ctx, id); err == nil {
		name = topic.Name
	}
	cache[id] = name
	return name
}

func normalizeDescription(d *string) *string {
	if d == nil || *d == "" {
		return nil
	}
	v := *d
	return &v
}

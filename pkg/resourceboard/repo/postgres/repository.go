// Package postgres implements the resource repository and topic directory
// on PostgreSQL via pgx.
//
// Expected schema (the search_path is configured by the caller):
//
//	CREATE TABLE topic (
//	    id   UUID PRIMARY KEY,
//	    name TEXT NOT NULL
//	);
//
//	CREATE TABLE resource (
//	    id          UUID PRIMARY KEY,
//	    title       TEXT NOT NULL,
//	    url         TEXT NOT NULL,
//	    description TEXT,
//	    topic_id    UUID REFERENCES topic (id),
//	    source      UUID NOT NULL,
//	    accession   TIMESTAMPTZ NOT NULL,
//	    draft       BOOLEAN NOT NULL DEFAULT TRUE,
//	    publication TIMESTAMPTZ,
//	    CONSTRAINT resource_url_key UNIQUE (url)
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opencurate/resource-board/pkg/resourceboard"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TxBeginner is satisfied by *pgxpool.Pool. When the underlying DBTX also
// begins transactions, creates run with the uniqueness check and insert in
// one transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository implements resourceboard.Repository and
// resourceboard.TopicDirectory using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return resourceboard.ErrDuplicateURL
		case "23503": // foreign_key_violation
			return resourceboard.ErrTopicNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const resourceColumns = `id, title, url, description, topic_id, source, accession, draft, publication`

func scanResource(row pgx.Row) (*resourceboard.Resource, error) {
	var resource resourceboard.Resource
	err := row.Scan(
		&resource.ID, &resource.Title, &resource.URL, &resource.Description,
		&resource.TopicID, &resource.Source, &resource.Accession,
		&resource.Draft, &resource.Publication)
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// Resource operations

func (r *Repository) CreateResource(ctx context.Context, resource *resourceboard.Resource) error {
	if beginner, ok := r.db.(TxBeginner); ok {
		return r.createResourceTx(ctx, beginner, resource)
	}
	return r.insertResource(ctx, r.db, resource)
}

// createResourceTx checks the url and inserts in one transaction, so two
// concurrent submissions of the same url cannot both succeed. The unique
// constraint backs the check either way.
func (r *Repository) createResourceTx(ctx context.Context, beginner TxBeginner, resource *resourceboard.Resource) error {
	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM resource WHERE url = $1`, resource.URL).Scan(&existing)
	if err == nil {
		return resourceboard.ErrDuplicateURL
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return r.handlePostgresError("create resource", err)
	}

	if err := r.insertResource(ctx, tx, resource); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) insertResource(ctx context.Context, db DBTX, resource *resourceboard.Resource) error {
	query := `
		INSERT INTO resource (
			id, title, url, description, topic_id,
			source, accession, draft, publication
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.Exec(ctx, query,
		resource.ID, resource.Title, resource.URL, resource.Description,
		resource.TopicID, resource.Source, resource.Accession,
		resource.Draft, resource.Publication)

	if err != nil {
		return r.handlePostgresError("create resource", err)
	}

	return nil
}

func (r *Repository) GetResource(ctx context.Context, id uuid.UUID) (*resourceboard.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resource WHERE id = $1`

	resource, err := r.retryRead(func() (*resourceboard.Resource, error) {
		return scanResource(r.db.QueryRow(ctx, query, id))
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resourceboard.ErrResourceNotFound
		}
		return nil, r.handlePostgresError("get resource", err)
	}

	return resource, nil
}

func (r *Repository) GetResourceByURL(ctx context.Context, url string) (*resourceboard.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resource WHERE url = $1`

	resource, err := r.retryRead(func() (*resourceboard.Resource, error) {
		return scanResource(r.db.QueryRow(ctx, query, url))
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resourceboard.ErrResourceNotFound
		}
		return nil, r.handlePostgresError("get resource by url", err)
	}

	return resource, nil
}

func (r *Repository) ListResources(ctx context.Context, draftsOnly bool) ([]*resourceboard.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resource WHERE draft = $1 ORDER BY accession, id`

	rows, err := r.db.Query(ctx, query, draftsOnly)
	if err != nil {
		return nil, r.handlePostgresError("list resources", err)
	}
	defer rows.Close()

	var resources []*resourceboard.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list resources", err)
	}

	return resources, nil
}

func (r *Repository) PublishResource(ctx context.Context, id uuid.UUID, publishedAt time.Time) (*resourceboard.Resource, error) {
	// Conditional update: only a draft row matches, so a concurrent
	// publish of the same resource cannot record a second publication.
	query := `
		UPDATE resource SET draft = FALSE, publication = $2
		WHERE id = $1 AND draft
		RETURNING ` + resourceColumns

	resource, err := scanResource(r.db.QueryRow(ctx, query, id, publishedAt))
	if err == nil {
		return resource, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, r.handlePostgresError("publish resource", err)
	}

	// No draft row matched: distinguish missing from already published.
	var draft bool
	err = r.db.QueryRow(ctx, `SELECT draft FROM resource WHERE id = $1`, id).Scan(&draft)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, resourceboard.ErrResourceNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("publish resource", err)
	}
	return nil, resourceboard.ErrAlreadyPublished
}

// Topic operations

func (r *Repository) GetTopic(ctx context.Context, id uuid.UUID) (*resourceboard.Topic, error) {
	var topic resourceboard.Topic
	err := r.db.QueryRow(ctx, `SELECT id, name FROM topic WHERE id = $1`, id).
		Scan(&topic.ID, &topic.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resourceboard.ErrTopicNotFound
		}
		return nil, r.handlePostgresError("get topic", err)
	}

	return &topic, nil
}

func (r *Repository) ListTopics(ctx context.Context) ([]*resourceboard.Topic, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM topic ORDER BY name`)
	if err != nil {
		return nil, r.handlePostgresError("list topics", err)
	}
	defer rows.Close()

	var topics []*resourceboard.Topic
	for rows.Next() {
		var topic resourceboard.Topic
		if err := rows.Scan(&topic.ID, &topic.Name); err != nil {
			return nil, err
		}
		topics = append(topics, &topic)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list topics", err)
	}

	return topics, nil
}

// retryRead runs a read once more when the driver reports the failure as
// safe to retry. Reads are idempotent; writes are never replayed.
func (r *Repository) retryRead(fn func() (*resourceboard.Resource, error)) (*resourceboard.Resource, error) {
	resource, err := fn()
	if err != nil && pgconn.SafeToRetry(err) {
		return fn()
	}
	return resource, err
}

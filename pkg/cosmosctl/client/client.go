package client

import (
	"context"
	"strings"
)

// Item is an opaque document: a JSON object keyed by field name. Items are
// expected to carry an "id" field and the container's partition key field,
// though neither is enforced here.
type Item map[string]any

// ID returns the item's id field when present.
func (it Item) ID() string {
	if v, ok := it["id"].(string); ok {
		return v
	}
	return ""
}

// HasField reports whether the item carries a non-nil value for the given
// top-level field name.
func (it Item) HasField(field string) bool {
	if field == "" {
		return false
	}
	v, ok := it[field]
	return ok && v != nil
}

// Container describes one container: its name, declared partition key path,
// optional provisioned throughput, and an item count when known. Descriptors
// are read-only snapshots of remote state.
type Container struct {
	Name             string
	PartitionKeyPath string
	Throughput       *int32
	ItemCount        int64
}

// PartitionKeyField returns the top-level field name addressed by a partition
// key path ("/pk" -> "pk"). Nested paths keep only the first segment, which
// matches what this tool can address in opaque items.
func PartitionKeyField(path string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(path), "/")
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

// Interface is the capability surface the pipelines run against. The azcosmos
// implementation satisfies it; tests substitute an in-memory fake.
type Interface interface {
	// ListDatabases returns the names of all databases in the account.
	ListDatabases(ctx context.Context) ([]string, error)
	// CreateDatabase creates the named database. Creating an existing
	// database is a no-op.
	CreateDatabase(ctx context.Context, name string) error
	// DeleteDatabase removes the named database and everything in it.
	// Returns ErrNotFound when the database does not exist.
	DeleteDatabase(ctx context.Context, name string) error

	// ListContainers returns descriptors for every container in the
	// connection's database, without item counts.
	ListContainers(ctx context.Context) ([]Container, error)
	// ReadContainer returns the full descriptor for one container,
	// including throughput when the container has dedicated throughput.
	ReadContainer(ctx context.Context, name string) (*Container, error)
	// CountItems returns the number of items in a container.
	CountItems(ctx context.Context, container string) (int64, error)
	// ReadAllItems streams every item of a container through fn, paging
	// internally. Iteration stops on the first error from fn. The stream
	// is restartable only by calling ReadAllItems again.
	ReadAllItems(ctx context.Context, container string, fn func(Item) error) error

	// CreateItem inserts an item. Returns ErrConflict when an item with
	// the same id and partition key already exists.
	CreateItem(ctx context.Context, container string, item Item) error
	// UpsertItem inserts or overwrites an item. Last write wins.
	UpsertItem(ctx context.Context, container string, item Item) error
	// CreateContainer provisions a container from the descriptor. It is a
	// no-op when a container with the same partition key path exists and
	// returns a *SchemaConflictError when the existing path differs.
	CreateContainer(ctx context.Context, desc Container) error
}

package pipeline

import (
	"context"
	"fmt"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

// ConnectOptions configures a connection test.
type ConnectOptions struct {
	// CreateDatabase creates the database when it does not exist instead
	// of failing the test.
	CreateDatabase bool
}

// TestConnection verifies access to the database by listing its containers.
// When the database is absent and CreateDatabase is set, it is created and
// the listing retried. The returned bool reports whether the database was
// created by this call.
func TestConnection(ctx context.Context, c clientpkg.Interface, database string, opts ConnectOptions) ([]clientpkg.Container, bool, error) {
	containers, err := c.ListContainers(ctx)
	if err == nil {
		return containers, false, nil
	}
	if !clientpkg.IsNotFound(err) {
		return nil, false, err
	}
	if !opts.CreateDatabase {
		return nil, false, fmt.Errorf("database %s does not exist (use --create-database to create it): %w", database, clientpkg.ErrNotFound)
	}
	if err := c.CreateDatabase(ctx, database); err != nil {
		return nil, false, err
	}
	containers, err = c.ListContainers(ctx)
	if err != nil {
		return nil, true, err
	}
	return containers, true, nil
}

// DatabaseInfo summarizes a database ahead of deletion.
type DatabaseInfo struct {
	Name       string
	Containers []string
}

// DescribeDatabase collects the container names of a database so callers can
// show what a deletion would destroy. ErrNotFound when the database is absent.
func DescribeDatabase(ctx context.Context, c clientpkg.Interface, name string) (*DatabaseInfo, error) {
	containers, err := c.ListContainers(ctx)
	if err != nil {
		return nil, err
	}
	info := &DatabaseInfo{Name: name}
	for _, cont := range containers {
		info.Containers = append(info.Containers, cont.Name)
	}
	return info, nil
}

// ListDatabases returns every database name in the account, no mutation.
func ListDatabases(ctx context.Context, c clientpkg.Interface) ([]string, error) {
	return c.ListDatabases(ctx)
}

// DeleteDatabase removes the named database. Unconditional once invoked and
// irreversible; there is no soft delete. Confirmation is the caller's job.
func DeleteDatabase(ctx context.Context, c clientpkg.Interface, name string) error {
	return c.DeleteDatabase(ctx, name)
}

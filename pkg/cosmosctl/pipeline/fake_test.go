package pipeline

import (
	"context"
	"fmt"
	"sort"

	clientpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/client"
)

// fakeClient is an in-memory client.Interface for pipeline tests. Containers
// keep items in insertion order; create-mode writes conflict on duplicate id.
type fakeClient struct {
	databases  map[string]bool
	dbName     string
	containers []*fakeContainer

	// per-container induced failures
	failCount map[string]error
	failRead  map[string]error
	failWrite map[string]error

	// failReadAfter aborts ReadAllItems for a container after yielding the
	// given number of items, simulating a read that dies mid-stream.
	failReadAfter map[string]int

	createDatabaseCalls int
	writeCalls          int
}

type fakeContainer struct {
	desc  clientpkg.Container
	items []clientpkg.Item
}

func newFakeClient(database string) *fakeClient {
	return &fakeClient{
		databases:     map[string]bool{database: true},
		dbName:        database,
		failCount:     map[string]error{},
		failRead:      map[string]error{},
		failWrite:     map[string]error{},
		failReadAfter: map[string]int{},
	}
}

func (f *fakeClient) addContainer(name, pkPath string, throughput *int32, items ...clientpkg.Item) *fakeContainer {
	fc := &fakeContainer{
		desc: clientpkg.Container{Name: name, PartitionKeyPath: pkPath, Throughput: throughput},
	}
	fc.items = append(fc.items, items...)
	f.containers = append(f.containers, fc)
	return fc
}

func (f *fakeClient) container(name string) *fakeContainer {
	for _, fc := range f.containers {
		if fc.desc.Name == name {
			return fc
		}
	}
	return nil
}

func (f *fakeClient) ListDatabases(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeClient) CreateDatabase(ctx context.Context, name string) error {
	f.createDatabaseCalls++
	f.databases[name] = true
	return nil
}

func (f *fakeClient) DeleteDatabase(ctx context.Context, name string) error {
	if !f.databases[name] {
		return fmt.Errorf("database %s: %w", name, clientpkg.ErrNotFound)
	}
	delete(f.databases, name)
	return nil
}

func (f *fakeClient) ListContainers(ctx context.Context) ([]clientpkg.Container, error) {
	if !f.databases[f.dbName] {
		return nil, fmt.Errorf("database %s: %w", f.dbName, clientpkg.ErrNotFound)
	}
	var descs []clientpkg.Container
	for _, fc := range f.containers {
		desc := fc.desc
		desc.ItemCount = 0
		descs = append(descs, desc)
	}
	return descs, nil
}

func (f *fakeClient) ReadContainer(ctx context.Context, name string) (*clientpkg.Container, error) {
	fc := f.container(name)
	if fc == nil {
		return nil, fmt.Errorf("container %s: %w", name, clientpkg.ErrNotFound)
	}
	desc := fc.desc
	desc.ItemCount = int64(len(fc.items))
	return &desc, nil
}

func (f *fakeClient) CountItems(ctx context.Context, container string) (int64, error) {
	if err := f.failCount[container]; err != nil {
		return 0, err
	}
	fc := f.container(container)
	if fc == nil {
		return 0, fmt.Errorf("container %s: %w", container, clientpkg.ErrNotFound)
	}
	return int64(len(fc.items)), nil
}

func (f *fakeClient) ReadAllItems(ctx context.Context, container string, fn func(clientpkg.Item) error) error {
	if err := f.failRead[container]; err != nil {
		return err
	}
	fc := f.container(container)
	if fc == nil {
		return fmt.Errorf("container %s: %w", container, clientpkg.ErrNotFound)
	}
	limit, aborts := f.failReadAfter[container]
	for i, item := range fc.items {
		if aborts && i == limit {
			return fmt.Errorf("read %s: connection reset", container)
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeClient) CreateItem(ctx context.Context, container string, item clientpkg.Item) error {
	f.writeCalls++
	if err := f.failWrite[container]; err != nil {
		return err
	}
	fc := f.container(container)
	if fc == nil {
		return fmt.Errorf("container %s: %w", container, clientpkg.ErrNotFound)
	}
	for _, existing := range fc.items {
		if existing.ID() == item.ID() {
			return fmt.Errorf("item %s: %w", item.ID(), clientpkg.ErrConflict)
		}
	}
	fc.items = append(fc.items, item)
	return nil
}

func (f *fakeClient) UpsertItem(ctx context.Context, container string, item clientpkg.Item) error {
	f.writeCalls++
	if err := f.failWrite[container]; err != nil {
		return err
	}
	fc := f.container(container)
	if fc == nil {
		return fmt.Errorf("container %s: %w", container, clientpkg.ErrNotFound)
	}
	for i, existing := range fc.items {
		if existing.ID() == item.ID() {
			fc.items[i] = item
			return nil
		}
	}
	fc.items = append(fc.items, item)
	return nil
}

func (f *fakeClient) CreateContainer(ctx context.Context, desc clientpkg.Container) error {
	if fc := f.container(desc.Name); fc != nil {
		if fc.desc.PartitionKeyPath != desc.PartitionKeyPath {
			return &clientpkg.SchemaConflictError{
				Container: desc.Name,
				Want:      desc.PartitionKeyPath,
				Got:       fc.desc.PartitionKeyPath,
			}
		}
		return nil
	}
	f.addContainer(desc.Name, desc.PartitionKeyPath, desc.Throughput)
	return nil
}

func item(id string, fields ...any) clientpkg.Item {
	it := clientpkg.Item{"id": id}
	for i := 0; i+1 < len(fields); i += 2 {
		it[fields[i].(string)] = fields[i+1]
	}
	return it
}

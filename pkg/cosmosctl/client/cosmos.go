package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	versionpkg "github.com/cosmoskit/cosmosctl/pkg/cosmosctl/version"
)

// internalAttributes are Cosmos bookkeeping fields. They are stripped from
// items on read so snapshots round-trip without etag collisions.
var internalAttributes = map[string]struct{}{
	"_rid":         {},
	"_self":        {},
	"_etag":        {},
	"_attachments": {},
	"_ts":          {},
}

const (
	headerPartitionKey         = "x-ms-documentdb-partitionkey"
	headerIsQuery              = "x-ms-documentdb-query"
	headerEnableCrossPartition = "x-ms-documentdb-query-enablecrosspartition"
)

// crossPartitionSentinel marks queries that must span every logical
// partition. azcosmos scopes NewQueryItemsPager to the single partition named
// in the request header, so full-container queries carry this sentinel key
// and crossPartitionQueryPolicy rewrites the request before it is sent.
const crossPartitionSentinel = "cosmosctl-cross-partition-8d41"

var crossPartitionKey = azcosmos.NewPartitionKeyString(crossPartitionSentinel)

// crossPartitionHeaderValue is the sentinel as the SDK serializes it into the
// partition key header.
const crossPartitionHeaderValue = `["` + crossPartitionSentinel + `"]`

// crossPartitionQueryPolicy turns sentinel-keyed queries into cross-partition
// ones: the service fans a query out over all partitions when the partition
// key header is absent and the cross-partition header is set. Registered as a
// per-call policy, it runs after the SDK's own header policy has added the
// partition key header.
type crossPartitionQueryPolicy struct{}

func (crossPartitionQueryPolicy) Do(req *policy.Request) (*http.Response, error) {
	h := req.Raw().Header
	if h.Get(headerIsQuery) != "" && h.Get(headerPartitionKey) == crossPartitionHeaderValue {
		h.Del(headerPartitionKey)
		h.Set(headerEnableCrossPartition, "True")
	}
	return req.Next()
}

// CosmosClient implements Interface against an Azure Cosmos DB account.
// All operations are scoped to the database fixed at construction time,
// except the account-level database operations.
type CosmosClient struct {
	client   *azcosmos.Client
	database *azcosmos.DatabaseClient
	dbName   string

	// partition key paths already resolved, keyed by container name
	pkPaths map[string]string
}

type cosmosSettings struct {
	allowInsecure bool
	transport     policy.Transporter
}

// Option configures the Cosmos client.
type Option func(*cosmosSettings)

// WithAllowInsecure disables TLS certificate verification. Intended for
// local emulators with self-signed certificates.
func WithAllowInsecure(allow bool) Option {
	return func(s *cosmosSettings) {
		s.allowInsecure = allow
	}
}

// WithTransport overrides the HTTP transport the SDK client sends requests
// through. Takes precedence over WithAllowInsecure.
func WithTransport(t policy.Transporter) Option {
	return func(s *cosmosSettings) {
		s.transport = t
	}
}

// NewCosmosClient builds a client for one account and database.
func NewCosmosClient(endpoint, key, database string, opts ...Option) (*CosmosClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("key is required")
	}
	if strings.TrimSpace(database) == "" {
		return nil, fmt.Errorf("database is required")
	}
	settings := &cosmosSettings{}
	for _, opt := range opts {
		opt(settings)
	}

	cred, err := azcosmos.NewKeyCredential(key)
	if err != nil {
		return nil, fmt.Errorf("credential: %w", err)
	}
	options := &azcosmos.ClientOptions{}
	options.Telemetry.ApplicationID = versionpkg.UserAgent()
	options.PerCallPolicies = append(options.PerCallPolicies, crossPartitionQueryPolicy{})
	if settings.allowInsecure {
		options.Transport = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	if settings.transport != nil {
		options.Transport = settings.transport
	}
	sdkClient, err := azcosmos.NewClientWithKey(endpoint, cred, options)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	db, err := sdkClient.NewDatabase(database)
	if err != nil {
		return nil, fmt.Errorf("database client: %w", err)
	}
	return &CosmosClient{client: sdkClient, database: db, dbName: database, pkPaths: make(map[string]string)}, nil
}

// DatabaseName returns the database this client is scoped to.
func (c *CosmosClient) DatabaseName() string {
	return c.dbName
}

// ListDatabases returns the names of all databases in the account.
func (c *CosmosClient) ListDatabases(ctx context.Context) ([]string, error) {
	var names []string
	pager := c.client.NewQueryDatabasesPager("SELECT * FROM c", nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, classify("list databases", err)
		}
		for _, db := range page.Databases {
			names = append(names, db.ID)
		}
	}
	return names, nil
}

// CreateDatabase creates the named database. An existing database is a no-op.
func (c *CosmosClient) CreateDatabase(ctx context.Context, name string) error {
	_, err := c.client.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: name}, nil)
	if err != nil {
		classified := classify("create database "+name, err)
		if IsConflict(classified) {
			return nil
		}
		return classified
	}
	return nil
}

// DeleteDatabase removes the named database. Irreversible.
func (c *CosmosClient) DeleteDatabase(ctx context.Context, name string) error {
	db, err := c.client.NewDatabase(name)
	if err != nil {
		return fmt.Errorf("database client: %w", err)
	}
	if _, err := db.Delete(ctx, nil); err != nil {
		return classify("delete database "+name, err)
	}
	return nil
}

// ListContainers returns descriptors for every container in the database.
func (c *CosmosClient) ListContainers(ctx context.Context) ([]Container, error) {
	var containers []Container
	pager := c.database.NewQueryContainersPager("SELECT * FROM c", nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, classify("list containers", err)
		}
		for _, props := range page.Containers {
			containers = append(containers, Container{
				Name:             props.ID,
				PartitionKeyPath: firstPath(props.PartitionKeyDefinition.Paths),
			})
		}
	}
	return containers, nil
}

// ReadContainer returns the descriptor for one container, including dedicated
// throughput when provisioned.
func (c *CosmosClient) ReadContainer(ctx context.Context, name string) (*Container, error) {
	cc, err := c.database.NewContainer(name)
	if err != nil {
		return nil, fmt.Errorf("container client: %w", err)
	}
	resp, err := cc.Read(ctx, nil)
	if err != nil {
		return nil, classify("read container "+name, err)
	}
	desc := &Container{Name: name}
	if resp.ContainerProperties != nil {
		desc.PartitionKeyPath = firstPath(resp.ContainerProperties.PartitionKeyDefinition.Paths)
	}
	// Shared-throughput and serverless containers have no offer to read.
	if tr, err := cc.ReadThroughput(ctx, nil); err == nil && tr.ThroughputProperties != nil {
		if manual, ok := tr.ThroughputProperties.ManualThroughput(); ok {
			t := manual
			desc.Throughput = &t
		}
	}
	return desc, nil
}

// CountItems returns the item count of a container. The query fans out over
// all partitions; each page carries one partition's partial count.
func (c *CosmosClient) CountItems(ctx context.Context, container string) (int64, error) {
	cc, err := c.database.NewContainer(container)
	if err != nil {
		return 0, fmt.Errorf("container client: %w", err)
	}
	pager := cc.NewQueryItemsPager("SELECT VALUE COUNT(1) FROM c", crossPartitionKey, nil)
	var count int64
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return 0, classify("count items in "+container, err)
		}
		for _, raw := range page.Items {
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return 0, fmt.Errorf("decode count for %s: %w", container, err)
			}
			count += n
		}
	}
	return count, nil
}

// ReadAllItems streams every item in a container through fn, stripping Cosmos
// internal attributes. Pages are fetched lazily; page size is the SDK's.
func (c *CosmosClient) ReadAllItems(ctx context.Context, container string, fn func(Item) error) error {
	cc, err := c.database.NewContainer(container)
	if err != nil {
		return fmt.Errorf("container client: %w", err)
	}
	pager := cc.NewQueryItemsPager("SELECT * FROM c", crossPartitionKey, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return classify("read items from "+container, err)
		}
		for _, raw := range page.Items {
			var item Item
			if err := json.Unmarshal(raw, &item); err != nil {
				return fmt.Errorf("decode item from %s: %w", container, err)
			}
			for attr := range internalAttributes {
				delete(item, attr)
			}
			if err := fn(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateItem inserts an item, failing with ErrConflict on duplicates.
func (c *CosmosClient) CreateItem(ctx context.Context, container string, item Item) error {
	cc, pk, raw, err := c.prepareWrite(ctx, container, item)
	if err != nil {
		return err
	}
	if _, err := cc.CreateItem(ctx, pk, raw, nil); err != nil {
		return classify("create item in "+container, err)
	}
	return nil
}

// UpsertItem inserts or overwrites an item. Last write wins.
func (c *CosmosClient) UpsertItem(ctx context.Context, container string, item Item) error {
	cc, pk, raw, err := c.prepareWrite(ctx, container, item)
	if err != nil {
		return err
	}
	if _, err := cc.UpsertItem(ctx, pk, raw, nil); err != nil {
		return classify("upsert item in "+container, err)
	}
	return nil
}

// CreateContainer provisions a container from the descriptor. Creating a
// container whose partition key path already matches is a no-op; a differing
// path is a *SchemaConflictError.
func (c *CosmosClient) CreateContainer(ctx context.Context, desc Container) error {
	path := strings.TrimSpace(desc.PartitionKeyPath)
	if path == "" {
		path = "/id"
	}
	props := azcosmos.ContainerProperties{
		ID: desc.Name,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{path},
		},
	}
	var options *azcosmos.CreateContainerOptions
	if desc.Throughput != nil {
		throughput := azcosmos.NewManualThroughputProperties(*desc.Throughput)
		options = &azcosmos.CreateContainerOptions{ThroughputProperties: &throughput}
	}
	_, err := c.database.CreateContainer(ctx, props, options)
	if err == nil {
		return nil
	}
	classified := classify("create container "+desc.Name, err)
	if !IsConflict(classified) {
		return classified
	}
	existing, readErr := c.ReadContainer(ctx, desc.Name)
	if readErr != nil {
		return classified
	}
	if existing.PartitionKeyPath != path {
		return &SchemaConflictError{Container: desc.Name, Want: path, Got: existing.PartitionKeyPath}
	}
	return nil
}

func (c *CosmosClient) prepareWrite(ctx context.Context, container string, item Item) (*azcosmos.ContainerClient, azcosmos.PartitionKey, []byte, error) {
	cc, err := c.database.NewContainer(container)
	if err != nil {
		return nil, azcosmos.NullPartitionKey, nil, fmt.Errorf("container client: %w", err)
	}
	path, ok := c.pkPaths[container]
	if !ok {
		desc, err := c.ReadContainer(ctx, container)
		if err != nil {
			return nil, azcosmos.NullPartitionKey, nil, err
		}
		path = desc.PartitionKeyPath
		c.pkPaths[container] = path
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, azcosmos.NullPartitionKey, nil, fmt.Errorf("encode item: %w", err)
	}
	return cc, partitionKeyValue(item, path), raw, nil
}

// partitionKeyValue extracts the partition key for an item from the
// container's declared path. Missing values map to the empty partition key.
func partitionKeyValue(item Item, path string) azcosmos.PartitionKey {
	field := PartitionKeyField(path)
	if field == "" {
		return azcosmos.NullPartitionKey
	}
	switch v := item[field].(type) {
	case string:
		return azcosmos.NewPartitionKeyString(v)
	case float64:
		return azcosmos.NewPartitionKeyNumber(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return azcosmos.NewPartitionKeyNumber(f)
		}
		return azcosmos.NewPartitionKeyString(v.String())
	case bool:
		return azcosmos.NewPartitionKeyBool(v)
	case nil:
		return azcosmos.NullPartitionKey
	default:
		return azcosmos.NewPartitionKeyString(fmt.Sprintf("%v", v))
	}
}

func firstPath(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

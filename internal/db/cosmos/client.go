// Package cosmos wraps the Azure Cosmos DB SQL API client.
package cosmos

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/kailas-cloud/flowconn/internal/db"
)

// Param is one named query parameter, e.g. {"@limit", 10}.
type Param struct {
	Name  string
	Value any
}

// Query is a parameterized SQL query. An empty Partition runs cross-partition.
type Query struct {
	Text      string
	Params    []Param
	Partition string
}

// Client issues item operations against one account.
type Client struct {
	client *azcosmos.Client
}

// NewClient creates a client authenticated with the account key.
func NewClient(endpoint, key string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	cred, err := azcosmos.NewKeyCredential(key)
	if err != nil {
		return nil, fmt.Errorf("key credential: %w", err)
	}
	client, err := azcosmos.NewClientWithKey(endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) container(database, container string) (*azcosmos.ContainerClient, error) {
	cc, err := c.client.NewContainer(database, container)
	if err != nil {
		return nil, fmt.Errorf("container %s/%s: %w", database, container, err)
	}
	return cc, nil
}

// Query runs q and returns every matching item as raw JSON, draining all pages.
func (c *Client) Query(ctx context.Context, database, container string, q Query) ([][]byte, error) {
	cc, err := c.container(database, container)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	pager := cc.NewQueryItemsPager(q.Text, partitionKey(q.Partition), &azcosmos.QueryOptions{
		QueryParameters: queryParameters(q.Params),
	})

	var items [][]byte
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// Upsert creates or replaces an item in the given partition.
func (c *Client) Upsert(ctx context.Context, database, container, partition string, item []byte) error {
	cc, err := c.container(database, container)
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	if _, err := cc.UpsertItem(ctx, azcosmos.NewPartitionKeyString(partition), item, nil); err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Delete removes an item. A missing item is not an error.
func (c *Client) Delete(ctx context.Context, database, container, partition, id string) error {
	cc, err := c.container(database, container)
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	if _, err := cc.DeleteItem(ctx, azcosmos.NewPartitionKeyString(partition), id, nil); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

// Ping reads container properties to verify the account, key and container.
func (c *Client) Ping(ctx context.Context, database, container string) error {
	cc, err := c.container(database, container)
	if err != nil {
		return &db.Error{Op: db.OpRead, Err: err}
	}
	if _, err := cc.Read(ctx, nil); err != nil {
		return &db.Error{Op: db.OpRead, Err: err}
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

func partitionKey(partition string) azcosmos.PartitionKey {
	if partition == "" {
		return azcosmos.NewPartitionKey()
	}
	return azcosmos.NewPartitionKeyString(partition)
}

func queryParameters(params []Param) []azcosmos.QueryParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]azcosmos.QueryParameter, len(params))
	for i, p := range params {
		out[i] = azcosmos.QueryParameter{Name: p.Name, Value: p.Value}
	}
	return out
}

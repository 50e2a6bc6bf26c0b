package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/ecommkit/payflow/infra/config"
)

// Client wraps the OpenSearch client used for payment and system logs.
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client.
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // For development/testing
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	return &Client{client: client, config: cfg}, nil
}

// GetClient returns the underlying OpenSearch client.
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled returns whether OpenSearch logging is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.EnableLogging
}

// LogIndexName returns the index name for a provider's payment logs.
func LogIndexName(provider string) string {
	if provider == "" {
		provider = "system"
	}
	return "payflow-" + provider + "-logs"
}

// indexDocument indexes a JSON document into the given index, best-effort.
func (c *Client) indexDocument(ctx context.Context, index, body string) error {
	req := opensearchapi.IndexRequest{
		Index: index,
		Body:  strings.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return nil
}

// Package jackett is a thin JSON client for the Jackett torrent indexer
// aggregator (/api/v2.0).
package jackett

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/pkg/config"
)

// Result is one raw search hit as returned by Jackett.
type Result struct {
	Title       string `json:"Title"`
	Size        int64  `json:"Size"`
	Seeders     int    `json:"Seeders"`
	Peers       int    `json:"Peers"`
	MagnetURI   string `json:"MagnetUri"`
	Link        string `json:"Link"`
	Tracker     string `json:"Tracker"`
	PublishDate string `json:"PublishDate"`
}

// Indexer describes one indexer known to Jackett.
type Indexer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

type searchEnvelope struct {
	Results []Result `json:"Results"`
}

// Client talks to the Jackett HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Jackett client from configuration.
func NewClient(cfg config.JackettConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.SearchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search queries all indexers for the given term. category may be empty.
func (c *Client) Search(ctx context.Context, query, category string) ([]Result, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("Query", query)
	if category != "" {
		params.Set("Category[]", category)
	}

	var envelope searchEnvelope
	if err := c.getJSON(ctx, "/api/v2.0/indexers/all/results", params, &envelope); err != nil {
		return nil, err
	}

	c.logger.Debug("jackett search completed",
		zap.String("query", query),
		zap.Int("results", len(envelope.Results)))

	return envelope.Results, nil
}

// Indexers lists the indexers configured in Jackett.
func (c *Client) Indexers(ctx context.Context) ([]Indexer, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)

	var indexers []Indexer
	if err := c.getJSON(ctx, "/api/v2.0/indexers", params, &indexers); err != nil {
		return nil, err
	}
	return indexers, nil
}

// Ping checks reachability via the server config endpoint.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("apikey", c.apiKey)

	var ignored json.RawMessage
	return c.getJSON(ctx, "/api/v2.0/server/config", params, &ignored)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build jackett request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jackett request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jackett request %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode jackett response: %w", err)
	}
	return nil
}

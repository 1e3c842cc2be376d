// Package docsearch provides the client for the hosted documentation search
// service and the wire types shared with the local index backend. Query
// construction, ranking and highlighting all happen server-side; this
// package only shapes parameters and decodes responses.
package docsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docpane/docpane/pkg/log"
)

const defaultTimeout = 15 * time.Second

// Client talks to a hosted search service over HTTP. Searches are POSTed as
// JSON to <base>/collections/<collection>/search with the API key in the
// X-API-Key header.
type Client struct {
	baseURL    string
	apiKey     string
	collection string

	// HTTPClient may be replaced before the first call, e.g. in tests.
	HTTPClient *http.Client

	logger *log.Logger
}

// NewClient creates a client for the given service URL, API key and
// collection name.
func NewClient(baseURL, apiKey, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.ForService("backend"),
	}
}

// Search executes one page of a query. The response's echoed query is
// checked against the request; a backend that echoes a different query is
// treated as malformed.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/search", c.baseURL, c.collection)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	c.logger.Debugf("search %q page=%d tags=%v", req.Query, req.Page, req.Tags)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search backend returned status %d", resp.StatusCode)
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if decoded.Query != req.Query {
		return nil, fmt.Errorf("search backend echoed query %q for request %q", decoded.Query, req.Query)
	}
	if decoded.Hits == nil {
		decoded.Hits = []Hit{}
	}

	return &decoded, nil
}

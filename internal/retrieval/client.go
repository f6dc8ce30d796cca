package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultClientTimeout = 10 * time.Second

// Client queries a deployed retrieval service over JSON/HTTP.
// POST <baseURL>/search with a Query body; the service answers
// {"passages": [...]}. An empty passage list is a valid answer.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a retrieval client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultClientTimeout},
	}
}

type searchResponse struct {
	Passages []Passage `json:"passages"`
}

// Retrieve implements Retriever.
func (c *Client) Retrieve(ctx context.Context, q Query) ([]Passage, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval service returned %d", resp.StatusCode)
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode retrieval response: %w", err)
	}
	return out.Passages, nil
}

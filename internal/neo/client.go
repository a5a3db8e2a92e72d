package neo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public NeoWs endpoint.
const DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1"

// Client talks to the NASA NeoWs REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client. A zero timeout selects 30 seconds.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Browse fetches one page of the near-Earth object catalogue.
func (c *Client) Browse(ctx context.Context, page int) (*BrowseResponse, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/neo/browse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("browse returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return DecodeBrowse(resp.Body)
}

// DecodeBrowse parses a browse payload, e.g. one saved to disk earlier.
func DecodeBrowse(r io.Reader) (*BrowseResponse, error) {
	var out BrowseResponse
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode browse response: %w", err)
	}
	return &out, nil
}

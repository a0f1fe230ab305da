package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors surfaced by the client so callers can branch on store-level
// conditions without parsing response bodies.
var (
	ErrCollectionExists   = errors.New("collection already exists")
	ErrCollectionNotFound = errors.New("collection not found")
)

// QdrantClient wraps HTTP calls to the Qdrant REST API.
// This avoids pulling in the gRPC client and its protobuf surface for the
// handful of operations the pipeline needs.
type QdrantClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// QdrantConfig holds configuration for the Qdrant connection.
type QdrantConfig struct {
	Host    string
	Port    int
	APIKey  string
	Timeout time.Duration
}

// Point is one vector plus its payload, ready for upsert. Qdrant only accepts
// unsigned integers or UUIDs as point IDs.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ScoredPoint is one similarity-search hit.
type ScoredPoint struct {
	ID      interface{}            `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// NewQdrantClient creates a new Qdrant REST client.
func NewQdrantClient(config QdrantConfig) *QdrantClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &QdrantClient{
		baseURL: fmt.Sprintf("http://%s:%d", config.Host, config.Port),
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Ready checks if Qdrant is up and accepting requests.
func (c *QdrantClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/readyz", nil)
	if err != nil {
		return fmt.Errorf("failed to create readiness request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("readiness request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("readiness check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// ListCollections returns the names of all collections.
func (c *QdrantClient) ListCollections(ctx context.Context) ([]string, error) {
	var result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}

	if err := c.do(ctx, "GET", "/collections", nil, &result); err != nil {
		return nil, fmt.Errorf("list collections failed: %w", err)
	}

	names := make([]string, len(result.Collections))
	for i, col := range result.Collections {
		names[i] = col.Name
	}

	return names, nil
}

// CollectionExists checks for a collection without listing all of them.
func (c *QdrantClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	var result struct {
		Exists bool `json:"exists"`
	}

	if err := c.do(ctx, "GET", fmt.Sprintf("/collections/%s/exists", name), nil, &result); err != nil {
		return false, fmt.Errorf("collection exists check failed: %w", err)
	}

	return result.Exists, nil
}

// CreateCollection creates a collection with the given vector size and
// distance metric. A concurrent or prior create of the same name surfaces as
// ErrCollectionExists so callers can treat it as success.
func (c *QdrantClient) CreateCollection(ctx context.Context, name string, size int, distance string) error {
	payload := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     size,
			"distance": distance,
		},
	}

	err := c.do(ctx, "PUT", "/collections/"+name, payload, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusConflict {
			return ErrCollectionExists
		}
		return fmt.Errorf("create collection failed: %w", err)
	}

	return nil
}

// DeleteCollection removes a collection and all of its points.
func (c *QdrantClient) DeleteCollection(ctx context.Context, name string) error {
	err := c.do(ctx, "DELETE", "/collections/"+name, nil, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return ErrCollectionNotFound
		}
		return fmt.Errorf("delete collection failed: %w", err)
	}
	return nil
}

// UpsertPoints writes points into a collection, waiting for the operation to
// be applied so a subsequent search sees them.
func (c *QdrantClient) UpsertPoints(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	payload := map[string]interface{}{
		"points": points,
	}

	if err := c.do(ctx, "PUT", fmt.Sprintf("/collections/%s/points?wait=true", collection), payload, nil); err != nil {
		return fmt.Errorf("upsert points failed: %w", err)
	}

	return nil
}

// SearchPoints returns the points most similar to the query vector, best
// score first, with payloads included.
func (c *QdrantClient) SearchPoints(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error) {
	payload := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var result []ScoredPoint
	if err := c.do(ctx, "POST", fmt.Sprintf("/collections/%s/points/search", collection), payload, &result); err != nil {
		return nil, fmt.Errorf("search points failed: %w", err)
	}

	return result, nil
}

// CountPoints returns the exact number of points stored in a collection.
func (c *QdrantClient) CountPoints(ctx context.Context, collection string) (int, error) {
	payload := map[string]interface{}{
		"exact": true,
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, "POST", fmt.Sprintf("/collections/%s/points/count", collection), payload, &result); err != nil {
		return 0, fmt.Errorf("count points failed: %w", err)
	}

	return result.Count, nil
}

// Close closes idle HTTP connections.
func (c *QdrantClient) Close() {
	c.httpClient.CloseIdleConnections()
}

// statusError carries the HTTP status of a failed call so callers can map
// well-known codes onto sentinel errors.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant returned status %d: %s", e.code, e.body)
}

func (c *QdrantClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
}

// do performs one request against the REST API, unwrapping Qdrant's
// {"result": ..., "status": ...} envelope into out when out is non-nil.
func (c *QdrantClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	return nil
}

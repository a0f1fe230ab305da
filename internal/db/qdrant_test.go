package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a QdrantClient at a stub server.
func newTestClient(server *httptest.Server) *QdrantClient {
	return &QdrantClient{
		baseURL:    server.URL,
		httpClient: server.Client(),
	}
}

// TestNewQdrantClient tests client initialization
func TestNewQdrantClient(t *testing.T) {
	client := NewQdrantClient(QdrantConfig{
		Host: "localhost",
		Port: 6333,
	})

	if client == nil {
		t.Fatal("Expected non-nil client")
	}
	if client.httpClient == nil {
		t.Error("Expected non-nil HTTP client")
	}
	if client.baseURL != "http://localhost:6333" {
		t.Errorf("Unexpected base URL: %s", client.baseURL)
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %v", client.httpClient.Timeout)
	}
}

// TestQdrantClient_Ready tests the readiness probe
func TestQdrantClient_Ready(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/readyz" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)
	if err := client.Ready(context.Background()); err != nil {
		t.Fatalf("Expected ready, got error: %v", err)
	}
}

// TestQdrantClient_ListCollections tests listing collection names
func TestQdrantClient_ListCollections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"collections": []map[string]string{
					{"name": "invoices"},
					{"name": "contracts"},
				},
			},
			"status": "ok",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	names, err := client.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("List collections failed: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("Expected 2 collections, got %d", len(names))
	}
	if names[0] != "invoices" || names[1] != "contracts" {
		t.Errorf("Unexpected collection names: %v", names)
	}
}

// TestQdrantClient_CollectionExists tests the exists endpoint
func TestQdrantClient_CollectionExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/exists") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		exists := strings.Contains(r.URL.Path, "present")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]bool{"exists": exists},
			"status": "ok",
		})
	}))
	defer server.Close()

	client := newTestClient(server)

	exists, err := client.CollectionExists(context.Background(), "present")
	if err != nil {
		t.Fatalf("Exists check failed: %v", err)
	}
	if !exists {
		t.Error("Expected collection to exist")
	}

	exists, err = client.CollectionExists(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Exists check failed: %v", err)
	}
	if exists {
		t.Error("Expected collection to be absent")
	}
}

// TestQdrantClient_CreateCollection tests collection creation and the
// conflict sentinel
func TestQdrantClient_CreateCollection(t *testing.T) {
	var created bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" {
			t.Errorf("Unexpected method: %s", r.Method)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		vectors, ok := body["vectors"].(map[string]interface{})
		if !ok {
			t.Fatal("Expected vectors config in request")
		}
		if vectors["size"].(float64) != 384 {
			t.Errorf("Unexpected vector size: %v", vectors["size"])
		}
		if vectors["distance"] != "Cosine" {
			t.Errorf("Unexpected distance: %v", vectors["distance"])
		}

		if created {
			w.WriteHeader(http.StatusConflict)
			return
		}
		created = true
		json.NewEncoder(w).Encode(map[string]interface{}{"result": true, "status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(server)

	if err := client.CreateCollection(context.Background(), "invoices", 384, "Cosine"); err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}

	err := client.CreateCollection(context.Background(), "invoices", 384, "Cosine")
	if !errors.Is(err, ErrCollectionExists) {
		t.Errorf("Expected ErrCollectionExists on conflict, got %v", err)
	}
}

// TestQdrantClient_DeleteCollection tests deletion and the missing sentinel
func TestQdrantClient_DeleteCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			t.Errorf("Unexpected method: %s", r.Method)
		}
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": true, "status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(server)

	if err := client.DeleteCollection(context.Background(), "invoices"); err != nil {
		t.Fatalf("Delete collection failed: %v", err)
	}

	err := client.DeleteCollection(context.Background(), "missing")
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("Expected ErrCollectionNotFound, got %v", err)
	}
}

// TestQdrantClient_UpsertPoints tests the upsert request shape
func TestQdrantClient_UpsertPoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("wait") != "true" {
			t.Error("Expected wait=true on upsert")
		}

		var body struct {
			Points []Point `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if len(body.Points) != 2 {
			t.Fatalf("Expected 2 points, got %d", len(body.Points))
		}
		if body.Points[0].Payload["chunk_id"] != "doc1_chunk_0" {
			t.Errorf("Unexpected payload: %v", body.Points[0].Payload)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{"result": map[string]string{"status": "completed"}})
	}))
	defer server.Close()

	client := newTestClient(server)

	points := []Point{
		{
			ID:      "7f9c24e8-3b2a-4c1d-9e8f-1a2b3c4d5e6f",
			Vector:  []float32{0.1, 0.2, 0.3},
			Payload: map[string]interface{}{"chunk_id": "doc1_chunk_0"},
		},
		{
			ID:      "8a1d35f9-4c3b-5d2e-af90-2b3c4d5e6f70",
			Vector:  []float32{0.4, 0.5, 0.6},
			Payload: map[string]interface{}{"chunk_id": "doc1_chunk_1"},
		},
	}

	if err := client.UpsertPoints(context.Background(), "invoices", points); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

// TestQdrantClient_UpsertPoints_Empty verifies no request is made for an
// empty batch
func TestQdrantClient_UpsertPoints_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Unexpected request for empty batch")
	}))
	defer server.Close()

	client := newTestClient(server)
	if err := client.UpsertPoints(context.Background(), "invoices", nil); err != nil {
		t.Fatalf("Expected nil error for empty batch, got %v", err)
	}
}

// TestQdrantClient_SearchPoints tests similarity search decoding
func TestQdrantClient_SearchPoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["limit"].(float64) != 4 {
			t.Errorf("Unexpected limit: %v", body["limit"])
		}
		if body["with_payload"] != true {
			t.Error("Expected with_payload=true")
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []map[string]interface{}{
				{"id": "7f9c24e8-3b2a-4c1d-9e8f-1a2b3c4d5e6f", "score": 0.92, "payload": map[string]string{"text": "first"}},
				{"id": "8a1d35f9-4c3b-5d2e-af90-2b3c4d5e6f70", "score": 0.71, "payload": map[string]string{"text": "second"}},
			},
			"status": "ok",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	hits, err := client.SearchPoints(context.Background(), "invoices", []float32{0.1, 0.2}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].Score <= hits[1].Score {
		t.Error("Expected hits ordered best first")
	}
	if hits[0].Payload["text"] != "first" {
		t.Errorf("Unexpected payload: %v", hits[0].Payload)
	}
}

// TestQdrantClient_CountPoints tests the exact count endpoint
func TestQdrantClient_CountPoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["exact"] != true {
			t.Error("Expected exact=true")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]int{"count": 42},
			"status": "ok",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	count, err := client.CountPoints(context.Background(), "invoices")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 42 {
		t.Errorf("Expected count 42, got %d", count)
	}
}

// TestQdrantClient_APIKey verifies the api-key header is attached
func TestQdrantClient_APIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("Expected api-key header, got %q", r.Header.Get("api-key"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)
	client.apiKey = "secret"

	if err := client.Ready(context.Background()); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
}

// TestQdrantClient_ContextCancellation tests context handling
func TestQdrantClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	if err := client.Ready(ctx); err == nil {
		t.Error("Expected context deadline error, got nil")
	}
}

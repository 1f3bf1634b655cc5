package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/cache"
	derrors "github.com/matzehuels/entitydiagram/pkg/errors"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	client := NewClient(server.URL, "demo", c, time.Hour, BearerToken("secret"))
	client.http = server.Client()
	return client, server
}

func TestHTTPSourceRequests(t *testing.T) {
	var paths []string
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "200" {
			t.Errorf("limit = %q, want 200", got)
		}
		paths = append(paths, r.URL.Path)

		switch r.URL.Path {
		case "/demo/custom-objects/mc-custom-object-schema":
			json.NewEncoder(w).Encode(PagedQueryResponse[SchemaRecord]{Count: 1, Results: []SchemaRecord{{Key: "User"}}})
		case "/demo/product-types":
			json.NewEncoder(w).Encode(PagedQueryResponse[ProductType]{Count: 1, Results: []ProductType{{Name: "Shirt"}}})
		case "/demo/types":
			json.NewEncoder(w).Encode(PagedQueryResponse[FieldType]{Count: 1, Results: []FieldType{{Key: "ext"}}})
		default:
			http.NotFound(w, r)
		}
	})
	src := NewHTTPSource(client)
	ctx := context.Background()

	schemas, err := src.Schemas(ctx)
	if err != nil || len(schemas) != 1 || schemas[0].Key != "User" {
		t.Fatalf("Schemas = %+v, %v", schemas, err)
	}
	pts, err := src.ProductTypes(ctx)
	if err != nil || len(pts) != 1 || pts[0].EntityKey() != "Shirt" {
		t.Fatalf("ProductTypes = %+v, %v", pts, err)
	}
	types, err := src.Types(ctx)
	if err != nil || len(types) != 1 || types[0].Key != "ext" {
		t.Fatalf("Types = %+v, %v", types, err)
	}
	if len(paths) != 3 {
		t.Errorf("requests = %v", paths)
	}
}

func TestHTTPSourceUsesCache(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(PagedQueryResponse[ProductType]{Results: []ProductType{{Key: "k"}}})
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := NewHTTPSource(client).ProductTypes(ctx); err != nil {
			t.Fatalf("ProductTypes: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (second served from cache)", calls.Load())
	}

	if _, err := NewHTTPSource(client, WithRefresh(true)).ProductTypes(ctx); err != nil {
		t.Fatalf("ProductTypes refresh: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2 after refresh", calls.Load())
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	cache.Backoff.Delay = time.Millisecond
	defer func() { cache.Backoff.Delay = time.Second }()

	var calls atomic.Int32
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(PagedQueryResponse[FieldType]{Results: []FieldType{{Key: "ext"}}})
	})

	types, err := NewHTTPSource(client).Types(context.Background())
	if err != nil {
		t.Fatalf("Types: %v", err)
	}
	if len(types) != 1 || calls.Load() != 2 {
		t.Errorf("types = %d, calls = %d", len(types), calls.Load())
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, cache.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, cache.ErrUnauthorized},
		{"bad request", http.StatusBadRequest, cache.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := NewHTTPSource(client).Schemas(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if !derrors.Is(err, derrors.ErrCodeNetwork) {
				t.Errorf("code = %q, want NETWORK_ERROR", derrors.GetCode(err))
			}
		})
	}
}

func TestHTTPSourceCustomContainer(t *testing.T) {
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/custom-objects/my-schemas" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %s", got)
		}
		json.NewEncoder(w).Encode(PagedQueryResponse[SchemaRecord]{})
	})
	src := NewHTTPSource(client, WithSchemaContainer("my-schemas"), WithPageLimit(50))
	if _, err := src.Schemas(context.Background()); err != nil {
		t.Fatalf("Schemas: %v", err)
	}
}

func TestClientPost(t *testing.T) {
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"echo": body["key"]})
	})

	var resp map[string]string
	if err := client.Post(context.Background(), "custom-objects", map[string]string{"key": "k"}, &resp); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp["echo"] != "k" {
		t.Errorf("resp = %v", resp)
	}
}

func TestClientPostDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.Post(context.Background(), "custom-objects", map[string]string{"key": "k"}, nil)
	if err == nil {
		t.Fatal("expected error from 503")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

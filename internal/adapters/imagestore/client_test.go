package imagestore_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lovehome/internal/adapters/imagestore"
)

func TestClient_Upload_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			body, _ := io.ReadAll(r.Body)
			if len(body) == 0 {
				t.Error("empty upload body")
			}
			if r.Header.Get("X-API-Key") != "test-key" {
				t.Errorf("missing api key header")
			}
			w.WriteHeader(201)
			_, _ = w.Write([]byte(`{"key":"FpQ7x.jpg"}`))
		}
	}))
	defer ts.Close()

	cl, err := imagestore.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key, err := cl.Upload(ctx, []byte("imagedata"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if key != "FpQ7x.jpg" {
		t.Fatalf("unexpected key: %s", key)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Upload_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	cl, err := imagestore.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := cl.Upload(ctx, []byte("x")); err == nil {
		t.Fatalf("expected error for 403")
	}
}

func TestClient_RequiresKey(t *testing.T) {
	if _, err := imagestore.New("http://example.com", "", 5); err == nil {
		t.Fatal("expected error for empty key")
	}
}

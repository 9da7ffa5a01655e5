package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newPixabayClient(baseURL string) *PixabayService {
	svc := NewPixabayService("test-key")
	svc.baseURL = baseURL
	return svc
}

func TestSearchImageReturnsFirstHit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"totalHits":2,"hits":[{"largeImageURL":"https://cdn.example.com/a.jpg"},{"largeImageURL":"https://cdn.example.com/b.jpg"}]}`))
	}))
	defer srv.Close()

	url, err := newPixabayClient(srv.URL).SearchImage(context.Background(), "sunny+meadow")
	if err != nil {
		t.Fatalf("SearchImage: %v", err)
	}
	if url != "https://cdn.example.com/a.jpg" {
		t.Errorf("got %q, want first hit", url)
	}
	if gotQuery != "sunny+meadow" {
		t.Errorf("query = %q, want sunny+meadow", gotQuery)
	}
}

func TestSearchImageNoHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalHits":0,"hits":[]}`))
	}))
	defer srv.Close()

	if _, err := newPixabayClient(srv.URL).SearchImage(context.Background(), "calm+lake"); err == nil {
		t.Error("expected error for empty result set")
	}
}

func TestSearchImageProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := newPixabayClient(srv.URL).SearchImage(context.Background(), "calm+lake"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestSearchImageMissingKey(t *testing.T) {
	svc := NewPixabayService("")
	if _, err := svc.SearchImage(context.Background(), "calm+lake"); err == nil {
		t.Error("expected error when API key is not configured")
	}
}

func TestSearchImageContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"totalHits":0,"hits":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := newPixabayClient(srv.URL).SearchImage(ctx, "calm+lake"); err == nil {
		t.Error("expected error when the deadline passes")
	}
}

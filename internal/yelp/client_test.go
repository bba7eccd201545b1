package yelp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_SearchRestaurants(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/businesses/search" {
			t.Errorf("path = %q, want /businesses/search", r.URL.Path)
		}
		if got := r.URL.Query().Get("location"); got != "Austin, TX" {
			t.Errorf("location = %q, want %q", got, "Austin, TX")
		}
		if got := r.URL.Query().Get("categories"); got != "restaurants" {
			t.Errorf("categories = %q, want restaurants", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"businesses":[{"id":"biz-1"}],"total":1}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key")

	body, err := client.SearchRestaurants(context.Background(), "Austin, TX")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// The body is relayed as-is, not reshaped.
	if string(body) != `{"businesses":[{"id":"biz-1"}],"total":1}` {
		t.Errorf("body = %s, want the upstream payload unchanged", body)
	}
}

func TestClient_GetBusiness(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/businesses/biz-1" {
			t.Errorf("path = %q, want /businesses/biz-1", r.URL.Path)
		}
		w.Write([]byte(`{"id":"biz-1","name":"Taco Palace"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key")

	body, err := client.GetBusiness(context.Background(), "biz-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(body) != `{"id":"biz-1","name":"Taco Palace"}` {
		t.Errorf("body = %s, want the upstream payload unchanged", body)
	}
}

func TestClient_GetBusiness_EscapesID(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "test-key")

	if _, err := client.GetBusiness(context.Background(), "biz/../1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if gotPath != "/businesses/biz%2F..%2F1" {
		t.Errorf("path = %q, want the business id path-escaped", gotPath)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			client := NewClient(ts.URL, "test-key")

			_, err := client.SearchRestaurants(context.Background(), "Austin, TX")

			var upstream *ErrUpstream
			if !errors.As(err, &upstream) {
				t.Fatalf("error = %v, want ErrUpstream", err)
			}
			if upstream.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", upstream.StatusCode, tt.status)
			}
		})
	}
}

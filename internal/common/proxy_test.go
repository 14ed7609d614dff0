package common

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProxyRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	proxy := NewProxy(map[string]string{"X-Test": "yes"}, nil)
	data, err := proxy.Request(context.Background(), server.URL, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestProxyRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	proxy := NewProxy(nil, nil)
	if _, err := proxy.Request(context.Background(), server.URL, false); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	// The limiter now rejects non vital requests without reaching the server
	if _, err := proxy.Request(context.Background(), server.URL, false); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited error on the second request, got %v", err)
	}
}

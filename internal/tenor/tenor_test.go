package tenor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const searchBody = `{
  "results": [
    {"id": "1", "media_formats": {"gif": {"url": "https://media.tenor.com/1.gif"}, "tinygif": {"url": "https://media.tenor.com/1t.gif"}}},
    {"id": "2", "media_formats": {"mp4": {"url": "https://media.tenor.com/2.mp4"}}},
    {"id": "3", "media_formats": {"gif": {"url": "https://media.tenor.com/3.gif"}}}
  ],
  "next": "3"
}`

func TestDecodeGifUrls(t *testing.T) {
	urls, err := DecodeGifUrls([]byte(searchBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://media.tenor.com/1.gif" || urls[1] != "https://media.tenor.com/3.gif" {
		t.Fatalf("unexpected urls %v", urls)
	}
	if _, err := DecodeGifUrls([]byte("not json")); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestSearchUsesCache(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("q") != "spongebob" || r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(searchBody))
	}))
	defer server.Close()

	client := NewClient("secret", nil, time.Hour)
	client.baseUrl = server.URL
	for i := 0; i < 3; i++ {
		urls, err := client.Search(context.Background(), "spongebob")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(urls) != 2 {
			t.Fatalf("expected 2 urls, got %d", len(urls))
		}
	}
	if requests != 1 {
		t.Fatalf("expected a single request, got %d", requests)
	}
}

func TestSearchWithoutKey(t *testing.T) {
	client := NewClient("", nil, time.Hour)
	if _, err := client.Search(context.Background(), "spongebob"); err == nil {
		t.Fatalf("expected an error without api key")
	}
}

package tenor

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"petbot/internal/common"

	"github.com/rs/zerolog/log"
)

// Tenor schema
const TENOR_SCHEMA = "https://tenor.googleapis.com"

// Routes inside the tenor API
const ROUTE_SEARCH = "/v2/search?q=%s&key=%s&limit=%d"

// Results requested per search
const SEARCH_LIMIT = 30

type cachedSearch struct {
	urls      []string
	stopwatch common.Stopwatch
}

type Client struct {
	apiKey   string
	baseUrl  string
	proxy    *common.Proxy
	mu       sync.Mutex
	cache    map[string]cachedSearch
	cacheTtl time.Duration
}

func NewClient(apiKey string, restrictions []common.Restriction, cacheTtl time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		baseUrl:  TENOR_SCHEMA,
		proxy:    common.NewProxy(nil, restrictions),
		cache:    map[string]cachedSearch{},
		cacheTtl: cacheTtl,
	}
}

// Search returns the gif urls found for the query.
// Results are kept for a while to avoid repeating requests
func (client *Client) Search(ctx context.Context, query string) ([]string, error) {

	if client.apiKey == "" {
		return nil, fmt.Errorf("no tenor api key configured")
	}

	// Check cache
	client.mu.Lock()
	cached, ok := client.cache[query]
	client.mu.Unlock()
	if ok {
		if stopped, _ := cached.stopwatch.Stopped(); !stopped {
			return cached.urls, nil
		}
		log.Debug().Msg(fmt.Sprintf("Cached gifs for %s are too old", query))
	}

	// Request. Gifs are never vital
	requestUrl := client.baseUrl + fmt.Sprintf(ROUTE_SEARCH, url.QueryEscape(query), url.QueryEscape(client.apiKey), SEARCH_LIMIT)
	data, err := client.proxy.Request(ctx, requestUrl, false)
	if err != nil {
		return nil, fmt.Errorf("could not search gifs for %s: %w", query, err)
	}

	// Decode
	urls, err := DecodeGifUrls(data)
	if err != nil {
		return nil, err
	}
	log.Debug().Msg(fmt.Sprintf("Found %d gifs for %s", len(urls), query))

	// Update cache
	entry := cachedSearch{urls: urls, stopwatch: common.NewStopwatch(client.cacheTtl)}
	entry.stopwatch.Start()
	client.mu.Lock()
	client.cache[query] = entry
	client.mu.Unlock()
	return urls, nil
}

// Housekeeping drops the expired searches from the cache
func (client *Client) Housekeeping() {
	client.mu.Lock()
	defer client.mu.Unlock()
	for query, cached := range client.cache {
		if stopped, _ := cached.stopwatch.Stopped(); stopped {
			delete(client.cache, query)
		}
	}
	log.Info().Msg(fmt.Sprintf("Gif cache trimmed to %d searches", len(client.cache)))
}

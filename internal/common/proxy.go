package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrRateLimited = errors.New("request not allowed by the rate limiter")

// Used when the server rate limits us without a Retry-After header
const defaultRetryAfter = 10 * time.Second

type Proxy struct {
	header      map[string]string
	client      *http.Client
	rateLimiter *RateLimiter
}

func NewProxy(header map[string]string, restrictions []Restriction) *Proxy {
	return &Proxy{header, &http.Client{Timeout: 15 * time.Second}, NewRateLimiter(restrictions)}
}

// Make a request to the provided url, indicating if it is vital.
// The request will be performed depending on the status of the rate limiter
func (proxy *Proxy) Request(ctx context.Context, url string, vital bool) ([]byte, error) {

	// ask for permission to execute the request
	// and wait if necessary
	if !proxy.rateLimiter.Allowed(ctx, vital) {
		return nil, ErrRateLimited
	}

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for url %s: %w", url, err)
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}

	// Perform the request
	res, err := proxy.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("could not perform request: %w", err)
	}
	defer res.Body.Close()
	log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode)))

	switch res.StatusCode {
	case http.StatusOK:
		stream, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("could not extract the response for url %s: %w", url, err)
		}
		return stream, nil
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		if seconds, err := strconv.Atoi(res.Header.Get("Retry-After")); err == nil && seconds > 0 {
			retryAfter = time.Duration(seconds) * time.Second
		}
		proxy.rateLimiter.ReceivedRateLimit(retryAfter)
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("unexpected status %d (%s) for url %s", res.StatusCode, http.StatusText(res.StatusCode), url)
	}
}

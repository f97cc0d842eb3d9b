package deepbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
)

// Client talks to the DeepBook indexer HTTP API with retry support.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the indexer client.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

// HTTPError carries a non-2xx indexer response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("indexer http %d", e.StatusCode)
	}
	return fmt.Sprintf("indexer http %d: %s", e.StatusCode, b)
}

// NewClient creates a new indexer client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// GetPools fetches the full pool listing from the indexer.
func (c *Client) GetPools(ctx context.Context) ([]PoolRecord, error) {
	body, err := c.get(ctx, "/get_pools", nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to fetch pools from indexer")
	}

	var pools []PoolRecord
	if err := json.Unmarshal(body, &pools); err != nil {
		// Some deployments wrap the array in {"pools": [...]}.
		var wrapped struct {
			Pools []PoolRecord `json:"pools"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to decode pool listing")
		}
		pools = wrapped.Pools
	}
	return pools, nil
}

// GetOrderBook fetches a level-2 depth snapshot for the named pool.
func (c *Client) GetOrderBook(ctx context.Context, poolName string, depth int) (*OrderBook, error) {
	if depth <= 0 {
		depth = 5
	}
	q := url.Values{}
	q.Set("level", "2")
	q.Set("depth", fmt.Sprintf("%d", depth))

	body, err := c.get(ctx, "/orderbook/"+url.PathEscape(poolName), q)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to fetch order book")
	}

	var payload orderBookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to decode order book")
	}
	ob, err := payload.toOrderBook()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to decode order book")
	}
	return ob, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"path":    path,
			}).Debug("retrying indexer call")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		body, err := c.doRequest(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

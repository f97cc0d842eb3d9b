package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Client is a JSON-RPC client for a Sui fullnode with retry and timeout
// support.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the fullnode client.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

// NewClient creates a new fullnode client with retry support.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
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
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// Call makes a JSON-RPC call with retry logic and decodes the result field.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying fullnode call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		resp, err := c.doRequest(ctx, data)
		if err != nil {
			lastErr = err
			continue
		}

		var envelope struct {
			Result json.RawMessage `json:"result"`
			Error  *RPCError       `json:"error"`
		}
		if err := json.Unmarshal(resp, &envelope); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if envelope.Error != nil {
			// Node-level errors are not transient; do not retry.
			return envelope.Error
		}
		if result != nil {
			if err := json.Unmarshal(envelope.Result, result); err != nil {
				return fmt.Errorf("failed to unmarshal result: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// GetCoins fetches all owned coin objects of the given type, following
// pagination to completion.
func (c *Client) GetCoins(ctx context.Context, owner, coinType string) ([]Coin, error) {
	var all []Coin
	var cursor *string

	for {
		params := []interface{}{owner, coinType, cursor, nil}
		var page CoinPage
		if err := c.Call(ctx, "suix_getCoins", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// GetAllBalances fetches aggregate balances for every coin type the owner
// holds.
func (c *Client) GetAllBalances(ctx context.Context, owner string) ([]Balance, error) {
	var out []Balance
	if err := c.Call(ctx, "suix_getAllBalances", []interface{}{owner}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetObject fetches object metadata including ownership, which carries the
// initial shared version needed to reference shared objects in a transaction.
func (c *Client) GetObject(ctx context.Context, objectID string) (*ObjectData, error) {
	params := []interface{}{objectID, map[string]interface{}{"showOwner": true}}
	var resp ObjectResponse
	if err := c.Call(ctx, "sui_getObject", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("object %s not found", objectID)
	}
	return resp.Data, nil
}

// GetReferenceGasPrice fetches the current epoch's reference gas price.
func (c *Client) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	var s string
	if err := c.Call(ctx, "suix_getReferenceGasPrice", []interface{}{}, &s); err != nil {
		return 0, err
	}
	price, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad gas price %q: %w", s, err)
	}
	return price, nil
}

// GetTransactionBlock fetches a previously submitted transaction by digest.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string) (*TransactionBlock, error) {
	params := []interface{}{digest, map[string]interface{}{"showEffects": true}}
	var out TransactionBlock
	if err := c.Call(ctx, "sui_getTransactionBlock", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DryRunTransactionBlock simulates a serialized transaction against current
// network state.
func (c *Client) DryRunTransactionBlock(ctx context.Context, txBytesBase64 string) (*DryRunResult, error) {
	var out DryRunResult
	if err := c.Call(ctx, "sui_dryRunTransactionBlock", []interface{}{txBytesBase64}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteTransactionBlock submits a signed transaction and waits for local
// execution effects.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytesBase64 string, signatures []string) (*ExecuteResult, error) {
	params := []interface{}{
		txBytesBase64,
		signatures,
		map[string]interface{}{"showEffects": true},
		"WaitForLocalExecution",
	}
	var out ExecuteResult
	if err := c.Call(ctx, "sui_executeTransactionBlock", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

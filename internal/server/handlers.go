package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/flags"
	"github.com/suitent/sui-deepbook-swap/internal/pools"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
	"github.com/suitent/sui-deepbook-swap/internal/storage"
	"github.com/suitent/sui-deepbook-swap/internal/stream"
	"github.com/suitent/sui-deepbook-swap/internal/swap"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Swaps     *swap.Service
	Quotes    *quote.Engine
	Directory *pools.Directory
	Flags     *flags.Store            // Redis-backed feature flags store (optional)
	Cache     storage.BuildCache      // Recent-builds feed (optional)
	Stream    *stream.QuoteStream     // WebSocket quote pusher (optional)
	DevMode   bool // Enable detailed error responses in development
	Logger    *logrus.Logger
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// fail maps a service error to its status and the uniform envelope.
// In dev mode, includes the full error chain for debugging.
func (h *Handlers) fail(c echo.Context, err error) error {
	code := apperror.CodeOf(err)
	if code == apperror.CodeInternalError && h.Logger != nil {
		h.Logger.WithError(err).Error("request failed")
	}
	body := ErrorBody{
		Message: apperror.MessageOf(err),
		Code:    string(code),
	}
	if h.DevMode {
		body.Details = err.Error()
	}
	return c.JSON(code.HTTPStatus(), ErrorResponse{Error: body})
}

// badRequest is a shorthand for inline validation failures.
func (h *Handlers) badRequest(c echo.Context, msg string) error {
	return h.fail(c, apperror.New(apperror.CodeInvalidRequest, msg))
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Root lists the service's routes.
func (h *Handlers) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, ServiceInfo{
		Service: "sui-deepbook-swap",
		Version: "1.0.0",
		Routes: []string{
			"GET /health",
			"GET /pools",
			"GET /pools/:base/:quote",
			"GET /swap/pairs",
			"POST /price/quote",
			"POST /swap/build",
			"GET /swap/balances/:walletAddress",
			"GET /swap/transaction/:digest",
			"GET /swap/builds/recent",
			"GET /ws/quotes",
		},
	})
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Pools returns the venue's normalized pool listing.
func (h *Handlers) Pools(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	list, err := h.Directory.FetchPools(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"pools": list})
}

// PoolByPair looks up a pool by base and quote symbols. The lookup is
// name-based and directional.
func (h *Handlers) PoolByPair(c echo.Context) error {
	base := strings.ToUpper(strings.TrimSpace(c.Param("base")))
	quoteSym := strings.ToUpper(strings.TrimSpace(c.Param("quote")))
	if base == "" || quoteSym == "" {
		return h.badRequest(c, "base and quote symbols are required")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pool, err := h.Directory.GetPoolByPair(ctx, base, quoteSym)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"pool": pool})
}

// Pairs derives the tradable pair list from the pool listing.
func (h *Handlers) Pairs(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	list, err := h.Directory.FetchPools(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	pairs := make([]PairInfo, 0, len(list))
	for _, p := range list {
		pairs = append(pairs, PairInfo{
			Pair:     p.BaseCoin + "_" + p.QuoteCoin,
			Base:     p.BaseCoin,
			Quote:    p.QuoteCoin,
			PoolID:   p.PoolID,
			PoolName: p.PoolName,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"pairs": pairs})
}

// PriceQuote prices a prospective swap without building anything.
func (h *Handlers) PriceQuote(c echo.Context) error {
	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid json")
	}
	if req.TokenIn == "" || req.TokenOut == "" || req.AmountIn == "" {
		return h.badRequest(c, "tokenIn, tokenOut and amountIn are required")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	q, err := h.Quotes.GetQuote(ctx, req.TokenIn, req.TokenOut, req.AmountIn)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// SwapBuild builds an unsigned swap transaction for the caller to sign.
func (h *Handlers) SwapBuild(c echo.Context) error {
	var req swap.BuildRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid json")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	resp, err := h.Swaps.BuildSwapTransaction(ctx, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Balances returns the wallet's holdings of registered tokens.
func (h *Handlers) Balances(c echo.Context) error {
	wallet := strings.TrimSpace(c.Param("walletAddress"))

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	balances, err := h.Swaps.GetBalances(ctx, wallet)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"balances": balances})
}

// TransactionStatus passes a status query through to the fullnode.
func (h *Handlers) TransactionStatus(c echo.Context) error {
	digest := c.Param("digest")

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	status, err := h.Swaps.GetTransactionStatus(ctx, digest)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// RecentBuilds returns the latest build events with an optional limit
// parameter (default: 100, range: 1-200).
func (h *Handlers) RecentBuilds(c echo.Context) error {
	if h.Cache == nil {
		return h.badRequest(c, "recent builds are not configured")
	}

	limit := 100
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return h.badRequest(c, "limit must be an integer")
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.badRequest(c, "limit must be between 1 and 200")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentBuilds(ctx, int64(limit))
	if err != nil {
		return h.fail(c, apperror.Wrap(err, apperror.CodeInternalError, "failed to get recent builds"))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// WSQuotes upgrades the connection and hands it to the quote stream.
func (h *Handlers) WSQuotes(c echo.Context) error {
	if h.Stream == nil {
		return h.badRequest(c, "quote streaming is not configured")
	}
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return h.badRequest(c, "websocket upgrade failed")
	}
	h.Stream.Serve(c.Request().Context(), conn)
	return nil
}

// FlagsUpsert creates or updates a feature flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid json")
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.badRequest(c, "invalid flag key")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.fail(c, apperror.Wrap(err, apperror.CodeInternalError, "failed to upsert flag"))
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.badRequest(c, "invalid flag key")
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "invalid json")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.fail(c, apperror.Wrap(err, apperror.CodeInternalError, "failed to update flag"))
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key; 404 when it doesn't exist.
func (h *Handlers) FlagsGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.badRequest(c, "invalid flag key")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrorBody{
				Message: "flag not found",
				Code:    string(apperror.CodeInvalidRequest),
			}})
		}
		return h.fail(c, apperror.Wrap(err, apperror.CodeInternalError, "failed to get flag"))
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all feature flags in the system
func (h *Handlers) FlagsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.fail(c, apperror.Wrap(err, apperror.CodeInternalError, "failed to list flags"))
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
func (h *Handlers) FlagsDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.badRequest(c, "invalid flag key")
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.fail(c, apperror.Wrap(err, apperror.CodeInternalError, "failed to delete flag"))
	}
	return c.NoContent(http.StatusNoContent)
}

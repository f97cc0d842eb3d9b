package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = JSONErrorHandler()

	// Apply global middleware
	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication; the info and health endpoints stay open
	// so load balancers can probe without credentials.
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Skipper: func(c echo.Context) bool {
				p := c.Path()
				return p == "/" || p == "/health"
			},
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	e.GET("/pools", h.Pools)
	e.GET("/pools/:base/:quote", h.PoolByPair)

	e.POST("/price/quote", h.PriceQuote)

	swapGroup := e.Group("/swap")
	swapGroup.GET("/pairs", h.Pairs)
	swapGroup.GET("/balances/:walletAddress", h.Balances)
	swapGroup.GET("/transaction/:digest", h.TransactionStatus)
	swapGroup.GET("/builds/recent", h.RecentBuilds)

	// Build endpoint is rate limited; it fans out several fullnode calls per
	// request.
	swapGroup.POST("/build", h.SwapBuild, middleware.RateLimiter(
		middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(1), // 1 request per second per client
			Burst:     5,
			ExpiresIn: 2 * time.Minute,
		})))

	// Feature flags CRUD endpoints
	if h.Flags != nil {
		flagGroup := e.Group("/flags")
		flagGroup.GET("", h.FlagsList)
		flagGroup.POST("", h.FlagsUpsert)
		flagGroup.GET("/:key", h.FlagsGet)
		flagGroup.PUT("/:key", h.FlagsUpdate)
		flagGroup.DELETE("/:key", h.FlagsDelete)
	}

	e.GET("/ws/quotes", h.WSQuotes)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrorBody{
			Message: "not found",
			Code:    string(apperror.CodeInvalidRequest),
		}})
	})
}

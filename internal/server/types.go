package server

// ErrorBody is the inner error payload. Details is only populated in dev
// mode.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is the uniform error envelope for every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ServiceInfo is the root endpoint payload.
type ServiceInfo struct {
	Service string   `json:"service"`
	Version string   `json:"version"`
	Routes  []string `json:"routes"`
}

// QuoteRequest is the POST /price/quote body.
type QuoteRequest struct {
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
	AmountIn string `json:"amountIn"`
}

// PairInfo is one tradable direction derived from the pool listing.
type PairInfo struct {
	Pair     string `json:"pair"`
	Base     string `json:"base"`
	Quote    string `json:"quote"`
	PoolID   string `json:"poolId"`
	PoolName string `json:"poolName"`
}

// FlagUpsertRequest represents a request to create or update a feature flag.
type FlagUpsertRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// FlagUpdateRequest represents a request to update an existing feature flag.
type FlagUpdateRequest struct {
	Value bool `json:"value"`
}

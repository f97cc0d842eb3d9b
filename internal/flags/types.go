package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Runtime switches the swap service reads per request.
const (
	// UseSDKBuilder routes /swap/build through the SDK-mediated builder
	// instead of the manual one.
	UseSDKBuilder = "swap.use_sdk_builder"

	// AllowZeroMinOut permits minAmountOut of zero. Unsafe: no slippage
	// protection. Meant for manual testing tools only, never the default.
	AllowZeroMinOut = "swap.allow_zero_min_out"
)

type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

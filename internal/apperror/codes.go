package apperror

import "net/http"

// Code is a stable machine-readable error code returned to API clients.
type Code string

const (
	CodeInvalidRequest        Code = "INVALID_REQUEST"
	CodeInvalidWalletAddress  Code = "INVALID_WALLET_ADDRESS"
	CodeInvalidToken          Code = "INVALID_TOKEN"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodePoolNotFound          Code = "POOL_NOT_FOUND"
	CodeNoLiquidity           Code = "NO_LIQUIDITY"
	CodeInsufficientBalance   Code = "INSUFFICIENT_BALANCE"
	CodeTransactionBuildFail  Code = "TRANSACTION_BUILD_FAILED"
	CodeNetworkError          Code = "NETWORK_ERROR"
	CodeInternalError         Code = "INTERNAL_ERROR"
)

// HTTPStatus maps each code to its fixed HTTP status. Unknown codes fall back
// to 500 so a missing mapping never turns into a 200.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidRequest, CodeInvalidWalletAddress, CodeInvalidToken,
		CodeInvalidAmount, CodeInsufficientBalance:
		return http.StatusBadRequest
	case CodePoolNotFound:
		return http.StatusNotFound
	case CodeNoLiquidity, CodeNetworkError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesInnerCode(t *testing.T) {
	inner := New(CodeInsufficientBalance, "not enough DEEP")
	outer := Wrap(fmt.Errorf("building swap: %w", inner), CodeTransactionBuildFail, "failed to build transaction")

	assert.Equal(t, CodeInsufficientBalance, outer.Code)
	assert.Equal(t, "not enough DEEP", outer.Message)
	assert.True(t, errors.Is(outer, inner))
}

func TestWrapPlainError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, CodeNetworkError, "indexer unreachable")

	require.Equal(t, CodeNetworkError, err.Code)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "indexer unreachable", MessageOf(err))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternalError, CodeOf(errors.New("boom")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("boom")))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidRequest:       http.StatusBadRequest,
		CodeInvalidWalletAddress: http.StatusBadRequest,
		CodeInvalidToken:         http.StatusBadRequest,
		CodeInvalidAmount:        http.StatusBadRequest,
		CodeInsufficientBalance:  http.StatusBadRequest,
		CodePoolNotFound:         http.StatusNotFound,
		CodeNoLiquidity:          http.StatusServiceUnavailable,
		CodeNetworkError:         http.StatusServiceUnavailable,
		CodeTransactionBuildFail: http.StatusInternalServerError,
		CodeInternalError:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

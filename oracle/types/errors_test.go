package types_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	errorsmod "cosmossdk.io/errors"
	"github.com/stretchr/testify/require"

	"github.com/GPTx-global/bandfeed/oracle/types"
)

func TestErrorKind(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		kind      string
		retryable bool
	}{
		{"nil", nil, "", false},
		{"transport", fmt.Errorf("%w: %w", types.ErrTransport, errors.New("connection refused")), "transport", true},
		{"server error", &types.StatusError{Code: http.StatusBadGateway, Status: "502 Bad Gateway"}, "http_status", true},
		{"not found", &types.StatusError{Code: http.StatusNotFound, Status: "404 Not Found"}, "http_status", false},
		{"wrapped status", fmt.Errorf("query: %w", &types.StatusError{Code: 503}), "http_status", true},
		{"decode", errorsmod.Wrap(types.ErrDecode, "bad json"), "decode", false},
		{"binary decode", errorsmod.Wrap(types.ErrBinaryDecode, "short"), "binary_decode", false},
		{"invalid params", errorsmod.Wrap(types.ErrInvalidParams, "min count"), "invalid_params", false},
		{"foreign", errors.New("boom"), "unknown", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.kind, types.ErrorKind(tc.err))
			require.Equal(t, tc.retryable, types.IsRetryable(tc.err))
		})
	}
}

func TestStatusError(t *testing.T) {
	err := &types.StatusError{Code: http.StatusInternalServerError, Status: "500 Internal Server Error", Body: "oops"}

	require.ErrorIs(t, err, types.ErrHTTPStatus)
	require.NotErrorIs(t, err, types.ErrDecode)
	require.Contains(t, err.Error(), "500 Internal Server Error")
	require.Contains(t, err.Error(), "oops")

	var statusErr *types.StatusError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

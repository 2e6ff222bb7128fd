package types

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace shared by every bandfeed error.
const Codespace = "bandfeed"

// errors
var (
	ErrTransport     = errorsmod.Register(Codespace, 2, "transport failure")
	ErrHTTPStatus    = errorsmod.Register(Codespace, 3, "unexpected http status")
	ErrDecode        = errorsmod.Register(Codespace, 4, "malformed response body")
	ErrBinaryDecode  = errorsmod.Register(Codespace, 5, "malformed obi payload")
	ErrInvalidParams = errorsmod.Register(Codespace, 6, "invalid parameters")
)

// StatusError is returned when the gateway answers with a non-2xx status.
// It matches ErrHTTPStatus under errors.Is.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s", ErrHTTPStatus.Error(), e.Status)
	}

	return fmt.Sprintf("%s: %s (%s)", ErrHTTPStatus.Error(), e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// ErrorKind names the taxonomy kind of err, "unknown" if it has none.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrBinaryDecode):
		return "binary_decode"
	case errors.Is(err, ErrInvalidParams):
		return "invalid_params"
	default:
		return "unknown"
	}
}

// IsRetryable reports whether repeating the failed call could succeed:
// transport failures and 5xx answers. Nothing in bandfeed retries on its own.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTransport) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}

	return false
}

// wrapDecode tags a json or base64 failure as ErrDecode.
func wrapDecode(err error, what string) error {
	return errorsmod.Wrapf(ErrDecode, "%s: %v", what, err)
}

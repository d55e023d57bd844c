package agent

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/retry"
)

var (
	ErrUnauthorized    = errors.New("llm gateway rejected the credentials")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrRateLimited     = errors.New("rate limit exceeded, try again later")
	ErrPaymentRequired = errors.New("llm credits exhausted")
	ErrBadResponse     = errors.New("unusable llm response")
)

// classify maps a remote failure to the error taxonomy. Other errors are
// returned unchanged.
func classify(err error) error {
	var se *retry.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %w", ErrPaymentRequired, err)
	}
	return err
}

// StatusCode is the HTTP status to answer a failed plan with. A bad model
// answer is a server error even when it carries a validation error.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadResponse):
		return http.StatusInternalServerError
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidRequest), tradedesk.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

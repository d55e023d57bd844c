// Package retry runs remote calls with jittered exponential backoff.
//
// Only transport failures and a fixed set of HTTP statuses are retried,
// every other error is returned at once.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// StatusError is a non 2xx answer from a remote service.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http status %d", e.Service, e.Code)
	}
	return fmt.Sprintf("%s: http status %d: %s", e.Service, e.Code, e.Body)
}

// retryableStatus is the allow-list of HTTP statuses worth another attempt.
var retryableStatus = map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true}

// Retryable reports whether err is a retryable status or a transport failure.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return retryableStatus[se.Code]
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// Policy bounds the retries.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Logger       *zap.Logger
}

// DefaultPolicy makes at most three attempts.
var DefaultPolicy = Policy{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialDelay > 0 {
		b.InitialInterval = p.InitialDelay
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	b.MaxElapsedTime = 0 // the attempt cap is the only limit
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultPolicy.MaxAttempts
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Result carries either the data of a successful call or its error, in
// which case Data is the zero value.
type Result[T any] struct {
	Data T
	Err  error
}

// Do calls op until it succeeds, fails with a non retryable error, runs out
// of attempts, or ctx is done.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) Result[T] {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	attempt := 0
	data, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		log.Warn("retrying remote call",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		var zero T
		return Result[T]{Data: zero, Err: err}
	}
	return Result[T]{Data: data}
}

// Unwrap returns the data and the error, for callers that prefer the usual
// two values.
func (r Result[T]) Unwrap() (T, error) { return r.Data, r.Err }

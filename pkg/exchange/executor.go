package exchange

import (
	"context"
	"net/url"
	"time"

	"github.com/c9s/requestgen"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/c9s/exnonce/pkg/metrics"
	"github.com/c9s/exnonce/pkg/nonce"
	"github.com/c9s/exnonce/pkg/types"
)

var log = logrus.WithFields(logrus.Fields{
	"component": "exchange",
})

const DefaultMaxAttempts = 5

// ResyncController is the slice of the resync controller the executor
// drives: flagging a key after an invalid nonce rejection and clearing it
// after the next success.
type ResyncController interface {
	MarkInvalidNonce(key types.NonceKey)
	Clear(key types.NonceKey)
}

var _ ResyncController = (*nonce.ResyncController)(nil)

// NewCallBackOff is the default retry schedule for rate-limited and server
// errors. The randomization factor keeps concurrent clients from hammering
// in lockstep.
func NewCallBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0
	return bo
}

// Executor runs signed calls through a session with a fresh nonce per
// attempt and drives the retry policy from the classified outcome:
//
//   - invalid nonce: flag the key for resync, retry immediately, the next
//     nonce carries the recovery margin
//   - rate limited, server or network error: retry after backoff
//   - anything else the exchange rejected: fail immediately
//
// A nonce value never outlives its attempt.
type Executor struct {
	generator *nonce.Generator
	resync    ResyncController

	MaxAttempts int
	NewBackOff  func() backoff.BackOff
}

func NewExecutor(gen *nonce.Generator, rc ResyncController) *Executor {
	return &Executor{
		generator:   gen,
		resync:      rc,
		MaxAttempts: DefaultMaxAttempts,
		NewBackOff:  NewCallBackOff,
	}
}

// Do executes one logical call against a private endpoint. The returned
// response is the last one received, also on error, so callers can inspect
// the final body.
func (e *Executor) Do(ctx context.Context, sess *Session, refURL string, params url.Values) (*requestgen.Response, error) {
	startTime := time.Now()
	defer func() {
		metrics.ExchangeCallDurationMetrics.With(prometheus.Labels{
			"exchange": sess.Exchange.String(),
		}).Observe(time.Since(startTime).Seconds())
	}()

	maxAttempts := e.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	bo := e.NewBackOff()

	for attempt := 1; ; attempt++ {
		if sess.Limiter != nil {
			if err := sess.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		nonceValue, err := e.generator.Next(ctx, sess.NonceKey)
		if err != nil {
			return nil, err
		}

		req, err := sess.Client.NewSignedRequest(ctx, refURL, params, nonceValue)
		if err != nil {
			return nil, errors.Wrapf(err, "can not build signed request for %s %s", sess.Exchange, refURL)
		}

		resp, sendErr := sess.Client.SendRequest(req)
		kind := sess.Classify(resp, sendErr)

		switch kind {
		case types.FailureNone:
			e.resync.Clear(sess.NonceKey)
			return resp, nil

		case types.FailureInvalidNonce:
			e.resync.MarkInvalidNonce(sess.NonceKey)
			log.Warnf("exchange %s rejected nonce %d on %s, resyncing", sess.Exchange, nonceValue, refURL)

		case types.FailureRateLimited, types.FailureServerError, types.FailureNetwork:
			// retryable below

		default:
			return resp, e.fail(sess, kind, attempt, resp, sendErr)
		}

		if attempt >= maxAttempts {
			return resp, e.fail(sess, kind, attempt, resp, sendErr)
		}

		metrics.ExchangeCallRetryMetrics.With(prometheus.Labels{
			"exchange": sess.Exchange.String(),
			"kind":     kind.String(),
		}).Inc()

		// invalid nonce is retried without delay: waiting does not help,
		// only the recovery margin does
		if kind != types.FailureInvalidNonce {
			delay := bo.NextBackOff()
			if delay == backoff.Stop {
				return resp, e.fail(sess, kind, attempt, resp, sendErr)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
}

func (e *Executor) fail(sess *Session, kind types.FailureKind, attempts int, resp *requestgen.Response, err error) error {
	if err == nil && resp != nil {
		err = errors.New(string(resp.Body))
	}

	metrics.ExchangeCallErrorMetrics.With(prometheus.Labels{
		"exchange": sess.Exchange.String(),
		"kind":     kind.String(),
	}).Inc()

	return &CallError{
		Exchange: sess.Exchange,
		Kind:     kind,
		Attempts: attempts,
		Err:      err,
	}
}

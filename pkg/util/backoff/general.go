package backoff

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryQuick is for short bootstrap operations like the initial clock sync,
// where waiting minutes between attempts would stall startup.
func RetryQuick(ctx context.Context, op backoff.Operation) (err error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 3 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	err = backoff.Retry(op, backoff.WithContext(bo, ctx))
	return err
}

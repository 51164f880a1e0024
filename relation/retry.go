package relation

import (
	"context"
	"errors"
	"time"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/utils/metrics"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds the retries of one side of an association.
type RetryPolicy struct {
	// MaxAttempts counts the first try.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// AttemptTimeout caps a single store call. A timed out call is retried
	// like any other transient failure. Zero disables the cap.
	AttemptTimeout time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     4,
	InitialInterval: 20 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
	AttemptTimeout:  2 * time.Second,
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	return b
}

// IsTransient reports whether retrying the same store call may succeed.
func IsTransient(err error) bool {
	return model.IsConcurrentUpdate(err) || model.IsStoreUnavailable(err)
}

// Retry runs op until it succeeds, fails permanently or the policy is
// exhausted. The last error is returned as is.
func Retry(ctx context.Context, policy RetryPolicy, rel model.RelationKind, side model.Side, op func(ctx context.Context) error) error {
	attempt := func() (struct{}, error) {
		actx := ctx
		if policy.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
			defer cancel()
		}
		err := op(actx)
		if err == nil {
			return struct{}{}, nil
		}
		// A call cut by its own timeout is transient, one cut by the caller
		// is not.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !model.IsStoreUnavailable(err) {
			err = &model.StoreUnavailableError{Op: string(side) + " write", Err: err}
		}
		if IsTransient(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(policy.newBackOff()),
		backoff.WithMaxTries(uint(maxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.RelationRetries.WithLabelValues(string(rel), string(side)).Inc()
			Log.WithFields(logrus.Fields{
				"relation": rel,
				"side":     side,
				"next":     next,
			}).WithError(err).Debug("retrying association write")
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}

package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yeisme/exceleasy/pkg/errs"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/metrics"
)

const (
	defaultRetryDelay = 100 * time.Millisecond
	// storeAttempts 首次调用加一次重试.
	storeAttempts = 2
)

// withRetry 存储调用在服务边界最多重试一次，只有 KindStore 会重试.
func withRetry[T any](ctx context.Context, s *FileService, op string, fn func() (T, error)) (T, error) {
	operation := func() (T, error) {
		v, err := fn()
		if err != nil && !errs.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}

		return v, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.retryDelay)),
		backoff.WithMaxTries(storeAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.StoreRetries.WithLabelValues(op).Inc()
			nlog.Ctx(ctx).Warn().Err(err).Str("op", op).Dur("backoff", next).Msg("retrying store operation")
		}),
	)
}

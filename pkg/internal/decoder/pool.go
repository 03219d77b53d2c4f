package decoder

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/metrics"
	"github.com/yeisme/exceleasy/pkg/tracing"
)

// Pool 限制并发解析数量的解码器.
type Pool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	decode  func([]byte, types.Format) (*types.Table, error)
}

// NewPool 按 ingest.max_concurrent_decodes 创建解析池.
func NewPool(cfg configs.IngestConfig) *Pool {
	n := cfg.MaxConcurrentDecodes
	if n <= 0 {
		n = configs.DefaultMaxConcurrentDecodes
	}

	return &Pool{
		sem:     semaphore.NewWeighted(n),
		timeout: cfg.DecodeTimeout,
		decode:  Decode,
	}
}

// Decode 在池中解析 blob.ctx 取消或超时后立即返回，进行中的结果被丢弃，
// 但槽位要等解析真正结束才释放.
func (p *Pool) Decode(ctx context.Context, blob *types.Blob) (*types.Table, error) {
	ctx, span := tracing.StartSpan(ctx, "decoder.decode")
	defer span.End()

	if p.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	type result struct {
		table *types.Table
		err   error
	}

	done := make(chan result, 1)

	go func() {
		defer p.sem.Release(1)

		metrics.DecodeInFlight.Inc()
		defer metrics.DecodeInFlight.Dec()

		start := time.Now()
		t, err := p.decode(blob.Data, blob.Format)
		metrics.DecodeDuration.WithLabelValues(string(blob.Format)).Observe(time.Since(start).Seconds())

		done <- result{table: t, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			span.RecordError(r.err)
			return nil, r.err
		}

		metrics.RowsDecoded.Add(float64(len(r.table.Rows)))

		return r.table, nil
	}
}

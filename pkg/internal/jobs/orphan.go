package jobs

import (
	"context"
	"time"

	"github.com/yeisme/exceleasy/pkg/internal/storage/s3"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	nlog "github.com/yeisme/exceleasy/pkg/log"
)

// sweepBatch 每次查询引用关系的键数量.
const sweepBatch = 500

// BlobLister 可列举与删除的对象存储.
type BlobLister interface {
	ListBlobs(ctx context.Context, prefix string) ([]s3.BlobInfo, error)
	RemoveBlob(ctx context.Context, key string) error
}

// OrphanSweeper 删除没有 FileRecord 引用的原始文件.
// 入库失败后残留的对象会在宽限期过后被清理；宽限期内的对象可能仍在入库途中.
type OrphanSweeper struct {
	blobs  BlobLister
	files  store.FileStore
	prefix string
	grace  time.Duration
	now    func() time.Time
}

// NewOrphanSweeper 创建清理器.
func NewOrphanSweeper(blobs BlobLister, files store.FileStore, prefix string, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{
		blobs:  blobs,
		files:  files,
		prefix: prefix,
		grace:  grace,
		now:    time.Now,
	}
}

// Run 执行一次清理，返回删除的对象数.
func (o *OrphanSweeper) Run(ctx context.Context) (int, error) {
	l := nlog.Ctx(ctx).With().Str("job", JobOrphanSweep).Logger()

	list, err := o.blobs.ListBlobs(ctx, o.prefix)
	if err != nil {
		return 0, err
	}

	cutoff := o.now().Add(-o.grace)

	var candidates []string

	for _, b := range list {
		if b.LastModified.Before(cutoff) {
			candidates = append(candidates, b.Key)
		}
	}

	removed := 0

	for start := 0; start < len(candidates); start += sweepBatch {
		batch := candidates[start:min(start+sweepBatch, len(candidates))]

		referenced, err := o.files.ReferencedBlobKeys(ctx, batch)
		if err != nil {
			return removed, err
		}

		for _, key := range batch {
			if referenced[key] {
				continue
			}

			if err := o.blobs.RemoveBlob(ctx, key); err != nil {
				l.Warn().Err(err).Str("key", key).Msg("remove orphan blob")
				continue
			}

			removed++
		}
	}

	l.Info().Int("scanned", len(list)).Int("removed", removed).Msg("orphan sweep finished")

	return removed, nil
}

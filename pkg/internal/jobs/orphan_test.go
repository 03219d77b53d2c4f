package jobs

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/storage/s3"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/scheduler"
)

type fakeBlobs struct {
	objs    []s3.BlobInfo
	removed []string
	failKey string
}

func (f *fakeBlobs) ListBlobs(context.Context, string) ([]s3.BlobInfo, error) {
	return f.objs, nil
}

func (f *fakeBlobs) RemoveBlob(_ context.Context, key string) error {
	if key == f.failKey {
		return errors.New("denied")
	}

	f.removed = append(f.removed, key)

	return nil
}

type fakeFiles struct {
	store.FileStore

	keep map[string]bool
}

func (f *fakeFiles) ReferencedBlobKeys(_ context.Context, keys []string) (map[string]bool, error) {
	out := map[string]bool{}

	for _, k := range keys {
		if f.keep[k] {
			out[k] = true
		}
	}

	return out, nil
}

func TestOrphanSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	blobs := &fakeBlobs{
		objs: []s3.BlobInfo{
			{Key: "uploads/a.xlsx", LastModified: old},
			{Key: "uploads/b.xlsx", LastModified: old},
			{Key: "uploads/c.xls", LastModified: old},
			{Key: "uploads/fresh.xlsx", LastModified: now.Add(-time.Minute)},
			{Key: "uploads/locked.xlsx", LastModified: old},
		},
		failKey: "uploads/locked.xlsx",
	}
	files := &fakeFiles{keep: map[string]bool{"uploads/b.xlsx": true}}

	sw := NewOrphanSweeper(blobs, files, "uploads/", time.Hour)
	sw.now = func() time.Time { return now }

	removed, err := sw.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	sort.Strings(blobs.removed)
	assert.Equal(t, []string{"uploads/a.xlsx", "uploads/c.xls"}, blobs.removed)
}

func TestRegisterCronJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sched.Shutdown() })

	sw := NewOrphanSweeper(&fakeBlobs{}, &fakeFiles{}, "uploads/", time.Hour)

	require.NoError(t, RegisterCronJobs(sched, configs.JobsConfig{Enabled: false, OrphanSweepCron: "17 * * * *"}, sw))
	assert.Empty(t, sched.GetJobInfos())

	require.NoError(t, RegisterCronJobs(sched, configs.JobsConfig{Enabled: true, OrphanSweepCron: "17 * * * *"}, sw))

	info, err := sched.GetJobInfoByName(JobOrphanSweep)
	require.NoError(t, err)
	assert.Equal(t, "17 * * * *", info.CronExpr)

	assert.Error(t, RegisterCronJobs(nil, configs.JobsConfig{Enabled: true}, sw))
}

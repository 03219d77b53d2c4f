package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/scheduler"
)

func waitStatus(t *testing.T, s *scheduler.Scheduler, name string, want scheduler.JobStatus) scheduler.JobInfo {
	t.Helper()

	var info scheduler.JobInfo

	require.Eventually(t, func() bool {
		var err error

		info, err = s.GetJobInfoByName(name)

		return err == nil && info.Status == want && !info.LastRun.IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	return info
}

func TestRunNowRecordsOutcome(t *testing.T) {
	s, err := scheduler.NewScheduler()
	require.NoError(t, err)

	defer func() { _ = s.Shutdown() }()

	ran := make(chan struct{}, 1)

	require.NoError(t, s.AddCron("ok", "0 3 * * *", func(context.Context) error {
		ran <- struct{}{}
		return nil
	}))
	require.NoError(t, s.AddCron("bad", "0 4 * * *", func(context.Context) error {
		return errors.New("bucket unreachable")
	}))
	require.NoError(t, s.AddCron("panics", "0 5 * * *", func(context.Context) error {
		panic("boom")
	}))

	require.Error(t, s.AddCron("ok", "* * * * *", func(context.Context) error { return nil }))

	s.Start()

	require.NoError(t, s.RunNow("ok"))
	require.NoError(t, s.RunNow("bad"))
	require.NoError(t, s.RunNow("panics"))

	<-ran

	ok := waitStatus(t, s, "ok", scheduler.StatusScheduled)
	assert.False(t, ok.LastSuccess.IsZero())

	bad := waitStatus(t, s, "bad", scheduler.StatusError)
	assert.Equal(t, "bucket unreachable", bad.Error)

	p := waitStatus(t, s, "panics", scheduler.StatusError)
	assert.Contains(t, p.Error, "panic")

	infos := s.GetJobInfos()
	require.Len(t, infos, 3)
	assert.Equal(t, "bad", infos[0].Name)

	require.NoError(t, s.RemoveJobByName("bad"))
	assert.Error(t, s.RunNow("bad"))
}

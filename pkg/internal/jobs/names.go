package jobs

// 任务名称常量.
const (
	JobOrphanSweep = "blob.orphan_sweep"
)

package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/middleware"
)

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary		定时任务列表
//	@Tags			管理
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		403	{object}	errs.Body
//	@Router			/api/admin/jobs [get]
func SchedulerJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusOK, gin.H{"jobs": []any{}, "waiting": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos(), "waiting": sched.JobsWaitingInQueue()})
}

// SchedulerRunJob 立即运行指定任务.
//
//	@Summary		立即运行任务
//	@Tags			管理
//	@Produce		json
//	@Param			name	path		string	true	"任务名"
//	@Success		202		{object}	map[string]string
//	@Failure		404		{object}	errs.Body
//	@Router			/api/admin/jobs/{name}/run [post]
func SchedulerRunJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	name := c.Param("name")

	if sched == nil {
		fail(c, errs.NotFound("job %s not found", name))
		return
	}

	if _, err := sched.GetJobInfoByName(name); err != nil {
		fail(c, errs.NotFound("job %s not found", name))
		return
	}

	if err := sched.RunNow(name); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job started", "name": name})
}

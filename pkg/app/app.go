// Package app 提供应用程序的初始化和配置功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/exceleasy/pkg/cache"
	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/activity"
	"github.com/yeisme/exceleasy/pkg/internal/blob"
	"github.com/yeisme/exceleasy/pkg/internal/decoder"
	"github.com/yeisme/exceleasy/pkg/internal/handle"
	"github.com/yeisme/exceleasy/pkg/internal/jobs"
	"github.com/yeisme/exceleasy/pkg/internal/router"
	"github.com/yeisme/exceleasy/pkg/internal/service"
	"github.com/yeisme/exceleasy/pkg/internal/storage"
	"github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/metrics"
	"github.com/yeisme/exceleasy/pkg/middleware"
	"github.com/yeisme/exceleasy/pkg/queue"
	"github.com/yeisme/exceleasy/pkg/scheduler"
	"github.com/yeisme/exceleasy/pkg/tracing"
)

// idempotencyNamespace 幂等键在 KV 中的命名空间.
const idempotencyNamespace = "idem"

// shutdownTimeout 优雅退出的最长等待时间.
const shutdownTimeout = 15 * time.Second

// App 组装好的服务.
type App struct {
	Engine *gin.Engine

	config     *configs.AppConfig
	manager    *storage.Manager
	sched      *scheduler.Scheduler
	metricsSrv *http.Server
}

// NewApp 读取配置并按顺序初始化：日志 → 追踪 → 指标 → 存储 → 业务服务 → 路由.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	config := configs.GetConfig()

	log.Init()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &App{config: config, manager: manager}

	if err := a.build(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	return a, nil
}

// build 迁移存储并组装服务、定时任务与路由.
func (a *App) build(ctx context.Context) error {
	config := a.config
	l := log.Logger()

	st := a.manager.Store()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	deps := service.Deps{
		Files:     st,
		Users:     st,
		Activity:  activity.New(st),
		Validator: blob.NewValidator(config.Ingest),
		Decoder:   decoder.NewPool(config.Ingest),
		Ingest:    config.Ingest,
	}

	if kvc := a.manager.GetKVClient(); kvc != nil {
		deps.Idempotency = cache.New(kvc, idempotencyNamespace)
	}

	s3c := a.manager.GetS3Client()
	if s3c != nil && config.Ingest.KeepBlob {
		deps.Blobs = s3c
		deps.BlobPrefix = s3c.Prefix()
	}

	var pub message.Publisher
	if mqc := a.manager.GetMQClient(); mqc != nil {
		pub = mqc.Publisher()
	}

	events := queue.NewPublisher(pub, config.Events)
	deps.Events = events

	configs.OnReload(func(next *configs.AppConfig) {
		events.UpdateConfig(next.Events)
	})

	svc := service.NewFileService(deps)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	a.sched = sched

	if s3c != nil {
		sweeper := jobs.NewOrphanSweeper(s3c, st, s3c.Prefix(), config.Jobs.OrphanGrace)
		if err := jobs.RegisterCronJobs(sched, config.Jobs, sweeper); err != nil {
			return fmt.Errorf("register jobs: %w", err)
		}
	}

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(a.manager),
		middleware.SchedulerMiddleware(sched),
	)

	router.Register(engine, router.Options{
		Handler:        handle.New(svc),
		Auth:           config.Auth,
		Users:          st,
		MaxUploadBytes: svc.MaxUploadBytes(),
		Server:         config.Server,
	})
	metrics.RegisterRoutes(config.Metrics, engine, config.Server.Debug)

	a.Engine = engine

	return nil
}

// Run 启动调度器与 HTTP 服务，ctx 结束后优雅退出并释放全部资源.
func (a *App) Run(ctx context.Context) error {
	l := log.Logger()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.config.Server.GetTimeoutDuration(),
	}

	a.sched.Start()
	a.metricsSrv = metrics.StartMetricsServer(a.config.Metrics)

	errCh := make(chan error, 1)

	go func() {
		l.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var runErr error

	select {
	case <-ctx.Done():
		l.Info().Msg("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("http server shutdown")
	}

	return errors.Join(runErr, a.Close(shutdownCtx))
}

// Close 停止调度器并关闭存储、指标端口与追踪.
func (a *App) Close(ctx context.Context) error {
	var errsList []error

	if a.sched != nil {
		errsList = append(errsList, a.sched.Shutdown())
	}

	if a.metricsSrv != nil {
		errsList = append(errsList, a.metricsSrv.Shutdown(ctx))
	}

	errsList = append(errsList, a.manager.Close(ctx), tracing.ShutdownTracer(ctx))

	return errors.Join(errsList...)
}

package batch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"roulette/internal/biz/chart"
	"roulette/internal/biz/metrics"
	"roulette/internal/biz/wheel"
	"roulette/internal/notify"
	"roulette/pkg/xgo"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStep      = time.Second / 60
	DefaultSpinLimit = 2 * time.Minute
	reportInterval   = 5 * time.Second
	finalizeTimeout  = 2 * time.Minute
)

// 依赖函数定义
type (
	SaveReportFunc  func(ctx context.Context, r *Report) error
	UploadBytesFunc func(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
)

// ExecDeps 执行依赖，均可为空
type ExecDeps struct {
	SaveReport    SaveReportFunc
	UploadBytes   UploadBytesFunc
	Chart         chart.IGenerator
	Notify        notify.Notifier
	Tuning        wheel.Tuning
	Step          time.Duration // 固定步长
	SpinLimit     time.Duration // 单局模拟时长上限
	GenerateLocal bool
	UploadToS3    bool
	OnComplete    func()
}

// Execute 阻塞运行直到完成或取消
func (b *Batch) Execute(deps *ExecDeps) {
	if b.ctx.Err() != nil {
		// 排队期间被 Stop
		b.CompareAndSetStatus(StatusPending, StatusCancelled)
	}
	if !b.CompareAndSetStatus(StatusPending, StatusRunning) {
		b.log.Warnf("batch status %s, skip execution", b.Status())
		b.finish(deps)
		return
	}
	b.setStartedAt()

	cfg := b.Config()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		b.fail(fmt.Errorf("create ants pool: %w", err))
		b.finish(deps)
		return
	}
	defer pool.Release()

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	var bg sync.WaitGroup
	bg.Add(2)
	go func() {
		defer bg.Done()
		b.stats.Monitor(monitorCtx, b.log.Infof)
	}()
	go func() {
		defer bg.Done()
		b.reportMetrics(monitorCtx)
	}()

	b.runWorkers(pool, workers, cfg, deps)

	stopMonitor()
	bg.Wait()

	if b.ctx.Err() != nil || !b.CompareAndSetStatus(StatusRunning, StatusCompleted) {
		// Stop 不改状态，运行中被停止的批量按取消处理
		b.CompareAndSetStatus(StatusRunning, StatusCancelled)
		b.log.Infof("batch stopped early, status=%s", b.Status())
		b.setReport(BuildReport(b.stats.Snapshot()))
		b.finish(deps)
		return
	}
	b.complete(deps)
	b.finish(deps)
}

// runWorkers 每个 worker 独占一个引擎和随机源，按原子计数领取局数
func (b *Batch) runWorkers(pool *ants.Pool, workers int, cfg Config, deps *ExecDeps) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	step := deps.Step
	if step <= 0 {
		step = DefaultStep
	}
	limit := deps.SpinLimit
	if limit <= 0 {
		limit = DefaultSpinLimit
	}

	var wg sync.WaitGroup
	submitErr := 0
	for w := 0; w < workers; w++ {
		rng := rand.New(rand.NewPCG(seed, uint64(w)))
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			defer xgo.RecoverFromError(func(e any) { b.stats.AddFailed() })
			b.simulate(rng, cfg.Physics, deps.Tuning, step, limit)
		}); err != nil {
			wg.Done()
			submitErr++
		}
	}
	if submitErr > 0 {
		b.log.Warnf("failed to submit %d workers to ants pool", submitErr)
	}
	wg.Wait()
}

func (b *Batch) simulate(rng wheel.Rand, physics wheel.PhysicsConfig, tuning wheel.Tuning, step, limit time.Duration) {
	engine, _ := wheel.NewEngine(physics, wheel.WithRand(rng), wheel.WithTuning(tuning))
	for b.ctx.Err() == nil && b.stats.claim() {
		o, err := engine.Simulate(step, limit)
		if err != nil {
			b.stats.AddFailed()
			// 超时的引擎状态不可复用
			engine, _ = wheel.NewEngine(physics, wheel.WithRand(rng), wheel.WithTuning(tuning))
			continue
		}
		b.stats.Add(o)
	}
}

// reportMetrics 周期上报 Prometheus，退出前再报一次
func (b *Batch) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.reportOnce()
			return
		case <-ticker.C:
			b.reportOnce()
		}
	}
}

func (b *Batch) reportOnce() {
	snap := b.stats.Snapshot()
	metrics.ReportBatch(metrics.BatchSample{
		ID:            snap.ID,
		ProgressPct:   snap.ProgressPct(),
		SpinsPerSec:   snap.SpinsPerSec(),
		ChiSquare:     ChiSquare(snap.Counts[:]),
		MeanElapsed:   snap.MeanElapsed(),
		DeflectorHits: snap.DeflectorHits,
		Failed:        snap.Failed,
	})
}

// complete 已置为完成后生成图表、落库、通知
func (b *Batch) complete(deps *ExecDeps) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	report := BuildReport(b.stats.Snapshot())
	b.uploadChart(ctx, deps, report)
	b.setReport(report)

	g, gctx := errgroup.WithContext(ctx)
	if deps.SaveReport != nil {
		g.Go(func() error {
			if err := deps.SaveReport(gctx, report); err != nil {
				return fmt.Errorf("save report: %w", err)
			}
			return nil
		})
	}
	if deps.Notify != nil {
		g.Go(func() error {
			if err := deps.Notify.Send(gctx, BuildMessage(report)); err != nil {
				b.log.Warnf("notify batch completion: %v", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.log.Errorf("%v", err)
	}
	b.log.Infof("batch completed: spins=%d chi2=%.2f uniform=%v wall=%s",
		report.Completed, report.ChiSquare, report.Uniform, xgo.ShortDuration(report.WallTime))
}

// uploadChart 生成频率图，按配置保存本地或上传 S3
func (b *Batch) uploadChart(ctx context.Context, deps *ExecDeps, report *Report) {
	if deps.Chart == nil || (!deps.GenerateLocal && !deps.UploadToS3) || report.Completed == 0 {
		return
	}
	subtitle := fmt.Sprintf("%d spins, chi2=%.2f", report.Completed, report.ChiSquare)
	result, err := deps.Chart.Generate(report.Bars(), report.Expected(), report.BatchID, subtitle, deps.GenerateLocal)
	if err != nil {
		b.log.Errorf("failed to generate chart: %v", err)
		return
	}
	if !deps.UploadToS3 || deps.UploadBytes == nil {
		return
	}
	key := "charts/roulette/" + report.BatchID + ".html"
	url, err := deps.UploadBytes(ctx, "", key, "text/html; charset=utf-8", []byte(result.HTMLContent))
	if err != nil {
		b.log.Errorf("failed to upload chart to S3: %v", err)
		return
	}
	b.setChartURL(url)
	report.ChartURL = url
}

func (b *Batch) finish(deps *ExecDeps) {
	b.cancel()
	if deps != nil && deps.OnComplete != nil {
		deps.OnComplete()
	}
	b.doneOnce.Do(func() { close(b.done) })
}

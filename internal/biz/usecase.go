package biz

import (
	"context"
	"time"

	"roulette/internal/biz/batch"
	"roulette/internal/biz/chart"
	"roulette/internal/biz/history"
	"roulette/internal/biz/metrics"
	"roulette/internal/biz/spin"
	"roulette/internal/biz/wheel"
	"roulette/internal/conf"
	"roulette/internal/notify"
	"roulette/pkg/xgo"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/google/wire"
	"golang.org/x/sync/semaphore"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewUseCase)

const (
	historyLoadTimeout   = 5 * time.Second
	defaultMaxConcurrent = 2
	defaultMaxSpins      = 10_000_000
	defaultRetention     = 24 * time.Hour
	defaultCleanupPeriod = 10 * time.Minute
)

// DataRepo 数据层接口：批次号、报告落库、图表上传
type DataRepo interface {
	NextBatchID(ctx context.Context) string
	SaveReport(ctx context.Context, r *batch.Report) error
	LoadReport(ctx context.Context, batchID string) (*batch.Report, error)
	DeleteReport(ctx context.Context, batchID string) error
	UploadBytes(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

// UseCase 编排层：实时转盘（Loop + AutoSpin + History）与批量模拟
type UseCase struct {
	ctx    context.Context
	cancel context.CancelFunc

	repo DataRepo
	log  *log.Helper
	c    *conf.Roulette

	loop    *spin.Loop
	auto    *spin.AutoSpin
	history *history.Log

	tuning  wheel.Tuning
	batches *batch.Pool
	sem     *semaphore.Weighted

	notify notify.Notifier
	chart  chart.IGenerator
}

// NewUseCase 创建 UseCase 并启动帧循环
func NewUseCase(repo DataRepo, store history.Store, c *conf.Roulette, logger log.Logger, nt notify.Notifier, cg chart.IGenerator) (*UseCase, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	l := log.NewHelper(log.With(logger, "module", "biz"))

	tuning := TuningFromConf(c.GetTuning())
	engine, fallbacks := wheel.NewEngine(PhysicsFromConf(c.GetPhysics()), wheel.WithTuning(tuning), wheel.WithIDGenerator(uuid.NewString))
	if len(fallbacks) > 0 {
		l.Warnf("invalid physics config, fields fell back to defaults: %v", fallbacks)
	}

	uc := &UseCase{
		ctx:     ctx,
		cancel:  cancel,
		repo:    repo,
		log:     l,
		c:       c,
		tuning:  tuning,
		batches: batch.NewPool(),
		sem:     semaphore.NewWeighted(int64(maxConcurrent(c))),
		notify:  nt,
		chart:   cg,
	}
	uc.history = history.NewLog(store, int(c.GetHistory().GetCapacity()), logger)
	loadCtx, loadCancel := context.WithTimeout(ctx, historyLoadTimeout)
	uc.history.Load(loadCtx)
	loadCancel()
	uc.history.StartWriter(ctx)

	var loopOpts []spin.LoopOption
	if fr := c.GetFrameRate(); fr > 0 {
		loopOpts = append(loopOpts, spin.WithFrameInterval(time.Second/time.Duration(fr)))
	}
	loopOpts = append(loopOpts, spin.WithFrameHook(func(s spin.Snapshot) { metrics.ObserveFrame(s.State) }))
	uc.loop = spin.NewLoop(engine, logger, loopOpts...)

	uc.auto = spin.NewAutoSpin(uc.autoStart, c.GetAutoSpin().GetDelay().AsDurationOr(spin.DefaultAutoSpinDelay), nil)
	uc.auto.SetEnabled(c.GetAutoSpin().GetEnabled())

	// 回调在 loop goroutine 内同步执行
	engine.OnSpinComplete(uc.onSpinComplete)
	engine.OnImpact(metrics.ObserveImpact)

	uc.loop.Start(ctx)
	go uc.batches.StartAutoCleanup(ctx, logger,
		c.GetBatch().GetRetention().AsDurationOr(defaultRetention),
		c.GetBatch().GetCleanupInterval().AsDurationOr(defaultCleanupPeriod),
		metrics.DeleteBatch)

	l.Infof("roulette started: history=%d/%d autospin=%v", uc.history.Len(), uc.history.Capacity(), uc.auto.Enabled())

	cleanup := func() {
		uc.auto.Close()
		uc.loop.Stop()
		uc.history.Close()
		for _, b := range uc.batches.List() {
			b.Stop()
		}
		uc.cancel()
	}
	return uc, cleanup, nil
}

// PhysicsFromConf 未配置时取默认值
func PhysicsFromConf(p *conf.Roulette_Physics) wheel.PhysicsConfig {
	if p == nil {
		return wheel.DefaultConfig()
	}
	return wheel.PhysicsConfig{
		WheelRPM:        p.WheelRpm,
		BallRPM:         p.BallRpm,
		Restitution:     p.Restitution,
		ScatterVariance: p.ScatterVariance,
		TiltAngle:       p.TiltAngle,
		Duration:        p.Duration,
	}
}

// TuningFromConf 零值字段取默认
func TuningFromConf(t *conf.Roulette_Tuning) wheel.Tuning {
	out := wheel.DefaultTuning()
	if t == nil {
		return out
	}
	if t.BounceProbability > 0 {
		out.BounceProbability = t.BounceProbability
	}
	if t.DropBaseThreshold > 0 {
		out.DropBaseThreshold = t.DropBaseThreshold
	}
	if t.TiltSensitivity > 0 {
		out.TiltSensitivity = t.TiltSensitivity
	}
	if t.KickScale > 0 {
		out.KickScale = t.KickScale
	}
	if t.RadialKickScale > 0 {
		out.RadialKickScale = t.RadialKickScale
	}
	if t.MaxDeflectorHits > 0 {
		out.MaxDeflectorHits = int(t.MaxDeflectorHits)
	}
	return out.WithDefaults()
}

func maxConcurrent(c *conf.Roulette) int32 {
	if n := c.GetBatch().GetMaxConcurrent(); n > 0 {
		return n
	}
	return defaultMaxConcurrent
}

// StartSpin 已有一局进行中时返回 false
func (uc *UseCase) StartSpin(ctx context.Context) (bool, error) {
	var started bool
	err := uc.loop.Do(ctx, func(e *wheel.Engine) {
		started = e.StartSpin()
	})
	if err != nil {
		return false, err
	}
	if started {
		metrics.SpinStarted()
	}
	return started, nil
}

// autoStart 由自动连转定时器调用；valid 在 loop 内检查，关闭后不会再开局
func (uc *UseCase) autoStart(valid func() bool) {
	var started, skipped bool
	err := uc.loop.Do(uc.ctx, func(e *wheel.Engine) {
		if !valid() {
			skipped = true
			return
		}
		started = e.StartSpin()
	})
	switch {
	case err != nil:
		uc.log.Warnf("auto spin: %v", err)
	case skipped:
		uc.log.Debug("auto spin skipped, disabled after schedule")
	case !started:
		uc.log.Debug("auto spin skipped, spin already active")
	default:
		metrics.SpinStarted()
	}
}

// onSpinComplete 记录指标与历史，并交给自动连转
func (uc *UseCase) onSpinComplete(o wheel.Outcome) {
	metrics.ObserveOutcome(o)
	uc.history.Enqueue(o)
	uc.auto.OnOutcome(o)
	uc.log.Infof("spin resolved: number=%d color=%s elapsed=%.2fs hits=%d", o.Number, o.Color, o.Elapsed, o.DeflectorHits)
}

// SetConfig 立即生效，进行中的一局从下一帧起使用新参数；返回回退默认值的字段
func (uc *UseCase) SetConfig(ctx context.Context, cfg wheel.PhysicsConfig) (wheel.PhysicsConfig, []string, error) {
	var (
		applied   wheel.PhysicsConfig
		fallbacks []string
	)
	err := uc.loop.Do(ctx, func(e *wheel.Engine) {
		fallbacks = e.SetConfig(cfg)
		applied = e.Config()
	})
	if err != nil {
		return wheel.PhysicsConfig{}, nil, err
	}
	if len(fallbacks) > 0 {
		uc.log.Warnf("physics config fields fell back to defaults: %v", fallbacks)
	}
	uc.log.Infof("physics config applied: %s", xgo.ToJSON(applied))
	return applied, fallbacks, nil
}

// Config 当前物理参数
func (uc *UseCase) Config() wheel.PhysicsConfig {
	return uc.loop.Snapshot().Config
}

// Nudge 空闲时手动对齐轮盘/小球角度
func (uc *UseCase) Nudge(ctx context.Context, wheelDelta, ballDelta float64) (bool, error) {
	var applied bool
	err := uc.loop.Do(ctx, func(e *wheel.Engine) {
		applied = e.Nudge(wheelDelta, ballDelta)
	})
	return applied, err
}

// SetAutoSpin 开关自动连转；开启本身不会开局
func (uc *UseCase) SetAutoSpin(enabled bool) {
	uc.auto.SetEnabled(enabled)
	uc.log.Infof("auto spin enabled=%v", enabled)
}

func (uc *UseCase) AutoSpin() (enabled, pending bool) {
	return uc.auto.Enabled(), uc.auto.Pending()
}

// Snapshot 最近一帧
func (uc *UseCase) Snapshot() spin.Snapshot {
	return uc.loop.Snapshot()
}

// History 结果历史副本
func (uc *UseCase) History(order history.Order) []wheel.Outcome {
	return uc.history.List(order)
}

func (uc *UseCase) HistoryCapacity() int {
	return uc.history.Capacity()
}

// ClearHistory 清空内存与持久化历史
func (uc *UseCase) ClearHistory(ctx context.Context) error {
	return uc.history.Clear(ctx)
}

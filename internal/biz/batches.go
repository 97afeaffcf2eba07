package biz

import (
	"context"

	v1 "roulette/api/roulette/v1"
	"roulette/internal/biz/batch"
	"roulette/internal/biz/metrics"
	"roulette/internal/biz/wheel"
	"roulette/pkg/xgo"
)

// CreateBatch 创建批量模拟并排队，超过并发上限时等待空位；未指定物理参数时沿用当前配置
func (uc *UseCase) CreateBatch(ctx context.Context, cfg batch.Config) (*batch.Batch, error) {
	maxSpins := uc.c.GetBatch().GetMaxSpins()
	if maxSpins <= 0 {
		maxSpins = defaultMaxSpins
	}
	if cfg.Spins <= 0 || cfg.Spins > maxSpins {
		return nil, v1.ErrorBatchLimit("spins must be in [1, %d], got %d", maxSpins, cfg.Spins)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = int(uc.c.GetBatch().GetWorkers())
	}
	if cfg.Physics == (wheel.PhysicsConfig{}) {
		cfg.Physics = uc.Config()
	}
	physics, fallbacks := cfg.Physics.Sanitize()
	if len(fallbacks) > 0 {
		uc.log.Warnf("batch physics fields fell back to defaults: %v", fallbacks)
	}
	cfg.Physics = physics

	id := uc.repo.NextBatchID(ctx)
	b := batch.NewBatch(uc.ctx, id, cfg, uc.log.Logger())
	uc.batches.Add(b)
	xgo.Go(func() { uc.runBatch(b) })

	uc.log.Infof("batch created: id=%s config=%s", id, xgo.ToJSON(cfg))
	return b, nil
}

// runBatch 占用一个并发名额后执行；排队期间被取消则直接结束
func (uc *UseCase) runBatch(b *batch.Batch) {
	acquired := uc.sem.Acquire(b.Context(), 1) == nil
	if acquired {
		defer uc.sem.Release(1)
	}
	deps := &batch.ExecDeps{
		SaveReport:    uc.repo.SaveReport,
		UploadBytes:   uc.repo.UploadBytes,
		Chart:         uc.chart,
		Notify:        uc.notify,
		Tuning:        uc.tuning,
		Step:          uc.c.GetBatch().GetStep().AsDuration(),
		SpinLimit:     uc.c.GetBatch().GetSpinLimit().AsDuration(),
		GenerateLocal: uc.c.GetChart().GetGenerateLocal(),
		UploadToS3:    uc.c.GetChart().GetUploadToS3(),
	}
	// 未拿到名额说明已取消或删除，Execute 只做收尾
	b.Execute(deps)
}

// GetBatch 内存中不存在时尝试读取已落库的报告
func (uc *UseCase) GetBatch(ctx context.Context, id string) (*batch.Batch, *batch.Report, error) {
	if b, ok := uc.batches.Get(id); ok {
		return b, b.Report(), nil
	}
	rep, err := uc.repo.LoadReport(ctx, id)
	if err != nil {
		uc.log.Warnf("load report %s: %v", id, err)
	}
	if rep == nil {
		return nil, nil, v1.ErrorBatchNotFound("batch %s not found", id)
	}
	return nil, rep, nil
}

// ListBatches 按创建时间倒序
func (uc *UseCase) ListBatches() []*batch.Batch {
	return uc.batches.List()
}

// CancelBatch 取消排队或运行中的批量
func (uc *UseCase) CancelBatch(id string) (*batch.Batch, error) {
	b, ok := uc.batches.Get(id)
	if !ok {
		return nil, v1.ErrorBatchNotFound("batch %s not found", id)
	}
	if err := b.Cancel(); err != nil {
		return nil, v1.ErrorBatchFinished("batch %s: %v", id, err)
	}
	return b, nil
}

// DeleteBatch 停止并移除，同时删除指标与已落库报告；两处都不存在时返回 NOT_FOUND
func (uc *UseCase) DeleteBatch(ctx context.Context, id string) error {
	b, ok := uc.batches.Remove(id)
	if ok {
		b.Stop()
	} else if rep, _ := uc.repo.LoadReport(ctx, id); rep == nil {
		return v1.ErrorBatchNotFound("batch %s not found", id)
	}
	metrics.DeleteBatch(id)
	if err := uc.repo.DeleteReport(ctx, id); err != nil {
		uc.log.Warnf("delete report %s: %v", id, err)
	}
	return nil
}

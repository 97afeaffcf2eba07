package service

import (
	"context"
	"strings"

	v1 "roulette/api/roulette/v1"
	"roulette/internal/biz"
	"roulette/internal/biz/batch"
	"roulette/internal/biz/history"
	"roulette/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/log"
)

// RouletteService 转盘 HTTP 服务
type RouletteService struct {
	uc  *biz.UseCase
	log *log.Helper
}

func NewRouletteService(uc *biz.UseCase, logger log.Logger) *RouletteService {
	return &RouletteService{
		uc:  uc,
		log: log.NewHelper(log.With(logger, "module", "service")),
	}
}

func (s *RouletteService) GetState(ctx context.Context, in *v1.GetStateRequest) (*v1.GetStateReply, error) {
	snap := s.uc.Snapshot()
	enabled, _ := s.uc.AutoSpin()
	reply := &v1.GetStateReply{
		State:    toState(snap.State),
		Config:   toPhysics(snap.Config),
		Frame:    snap.Frame,
		AutoSpin: enabled,
	}
	if last := s.uc.History(history.NewestFirst); len(last) > 0 {
		reply.Last = toOutcome(last[0])
	}
	return reply, nil
}

// Spin 已有一局进行中时返回 started=false
func (s *RouletteService) Spin(ctx context.Context, in *v1.SpinRequest) (*v1.SpinReply, error) {
	started, err := s.uc.StartSpin(ctx)
	if err != nil {
		return nil, err
	}
	return &v1.SpinReply{Started: started}, nil
}

func (s *RouletteService) GetConfig(ctx context.Context, in *v1.GetConfigRequest) (*v1.ConfigReply, error) {
	return &v1.ConfigReply{Config: toPhysics(s.uc.Config())}, nil
}

func (s *RouletteService) SetConfig(ctx context.Context, in *v1.SetConfigRequest) (*v1.ConfigReply, error) {
	applied, fallbacks, err := s.uc.SetConfig(ctx, fromPhysics(in.Config))
	if err != nil {
		return nil, err
	}
	return &v1.ConfigReply{Config: toPhysics(applied), Fallbacks: fallbacks}, nil
}

func (s *RouletteService) Nudge(ctx context.Context, in *v1.NudgeRequest) (*v1.NudgeReply, error) {
	applied, err := s.uc.Nudge(ctx, in.WheelDelta, in.BallDelta)
	if err != nil {
		return nil, err
	}
	return &v1.NudgeReply{Applied: applied}, nil
}

func (s *RouletteService) SetAutoSpin(ctx context.Context, in *v1.SetAutoSpinRequest) (*v1.AutoSpinReply, error) {
	s.uc.SetAutoSpin(in.Enabled)
	enabled, pending := s.uc.AutoSpin()
	return &v1.AutoSpinReply{Enabled: enabled, Pending: pending}, nil
}

func (s *RouletteService) ListHistory(ctx context.Context, in *v1.ListHistoryRequest) (*v1.ListHistoryReply, error) {
	items := s.uc.History(history.ParseOrder(in.Order))
	if in.Limit > 0 && int(in.Limit) < len(items) {
		items = items[:in.Limit]
	}
	out := make([]*v1.Outcome, len(items))
	for i, o := range items {
		out[i] = toOutcome(o)
	}
	return &v1.ListHistoryReply{Outcomes: out, Total: int32(len(out)), Capacity: int32(s.uc.HistoryCapacity())}, nil
}

func (s *RouletteService) ClearHistory(ctx context.Context, in *v1.ClearHistoryRequest) (*v1.Empty, error) {
	if err := s.uc.ClearHistory(ctx); err != nil {
		s.log.Errorf("ClearHistory failed: %v", err)
		return nil, err
	}
	return &v1.Empty{}, nil
}

func (s *RouletteService) CreateBatch(ctx context.Context, in *v1.CreateBatchRequest) (*v1.BatchReply, error) {
	cfg := batch.Config{
		Spins:       in.Spins,
		Workers:     int(in.Workers),
		Seed:        in.Seed,
		Description: in.Description,
	}
	if in.Physics != nil {
		cfg.Physics = fromPhysics(in.Physics)
	}
	b, err := s.uc.CreateBatch(ctx, cfg)
	if err != nil {
		s.log.Warnf("CreateBatch failed: %v", err)
		return nil, err
	}
	return &v1.BatchReply{Batch: toBatch(b.Stats().Snapshot(), b.Report())}, nil
}

func (s *RouletteService) GetBatch(ctx context.Context, in *v1.BatchRequest) (*v1.BatchReply, error) {
	b, rep, err := s.uc.GetBatch(ctx, strings.TrimSpace(in.BatchId))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &v1.BatchReply{Batch: fromReport(rep)}, nil
	}
	return &v1.BatchReply{Batch: toBatch(b.Stats().Snapshot(), rep)}, nil
}

func (s *RouletteService) ListBatches(ctx context.Context, in *v1.ListBatchesRequest) (*v1.ListBatchesReply, error) {
	var filter *batch.Status
	if in.Status != "" {
		st, ok := batch.ParseStatus(in.Status)
		if !ok {
			return nil, v1.ErrorInvalidArgument("unknown status %q", in.Status)
		}
		filter = &st
	}
	all := s.uc.ListBatches()
	out := make([]*v1.Batch, 0, len(all))
	for _, b := range all {
		if filter != nil && b.Status() != *filter {
			continue
		}
		out = append(out, toBatch(b.Stats().Snapshot(), b.Report()))
	}
	return &v1.ListBatchesReply{Batches: out, Total: int32(len(out))}, nil
}

func (s *RouletteService) CancelBatch(ctx context.Context, in *v1.BatchRequest) (*v1.BatchReply, error) {
	b, err := s.uc.CancelBatch(strings.TrimSpace(in.BatchId))
	if err != nil {
		return nil, err
	}
	return &v1.BatchReply{Batch: toBatch(b.Stats().Snapshot(), b.Report())}, nil
}

func (s *RouletteService) DeleteBatch(ctx context.Context, in *v1.BatchRequest) (*v1.Empty, error) {
	if err := s.uc.DeleteBatch(ctx, strings.TrimSpace(in.BatchId)); err != nil {
		s.log.Errorf("DeleteBatch failed: %v", err)
		return nil, err
	}
	return &v1.Empty{}, nil
}

func toPhysics(c wheel.PhysicsConfig) *v1.PhysicsConfig {
	return &v1.PhysicsConfig{
		WheelRpm:        c.WheelRPM,
		BallRpm:         c.BallRPM,
		Restitution:     c.Restitution,
		ScatterVariance: c.ScatterVariance,
		TiltAngle:       c.TiltAngle,
		Duration:        c.Duration,
	}
}

func fromPhysics(c *v1.PhysicsConfig) wheel.PhysicsConfig {
	return wheel.PhysicsConfig{
		WheelRPM:        c.WheelRpm,
		BallRPM:         c.BallRpm,
		Restitution:     c.Restitution,
		ScatterVariance: c.ScatterVariance,
		TiltAngle:       c.TiltAngle,
		Duration:        c.Duration,
	}
}

func toState(st wheel.State) *v1.WheelState {
	return &v1.WheelState{
		WheelAngle:     st.WheelAngle,
		BallAngle:      st.BallAngle,
		WheelVelocity:  st.WheelVelocity,
		BallVelocity:   st.BallVelocity,
		WheelDirection: int32(st.WheelDirection),
		BallDirection:  int32(st.BallDirection),
		BallRadius:     st.BallRadius,
		RadialVelocity: st.RadialVelocity,
		Phase:          st.Phase.String(),
		TiltAngle:      st.TiltAngle,
		Elapsed:        st.Elapsed,
		DeflectorHits:  int32(st.DeflectorHits),
	}
}

func toOutcome(o wheel.Outcome) *v1.Outcome {
	return &v1.Outcome{
		Id:             o.ID,
		Number:         int32(o.Number),
		Color:          string(o.Color),
		WheelAngle:     o.WheelAngle,
		BallAngle:      o.BallAngle,
		WheelDirection: int32(o.WheelDirection),
		BallDirection:  int32(o.BallDirection),
		Elapsed:        o.Elapsed,
		DeflectorHits:  int32(o.DeflectorHits),
		ResolvedAt:     o.ResolvedAt,
	}
}

// toBatch 运行中取实时统计，结束后补充报告字段
func toBatch(snap batch.StatsSnapshot, rep *batch.Report) *v1.Batch {
	out := &v1.Batch{
		BatchId:     snap.ID,
		Status:      snap.Status.String(),
		Description: snap.Config.Description,
		Spins:       snap.Target,
		Workers:     int32(snap.Config.Workers),
		Seed:        snap.Config.Seed,
		Physics:     toPhysics(snap.Config.Physics),
		Completed:   snap.Completed,
		Failed:      snap.Failed,
		ProgressPct: snap.ProgressPct(),
		SpinsPerSec: snap.SpinsPerSec(),
		Counts:      snap.Counts[:],
		ChiSquare:   batch.ChiSquare(snap.Counts[:]),
		MeanElapsed: snap.MeanElapsed(),
		ChartUrl:    snap.ChartURL,
		Error:       snap.Error,
		CreatedAt:   snap.CreatedAt,
	}
	if !snap.FinishedAt.IsZero() {
		t := snap.FinishedAt
		out.FinishedAt = &t
	}
	if rep != nil {
		out.Red, out.Black, out.Green = rep.Red, rep.Black, rep.Green
		out.Uniform = rep.Uniform
	}
	return out
}

// fromReport 只剩落库报告时的视图
func fromReport(rep *batch.Report) *v1.Batch {
	out := &v1.Batch{
		BatchId:     rep.BatchID,
		Status:      rep.Status.String(),
		Description: rep.Description,
		Spins:       rep.Target,
		Physics:     toPhysics(rep.Physics),
		Completed:   rep.Completed,
		Failed:      rep.Failed,
		Counts:      rep.Counts[:],
		Red:         rep.Red,
		Black:       rep.Black,
		Green:       rep.Green,
		ChiSquare:   rep.ChiSquare,
		Uniform:     rep.Uniform,
		MeanElapsed: rep.MeanElapsed,
		ChartUrl:    rep.ChartURL,
		CreatedAt:   rep.CreatedAt,
	}
	if rep.Target > 0 {
		out.ProgressPct = float64(rep.Completed+rep.Failed) / float64(rep.Target) * 100
	}
	if !rep.FinishedAt.IsZero() {
		t := rep.FinishedAt
		out.FinishedAt = &t
	}
	return out
}

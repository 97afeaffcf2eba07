package service

import (
	"context"
	"testing"
	"time"

	v1 "roulette/api/roulette/v1"
	"roulette/internal/biz"
	"roulette/internal/biz/batch"
	"roulette/internal/biz/history"
	"roulette/internal/biz/wheel"
	"roulette/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

type nopRepo struct{}

func (nopRepo) NextBatchID(context.Context) string { return "svc-1" }
func (nopRepo) SaveReport(context.Context, *batch.Report) error { return nil }
func (nopRepo) LoadReport(context.Context, string) (*batch.Report, error) { return nil, nil }
func (nopRepo) DeleteReport(context.Context, string) error { return nil }
func (nopRepo) UploadBytes(context.Context, string, string, string, []byte) (string, error) {
	return "", nil
}

func newTestService(t *testing.T) *RouletteService {
	t.Helper()
	store := history.NewMemoryStore()
	for i := 0; i < 3; i++ {
		_ = store.Push(context.Background(), wheel.Outcome{ID: string(rune('a' + i)), Number: i}, 20)
	}
	uc, cleanup, err := biz.NewUseCase(nopRepo{}, store, &conf.Roulette{}, log.DefaultLogger, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cleanup)
	return NewRouletteService(uc, log.DefaultLogger)
}

func TestListHistoryOrderAndLimit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	newest, err := s.ListHistory(ctx, &v1.ListHistoryRequest{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if newest.Total != 2 || newest.Outcomes[0].Number != 2 || newest.Capacity != 20 {
		t.Errorf("最新在前: %+v", newest)
	}
	oldest, _ := s.ListHistory(ctx, &v1.ListHistoryRequest{Order: "oldest"})
	if oldest.Total != 3 || oldest.Outcomes[0].Number != 0 {
		t.Errorf("最旧在前: %+v", oldest.Outcomes)
	}
}

func TestSpinAndState(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.Spin(ctx, &v1.SpinRequest{})
	if err != nil || !first.Started {
		t.Fatalf("first spin: %+v %v", first, err)
	}
	second, err := s.Spin(ctx, &v1.SpinRequest{})
	if err != nil || second.Started {
		t.Fatalf("进行中应返回 started=false: %+v %v", second, err)
	}
	st, _ := s.GetState(ctx, &v1.GetStateRequest{})
	if st.State.Phase == wheel.PhaseIdle.String() || st.Last == nil || st.Last.Number != 2 {
		t.Errorf("state: %+v last=%+v", st.State, st.Last)
	}
}

func TestSetConfigReply(t *testing.T) {
	s := newTestService(t)
	reply, err := s.SetConfig(context.Background(), &v1.SetConfigRequest{Config: &v1.PhysicsConfig{
		WheelRpm: 30, BallRpm: -1, Restitution: 0.4, ScatterVariance: 0.2, TiltAngle: 1, Duration: 5,
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(reply.Fallbacks) != 1 || reply.Config.BallRpm != wheel.DefaultConfig().BallRPM || reply.Config.WheelRpm != 30 {
		t.Errorf("reply: %+v fallbacks=%v", reply.Config, reply.Fallbacks)
	}
}

func TestListBatchesUnknownStatus(t *testing.T) {
	s := newTestService(t)
	if _, err := s.ListBatches(context.Background(), &v1.ListBatchesRequest{Status: "bogus"}); !v1.IsInvalidArgument(err) {
		t.Errorf("未知状态应返回 INVALID_ARGUMENT, got %v", err)
	}
	if _, err := s.GetBatch(context.Background(), &v1.BatchRequest{BatchId: "none"}); !v1.IsBatchNotFound(err) {
		t.Errorf("got %v", err)
	}
}

func TestFromReport(t *testing.T) {
	rep := &batch.Report{BatchID: "r", Status: batch.StatusCompleted, Target: 10, Completed: 9, Failed: 1, FinishedAt: time.Now()}
	rep.Counts[5] = 9
	b := fromReport(rep)
	if b.ProgressPct != 100 || b.Counts[5] != 9 || b.FinishedAt == nil || b.Status != "completed" {
		t.Errorf("fromReport: %+v", b)
	}
}

func TestValidate(t *testing.T) {
	if err := (&v1.CreateBatchRequest{Spins: 0}).Validate(); !v1.IsInvalidArgument(err) {
		t.Errorf("spins=0 应校验失败")
	}
	if err := (&v1.SetConfigRequest{}).Validate(); !v1.IsInvalidArgument(err) {
		t.Errorf("缺少 config 应校验失败")
	}
	if err := (&v1.ListHistoryRequest{Order: "sideways"}).Validate(); err == nil {
		t.Errorf("非法 order 应校验失败")
	}
}

package biz

import (
	"context"
	"sync"
	"testing"
	"time"

	v1 "roulette/api/roulette/v1"
	"roulette/internal/biz/batch"
	"roulette/internal/biz/history"
	"roulette/internal/biz/wheel"
	"roulette/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

type memRepo struct {
	mu      sync.Mutex
	seq     int
	reports map[string]*batch.Report
}

func (r *memRepo) NextBatchID(context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return "t-" + string(rune('a'+r.seq))
}

func (r *memRepo) SaveReport(_ context.Context, rep *batch.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[rep.BatchID] = rep
	return nil
}

func (r *memRepo) LoadReport(_ context.Context, id string) (*batch.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports[id], nil
}

func (r *memRepo) DeleteReport(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reports, id)
	return nil
}

func (r *memRepo) UploadBytes(context.Context, string, string, string, []byte) (string, error) {
	return "", nil
}

func newTestUseCase(t *testing.T, c *conf.Roulette) (*UseCase, *memRepo) {
	t.Helper()
	repo := &memRepo{reports: map[string]*batch.Report{}}
	uc, cleanup, err := NewUseCase(repo, history.NewMemoryStore(), c, log.DefaultLogger, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cleanup)
	return uc, repo
}

func TestStartSpinOnlyOnce(t *testing.T) {
	uc, _ := newTestUseCase(t, &conf.Roulette{})
	ctx := context.Background()

	started, err := uc.StartSpin(ctx)
	if err != nil || !started {
		t.Fatalf("首次开局应成功: started=%v err=%v", started, err)
	}
	started, err = uc.StartSpin(ctx)
	if err != nil || started {
		t.Fatalf("进行中再次开局应为 no-op: started=%v err=%v", started, err)
	}
	if uc.Snapshot().State.Phase == wheel.PhaseIdle {
		t.Errorf("开局后不应为 idle")
	}
	if applied, _ := uc.Nudge(ctx, 5, 5); applied {
		t.Errorf("进行中不允许手动对齐")
	}
}

func TestSetConfigFallbacks(t *testing.T) {
	uc, _ := newTestUseCase(t, nil)
	cfg := wheel.DefaultConfig()
	cfg.Restitution = 2
	cfg.Duration = -1

	applied, fallbacks, err := uc.SetConfig(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(fallbacks) != 2 {
		t.Errorf("fallbacks=%v", fallbacks)
	}
	if applied.Restitution != wheel.DefaultConfig().Restitution || uc.Config() != applied {
		t.Errorf("回退后的配置应立即可见: %+v", applied)
	}
}

func TestAutoSpinToggle(t *testing.T) {
	uc, _ := newTestUseCase(t, &conf.Roulette{AutoSpin: &conf.Roulette_AutoSpin{Enabled: true}})
	if on, pending := uc.AutoSpin(); !on || pending {
		t.Fatalf("开启不应立即排队: on=%v pending=%v", on, pending)
	}
	uc.SetAutoSpin(false)
	if on, _ := uc.AutoSpin(); on {
		t.Errorf("关闭失败")
	}
	if uc.Snapshot().State.Phase != wheel.PhaseIdle {
		t.Errorf("开关自动连转不应开局")
	}
}

func TestClearHistory(t *testing.T) {
	uc, _ := newTestUseCase(t, &conf.Roulette{History: &conf.Roulette_History{Capacity: 5}})
	uc.history.Append(wheel.Outcome{ID: "x", Number: 3})
	if len(uc.History(history.NewestFirst)) != 1 || uc.HistoryCapacity() != 5 {
		t.Fatalf("history=%d cap=%d", len(uc.History(history.NewestFirst)), uc.HistoryCapacity())
	}
	if err := uc.ClearHistory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(uc.History(history.NewestFirst)) != 0 {
		t.Errorf("清空后应为空")
	}
}

func TestCreateBatchLimit(t *testing.T) {
	uc, _ := newTestUseCase(t, &conf.Roulette{Batch: &conf.Roulette_Batch{MaxSpins: 100}})
	if _, err := uc.CreateBatch(context.Background(), batch.Config{Spins: 101}); !v1.IsBatchLimit(err) {
		t.Errorf("超过上限应返回 BATCH_LIMIT, got %v", err)
	}
	if _, err := uc.CreateBatch(context.Background(), batch.Config{Spins: 0}); !v1.IsBatchLimit(err) {
		t.Errorf("0 局应返回 BATCH_LIMIT, got %v", err)
	}
}

func TestBatchLifecycle(t *testing.T) {
	uc, repo := newTestUseCase(t, &conf.Roulette{Batch: &conf.Roulette_Batch{MaxConcurrent: 1}})
	ctx := context.Background()

	b, err := uc.CreateBatch(ctx, batch.Config{Spins: 8, Workers: 2, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if b.Config().Physics != wheel.DefaultConfig() {
		t.Errorf("未指定物理参数应沿用当前配置")
	}

	select {
	case <-b.Done():
	case <-time.After(30 * time.Second):
		t.Fatalf("批量未在时限内结束: %s", b.Status())
	}
	if b.Status() != batch.StatusCompleted {
		t.Fatalf("status=%s err=%s", b.Status(), b.Err())
	}

	got, rep, err := uc.GetBatch(ctx, b.ID())
	if err != nil || got != b || rep == nil {
		t.Fatalf("GetBatch: %v %v %v", got, rep, err)
	}
	if _, err := uc.CancelBatch(b.ID()); !v1.IsBatchFinished(err) {
		t.Errorf("已结束的批量取消应报错, got %v", err)
	}

	if err := uc.DeleteBatch(ctx, b.ID()); err != nil {
		t.Fatal(err)
	}
	if len(uc.ListBatches()) != 0 {
		t.Errorf("删除后列表应为空")
	}
	if _, _, err := uc.GetBatch(ctx, b.ID()); !v1.IsBatchNotFound(err) {
		t.Errorf("删除后应 NOT_FOUND, got %v", err)
	}
	if err := uc.DeleteBatch(ctx, b.ID()); !v1.IsBatchNotFound(err) {
		t.Errorf("重复删除应 NOT_FOUND, got %v", err)
	}
	if len(repo.reports) != 0 {
		t.Errorf("报告应一并删除")
	}
}

func TestCancelQueuedBatch(t *testing.T) {
	uc, _ := newTestUseCase(t, &conf.Roulette{Batch: &conf.Roulette_Batch{MaxConcurrent: 1}})
	ctx := context.Background()

	first, err := uc.CreateBatch(ctx, batch.Config{Spins: 5_000_000, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for first.Status() != batch.StatusRunning {
		if time.Now().After(deadline) {
			t.Fatalf("第一个批量未开始: %s", first.Status())
		}
		time.Sleep(time.Millisecond)
	}
	second, err := uc.CreateBatch(ctx, batch.Config{Spins: 10, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.CancelBatch(second.ID()); err != nil {
		t.Fatalf("排队中的批量应可取消: %v", err)
	}
	if _, err := uc.CancelBatch(first.ID()); err != nil {
		t.Fatalf("运行中的批量应可取消: %v", err)
	}
	select {
	case <-second.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("取消后应很快结束")
	}
	if second.Status() != batch.StatusCancelled || second.Stats().Done() != 0 {
		t.Errorf("排队中取消后不应执行: %s done=%d", second.Status(), second.Stats().Done())
	}
	if _, err := uc.CancelBatch("missing"); !v1.IsBatchNotFound(err) {
		t.Errorf("不存在的批量应 NOT_FOUND, got %v", err)
	}
}

func TestTuningFromConf(t *testing.T) {
	got := TuningFromConf(&conf.Roulette_Tuning{BounceProbability: 0.2, MaxDeflectorHits: 3})
	if got.BounceProbability != 0.2 || got.MaxDeflectorHits != 3 {
		t.Errorf("覆盖项未生效: %+v", got)
	}
	if got.KickScale != wheel.DefaultTuning().KickScale {
		t.Errorf("零值应取默认")
	}
	if PhysicsFromConf(nil) != wheel.DefaultConfig() {
		t.Errorf("未配置应取默认物理参数")
	}
}

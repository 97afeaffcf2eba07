package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roulette/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/log"
)

// Status 批量模拟状态
type Status int32

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseStatus 未知字符串返回 false
func ParseStatus(s string) (Status, bool) {
	for st := StatusPending; st <= StatusCancelled; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Terminal 是否为终态（完成/失败/取消）
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Config 批量模拟配置
type Config struct {
	Spins       int64               `json:"spins"`
	Workers     int                 `json:"workers"`
	Seed        uint64              `json:"seed"` // 0 表示随机
	Description string              `json:"description"`
	Physics     wheel.PhysicsConfig `json:"physics"`
}

// meta 元数据，Batch 与 Stats 共享
type meta struct {
	mu         sync.RWMutex
	id         string
	status     Status
	config     Config
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	chartURL   string
	errMsg     string
}

// Batch 一次无头批量模拟
type Batch struct {
	meta   *meta
	ctx    context.Context
	cancel context.CancelFunc
	stats  *Stats
	log    *log.Helper

	reportMu sync.RWMutex
	report   *Report

	done     chan struct{}
	doneOnce sync.Once
}

// NewBatch parent 取消时批量随之取消
func NewBatch(parent context.Context, id string, cfg Config, logger log.Logger) *Batch {
	ctx, cancel := context.WithCancel(parent)
	m := &meta{id: id, status: StatusPending, config: cfg, createdAt: time.Now()}
	return &Batch{
		meta:   m,
		ctx:    ctx,
		cancel: cancel,
		stats:  newStats(cfg.Spins, m),
		log:    log.NewHelper(log.With(logger, "batch", id)),
		done:   make(chan struct{}),
	}
}

func (b *Batch) ID() string {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.id
}

func (b *Batch) Config() Config {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.config
}

func (b *Batch) Status() Status {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.status
}

func (b *Batch) CreatedAt() time.Time {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.createdAt
}

func (b *Batch) FinishedAt() time.Time {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.finishedAt
}

func (b *Batch) ChartURL() string {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.chartURL
}

func (b *Batch) Err() string {
	b.meta.mu.RLock()
	defer b.meta.mu.RUnlock()
	return b.meta.errMsg
}

func (b *Batch) Context() context.Context { return b.ctx }

// Done Execute 收尾（报告、通知）全部结束后关闭
func (b *Batch) Done() <-chan struct{} { return b.done }

func (b *Batch) Stats() *Stats { return b.stats }

// Report 完成后的报告，未完成时为 nil
func (b *Batch) Report() *Report {
	b.reportMu.RLock()
	defer b.reportMu.RUnlock()
	return b.report
}

func (b *Batch) setReport(r *Report) {
	b.reportMu.Lock()
	b.report = r
	b.reportMu.Unlock()
}

func (b *Batch) setChartURL(url string) {
	b.meta.mu.Lock()
	b.meta.chartURL = url
	b.meta.mu.Unlock()
}

func (b *Batch) setStartedAt() {
	b.meta.mu.Lock()
	b.meta.startedAt = time.Now()
	b.meta.mu.Unlock()
}

func (b *Batch) SetStatus(status Status) {
	b.meta.mu.Lock()
	defer b.meta.mu.Unlock()
	b.setStatusLocked(status)
}

func (b *Batch) setStatusLocked(status Status) {
	if b.meta.status == status {
		return
	}
	if status.Terminal() && b.meta.finishedAt.IsZero() {
		b.meta.finishedAt = time.Now()
	}
	b.meta.status = status
}

// CompareAndSetStatus 状态为 old 时切换到 new
func (b *Batch) CompareAndSetStatus(old, new Status) bool {
	b.meta.mu.Lock()
	defer b.meta.mu.Unlock()
	if b.meta.status != old {
		return false
	}
	b.setStatusLocked(new)
	return true
}

// fail 记录原因并置为失败
func (b *Batch) fail(err error) {
	b.meta.mu.Lock()
	b.meta.errMsg = err.Error()
	b.setStatusLocked(StatusFailed)
	b.meta.mu.Unlock()
	b.log.Errorf("batch failed: %v", err)
}

// Cancel 取消未结束的批量；已结束返回错误
func (b *Batch) Cancel() error {
	b.meta.mu.Lock()
	if b.meta.status.Terminal() {
		b.meta.mu.Unlock()
		return fmt.Errorf("batch already finished")
	}
	b.setStatusLocked(StatusCancelled)
	b.meta.mu.Unlock()
	b.cancel()
	b.log.Info("batch cancelled")
	return nil
}

// Stop 只停止执行，不改状态
func (b *Batch) Stop() {
	b.cancel()
}

package batch

import (
	"context"
	"sync/atomic"
	"time"

	"roulette/internal/biz/wheel"
	"roulette/pkg/xgo"
)

// StatsSnapshot 完整快照（元数据+统计）
type StatsSnapshot struct {
	ID                   string
	Status               Status
	Config               Config
	Target               int64
	Completed, Failed    int64
	DeflectorHits        int64
	SimElapsed           time.Duration // 累计模拟时长
	Counts               [wheel.PocketCount]int64
	CreatedAt, StartedAt time.Time
	FinishedAt           time.Time
	ChartURL, Error      string
}

// Stats 批量统计，全部原子操作，供多个 worker 并发写
type Stats struct {
	meta *meta

	target        int64
	claimed       atomic.Int64
	completed     atomic.Int64
	failed        atomic.Int64
	deflectorHits atomic.Int64
	simElapsed    atomic.Int64 // ns
	counts        [wheel.PocketCount]atomic.Int64
}

func newStats(target int64, m *meta) *Stats {
	return &Stats{meta: m, target: target}
}

// claim 领取一局，超出目标返回 false
func (s *Stats) claim() bool {
	return s.claimed.Add(1) <= s.target
}

// Add 记录一局结果
func (s *Stats) Add(o wheel.Outcome) {
	if o.Number >= 0 && o.Number < wheel.PocketCount {
		s.counts[o.Number].Add(1)
	}
	s.deflectorHits.Add(int64(o.DeflectorHits))
	s.simElapsed.Add(int64(o.Elapsed * float64(time.Second)))
	s.completed.Add(1)
}

// AddFailed 未在时限内落定
func (s *Stats) AddFailed() {
	s.failed.Add(1)
}

// Done 已完成+失败
func (s *Stats) Done() int64 {
	return s.completed.Load() + s.failed.Load()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.meta.mu.RLock()
	snap := StatsSnapshot{
		ID:         s.meta.id,
		Status:     s.meta.status,
		Config:     s.meta.config,
		CreatedAt:  s.meta.createdAt,
		StartedAt:  s.meta.startedAt,
		FinishedAt: s.meta.finishedAt,
		ChartURL:   s.meta.chartURL,
		Error:      s.meta.errMsg,
	}
	s.meta.mu.RUnlock()

	snap.Target = s.target
	snap.Completed = s.completed.Load()
	snap.Failed = s.failed.Load()
	snap.DeflectorHits = s.deflectorHits.Load()
	snap.SimElapsed = time.Duration(s.simElapsed.Load())
	for i := range s.counts {
		snap.Counts[i] = s.counts[i].Load()
	}
	return snap
}

// ProgressPct 进度百分比
func (s *StatsSnapshot) ProgressPct() float64 {
	return xgo.PctCap100(s.Completed+s.Failed, s.Target)
}

// SpinsPerSec 每秒完成局数（墙钟）
func (s *StatsSnapshot) SpinsPerSec() float64 {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := time.Now()
	if !s.FinishedAt.IsZero() {
		end = s.FinishedAt
	}
	return xgo.PerSecond(s.Completed, end.Sub(s.StartedAt))
}

// MeanElapsed 平均单局模拟时长（秒）
func (s *StatsSnapshot) MeanElapsed() float64 {
	if s.Completed <= 0 {
		return 0
	}
	return s.SimElapsed.Seconds() / float64(s.Completed)
}

// Monitor 1s 打印一次进度，ctx 取消后打印总结
func (s *Stats) Monitor(ctx context.Context, logf func(format string, args ...any)) {
	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.printFinal(start, logf)
			return
		case <-ticker.C:
			s.printProgress(start, logf)
		}
	}
}

func (s *Stats) printProgress(start time.Time, logf func(string, ...any)) {
	snap := s.Snapshot()
	done := snap.Completed + snap.Failed
	elapsed := time.Since(start)
	pct := snap.ProgressPct()
	remaining := time.Duration(0)
	if pct > 0 {
		remaining = time.Duration(int64(float64(elapsed)/pct*100)) - elapsed
	}
	logf("进度:%d/%d(%.2f%%), 用时:%s, 剩余:%s, 局/秒:%.2f, 平均模拟:%s, 失败:%d",
		done, snap.Target, pct,
		xgo.ShortDuration(elapsed), xgo.ShortDuration(remaining),
		xgo.PerSecond(done, elapsed),
		xgo.AvgDuration(snap.SimElapsed, snap.Completed),
		snap.Failed,
	)
}

func (s *Stats) printFinal(start time.Time, logf func(string, ...any)) {
	snap := s.Snapshot()
	elapsed := time.Since(start)
	logf("批量结束: 完成:%d/%d, 失败:%d, 耗时:%s, 局/秒:%.2f, 反弹:%d",
		snap.Completed, snap.Target, snap.Failed,
		xgo.ShortDuration(elapsed),
		xgo.PerSecond(snap.Completed, elapsed),
		snap.DeflectorHits,
	)
}

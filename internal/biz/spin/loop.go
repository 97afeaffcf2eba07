package spin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"roulette/internal/biz/wheel"
	"roulette/pkg/xgo"

	"github.com/go-kratos/kratos/v2/log"
)

const DefaultFrameInterval = time.Second / 60

var (
	ErrLoopStopped    = errors.New("spin: loop stopped")
	ErrLoopNotRunning = errors.New("spin: loop not running")
)

// Clock 时间源，测试可替换
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Snapshot 每帧发布的只读快照
type Snapshot struct {
	State  wheel.State         `json:"state"`
	Config wheel.PhysicsConfig `json:"config"`
	Frame  uint64              `json:"frame"`
	At     time.Time           `json:"at"`
}

type command struct {
	fn   func(*wheel.Engine)
	done chan struct{}
}

// LoopOption Loop 选项
type LoopOption func(*Loop)

func WithClock(c Clock) LoopOption {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithFrameHook 每帧结束后在 loop goroutine 内调用，不可阻塞
func WithFrameHook(fn func(Snapshot)) LoopOption {
	return func(l *Loop) { l.hooks = append(l.hooks, fn) }
}

// Loop 唯一持有 Engine 的 goroutine：按帧 Tick，串行执行命令，发布快照
type Loop struct {
	engine   *wheel.Engine
	clock    Clock
	interval time.Duration
	hooks    []func(Snapshot)
	log      *log.Helper

	cmds  chan command
	snap  atomic.Pointer[Snapshot]
	frame uint64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewLoop 创建 Loop，Start 之前 engine 仍可由调用方直接配置
func NewLoop(engine *wheel.Engine, logger log.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		engine:   engine,
		clock:    systemClock{},
		interval: DefaultFrameInterval,
		log:      log.NewHelper(log.With(logger, "module", "spin/loop")),
		cmds:     make(chan command),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.publish(l.clock.Now())
	return l
}

// Start 启动帧循环，ctx 取消或 Stop 后退出
func (l *Loop) Start(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	l.wg.Add(1)
	go l.run(ctx)
}

// Stop 停止帧循环并等待退出
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.wg.Wait()
	})
}

// Snapshot 最近一帧快照
func (l *Loop) Snapshot() Snapshot {
	return *l.snap.Load()
}

// Do 在 loop goroutine 内执行 fn 并等待完成
func (l *Loop) Do(ctx context.Context, fn func(*wheel.Engine)) error {
	if !l.running.Load() {
		return ErrLoopNotRunning
	}
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case l.cmds <- cmd:
	case <-l.stopCh:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-l.stopCh:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.engine.Tick(l.clock.Now())
	for {
		select {
		case <-ctx.Done():
			l.log.Info("loop exit: context done")
			return
		case <-l.stopCh:
			l.log.Info("loop exit: stopped")
			return
		case cmd := <-l.cmds:
			l.exec(cmd)
		case <-ticker.C:
			now := l.clock.Now()
			l.safeTick(now)
			l.publish(now)
		}
	}
}

func (l *Loop) exec(cmd command) {
	defer close(cmd.done)
	defer xgo.RecoverFromError(nil)
	cmd.fn(l.engine)
	l.publish(l.clock.Now())
}

func (l *Loop) safeTick(now time.Time) {
	defer xgo.RecoverFromError(func(e any) {
		l.log.Errorf("tick panic recovered: %v", e)
	})
	l.engine.Tick(now)
}

func (l *Loop) publish(now time.Time) {
	l.frame++
	s := &Snapshot{
		State:  l.engine.State(),
		Config: l.engine.Config(),
		Frame:  l.frame,
		At:     now,
	}
	l.snap.Store(s)
	for _, h := range l.hooks {
		h(*s)
	}
}

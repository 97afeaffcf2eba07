package spin

import (
	"sync"
	"time"

	"roulette/internal/biz/wheel"
)

const DefaultAutoSpinDelay = 500 * time.Millisecond

// Timer 可取消的定时任务
type Timer interface {
	Stop() bool
}

// Scheduler 延迟执行，测试用假实现控制时间
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// AutoSpin 自动连转：开启时每出一个结果，延迟 delay 后再开一局
type AutoSpin struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	start   func(valid func() bool)
	enabled bool
	pending Timer
	gen     uint64
	closed  bool
}

// NewAutoSpin start 在调度器 goroutine 中调用，开局前须在 loop 内再调用 valid 确认；
// sched 为 nil 时使用 time.AfterFunc
func NewAutoSpin(start func(valid func() bool), delay time.Duration, sched Scheduler) *AutoSpin {
	if sched == nil {
		sched = timeScheduler{}
	}
	if delay <= 0 {
		delay = DefaultAutoSpinDelay
	}
	return &AutoSpin{sched: sched, delay: delay, start: start}
}

// SetEnabled 关闭时取消待执行的重开，不影响进行中的一局。开启本身不会开局
func (a *AutoSpin) SetEnabled(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = on
	if !on {
		a.cancelLocked()
	}
}

func (a *AutoSpin) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Pending 是否有待执行的重开
func (a *AutoSpin) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// OnOutcome 结果回调，签名与 Engine.OnSpinComplete 一致
func (a *AutoSpin) OnOutcome(wheel.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled || a.closed {
		return
	}
	a.cancelLocked()
	gen := a.gen
	a.pending = a.sched.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Close 取消待执行任务，之后不再调度
func (a *AutoSpin) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.cancelLocked()
}

func (a *AutoSpin) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.enabled || a.closed {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	a.mu.Unlock()
	a.start(func() bool { return a.valid(gen) })
}

// valid 触发后到真正开局之间，关闭或重新调度都会使本次触发失效
func (a *AutoSpin) valid(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gen == a.gen && a.enabled && !a.closed
}

func (a *AutoSpin) cancelLocked() {
	a.gen++
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
}

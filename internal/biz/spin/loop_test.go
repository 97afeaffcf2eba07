package spin

import (
	"context"
	"errors"
	"testing"
	"time"

	"roulette/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/log"
)

func newTestLoop(t *testing.T, opts ...LoopOption) (*Loop, *wheel.Engine) {
	t.Helper()
	e, _ := wheel.NewEngine(wheel.DefaultConfig())
	opts = append([]LoopOption{WithFrameInterval(time.Millisecond)}, opts...)
	return NewLoop(e, log.DefaultLogger, opts...), e
}

func TestLoopDoRunsOnLoop(t *testing.T) {
	l, _ := newTestLoop(t)
	ctx := context.Background()
	if err := l.Do(ctx, func(*wheel.Engine) {}); !errors.Is(err, ErrLoopNotRunning) {
		t.Fatalf("未启动时应返回 ErrLoopNotRunning, got %v", err)
	}

	l.Start(ctx)
	defer l.Stop()

	var started bool
	if err := l.Do(ctx, func(e *wheel.Engine) { started = e.StartSpin() }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !started {
		t.Fatalf("应能开局")
	}
	if l.Snapshot().State.Phase != wheel.PhaseSpinning {
		t.Errorf("命令执行后快照应更新, phase=%v", l.Snapshot().State.Phase)
	}

	deadline := time.Now().Add(time.Second)
	for l.Snapshot().State.Elapsed == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("帧循环未推进")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestLoopFrameHook(t *testing.T) {
	frames := make(chan uint64, 256)
	l, _ := newTestLoop(t, WithFrameHook(func(s Snapshot) {
		select {
		case frames <- s.Frame:
		default:
		}
	}))
	l.Start(context.Background())
	defer l.Stop()

	var last uint64
	for i := 0; i < 5; i++ {
		select {
		case f := <-frames:
			if f <= last {
				t.Fatalf("帧号未递增: %d <= %d", f, last)
			}
			last = f
		case <-time.After(time.Second):
			t.Fatalf("未收到帧")
		}
	}
}

func TestLoopStop(t *testing.T) {
	l, _ := newTestLoop(t)
	l.Start(context.Background())
	l.Stop()
	l.Stop()
	err := l.Do(context.Background(), func(*wheel.Engine) { t.Errorf("停止后不应执行") })
	if err == nil {
		t.Fatalf("停止后 Do 应报错")
	}
}

func TestLoopContextCancel(t *testing.T) {
	l, _ := newTestLoop(t)
	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	cancel()
	deadline := time.Now().Add(time.Second)
	for l.running.Load() {
		if time.Now().After(deadline) {
			t.Fatalf("ctx 取消后未退出")
		}
		time.Sleep(time.Millisecond)
	}
	l.Stop()
}

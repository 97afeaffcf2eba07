package history

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"roulette/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/log"
)

// DefaultCapacity 历史条数上限
const DefaultCapacity = 20

const (
	writeQueueSize = 64
	writeTimeout   = 3 * time.Second
)

// ErrCorrupt 存储中的数据无法解析
var ErrCorrupt = errors.New("history: corrupt data")

// Store 历史持久化，条目按最新在前
type Store interface {
	Load(ctx context.Context) ([]wheel.Outcome, error)
	Push(ctx context.Context, o wheel.Outcome, limit int) error
	Clear(ctx context.Context) error
}

// Order 列表顺序
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// ParseOrder "oldest" 以外均为最新在前
func ParseOrder(s string) Order {
	if s == "oldest" || s == "asc" {
		return OldestFirst
	}
	return NewestFirst
}

// Log 有界结果历史，最新在前，超出容量丢弃最旧
type Log struct {
	mu       sync.RWMutex
	items    []wheel.Outcome
	capacity int
	store    Store
	log      *log.Helper

	// writes 非 nil 时所有存储写入由单个 writer 串行执行
	writes    chan writeOp
	writerWg  sync.WaitGroup
	closeOnce sync.Once
}

// writeOp clear 为 false 时写入 outcome；done 非 nil 时回传结果
type writeOp struct {
	outcome wheel.Outcome
	clear   bool
	done    chan error
}

// NewLog store 可为 nil
func NewLog(store Store, capacity int, logger log.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		store:    store,
		log:      log.NewHelper(log.With(logger, "module", "history")),
	}
}

// Load 从存储恢复；缺失或损坏时以空历史继续并记录警告
func (l *Log) Load(ctx context.Context) {
	if l.store == nil {
		return
	}
	items, err := l.store.Load(ctx)
	if err != nil {
		l.log.Warnf("load history failed, start empty: %v", err)
		items = nil
	}
	if len(items) > l.capacity {
		items = items[:l.capacity]
	}
	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
}

// Append 仅写内存
func (l *Log) Append(o wheel.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(o)
}

func (l *Log) appendLocked(o wheel.Outcome) {
	l.items = slices.Insert(l.items, 0, o)
	if len(l.items) > l.capacity {
		l.items = l.items[:l.capacity]
	}
}

// Record 写内存并持久化，持久化失败只告警
func (l *Log) Record(ctx context.Context, o wheel.Outcome) {
	l.Append(o)
	l.Persist(ctx, o)
}

// Persist 单独持久化一条，供异步调用
func (l *Log) Persist(ctx context.Context, o wheel.Outcome) {
	if l.store == nil {
		return
	}
	if err := l.store.Push(ctx, o, l.capacity); err != nil {
		l.log.Warnf("persist outcome %s failed: %v", o.ID, err)
	}
}

// StartWriter 启动串行写入 goroutine，ctx 取消或 Close 后退出
func (l *Log) StartWriter(ctx context.Context) {
	if l.store == nil {
		return
	}
	l.mu.Lock()
	if l.writes != nil {
		l.mu.Unlock()
		return
	}
	l.writes = make(chan writeOp, writeQueueSize)
	writes := l.writes
	l.mu.Unlock()

	l.writerWg.Add(1)
	go func() {
		defer l.writerWg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case op, ok := <-writes:
				if !ok {
					return
				}
				l.write(ctx, op)
			}
		}
	}()
}

// Close 处理完已排队的写入后退出 writer
func (l *Log) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		if l.writes != nil {
			close(l.writes)
			l.writes = nil
		}
		l.mu.Unlock()
		l.writerWg.Wait()
	})
}

func (l *Log) write(ctx context.Context, op writeOp) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	var err error
	if op.clear {
		err = l.store.Clear(wctx)
	} else if err = l.store.Push(wctx, op.outcome, l.capacity); err != nil {
		l.log.Warnf("persist outcome %s failed: %v", op.outcome.ID, err)
	}
	if op.done != nil {
		op.done <- err
	}
}

// Enqueue 写内存并排队持久化，不阻塞；队列满时只告警丢弃持久化
func (l *Log) Enqueue(o wheel.Outcome) {
	l.mu.Lock()
	l.appendLocked(o)
	writes := l.writes
	if writes != nil {
		select {
		case writes <- writeOp{outcome: o}:
		default:
			l.log.Warnf("history write queue full, drop persist of %s", o.ID)
		}
	}
	l.mu.Unlock()
	if writes == nil {
		l.Persist(context.Background(), o)
	}
}

// List 返回副本
func (l *Log) List(order Order) []wheel.Outcome {
	l.mu.RLock()
	out := slices.Clone(l.items)
	l.mu.RUnlock()
	if order == OldestFirst {
		slices.Reverse(out)
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Log) Capacity() int { return l.capacity }

// Clear 清空内存与存储；writer 运行时排在已入队的写入之后执行
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	l.items = nil
	writes := l.writes
	if l.store == nil || writes == nil {
		l.mu.Unlock()
		if l.store == nil {
			return nil
		}
		return l.store.Clear(ctx)
	}
	done := make(chan error, 1)
	select {
	case writes <- writeOp{clear: true, done: done}:
	case <-ctx.Done():
		l.mu.Unlock()
		return ctx.Err()
	}
	l.mu.Unlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MemoryStore 进程内存储，未配置 Redis 时使用
type MemoryStore struct {
	mu    sync.Mutex
	items []wheel.Outcome
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) ([]wheel.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items), nil
}

func (m *MemoryStore) Push(_ context.Context, o wheel.Outcome, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = slices.Insert(m.items, 0, o)
	if limit > 0 && len(m.items) > limit {
		m.items = m.items[:limit]
	}
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

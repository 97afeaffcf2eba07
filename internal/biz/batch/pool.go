package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Pool 批量任务池
type Pool struct {
	mu      sync.RWMutex
	batches map[string]*Batch
}

func NewPool() *Pool {
	return &Pool{batches: make(map[string]*Batch)}
}

func (p *Pool) Add(b *Batch) {
	p.mu.Lock()
	p.batches[b.ID()] = b
	p.mu.Unlock()
}

func (p *Pool) Get(id string) (*Batch, bool) {
	p.mu.RLock()
	b, ok := p.batches[id]
	p.mu.RUnlock()
	return b, ok
}

// List 按创建时间倒序
func (p *Pool) List() []*Batch {
	p.mu.RLock()
	out := make([]*Batch, 0, len(p.batches))
	for _, b := range p.batches {
		out = append(out, b)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out
}

func (p *Pool) Remove(id string) (*Batch, bool) {
	p.mu.Lock()
	b, ok := p.batches[id]
	if ok {
		delete(p.batches, id)
	}
	p.mu.Unlock()
	return b, ok
}

// Active 未结束的批量数
func (p *Pool) Active() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, b := range p.batches {
		if !b.Status().Terminal() {
			n++
		}
	}
	return n
}

// StartAutoCleanup 周期清理过期批量，ctx 取消后退出
func (p *Pool) StartAutoCleanup(ctx context.Context, logger log.Logger, retention, interval time.Duration, onDelete func(id string)) {
	l := log.NewHelper(logger)
	l.Infof("batch cleaner started, retention=%v, interval=%v", retention, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Info("closing batch cleaner")
			return
		case <-ticker.C:
			if ids := p.CleanupExpired(retention); len(ids) > 0 {
				l.Infof("batch cleanup: deleted %d expired batches", len(ids))
				if onDelete != nil {
					for _, id := range ids {
						onDelete(id)
					}
				}
			}
		}
	}
}

// CleanupExpired 删除结束时间早于 now-retention 的终态批量，返回删除的 ID
func (p *Pool) CleanupExpired(retention time.Duration) []string {
	cutoff := time.Now().Add(-retention)

	p.mu.Lock()
	defer p.mu.Unlock()

	var deleted []string
	for id, b := range p.batches {
		if !b.Status().Terminal() {
			continue
		}
		finishedAt := b.FinishedAt()
		if finishedAt.IsZero() || !finishedAt.Before(cutoff) {
			continue
		}
		delete(p.batches, id)
		deleted = append(deleted, id)
	}
	return deleted
}

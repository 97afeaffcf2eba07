package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roulette/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/log"
)

func outcome(i int) wheel.Outcome {
	return wheel.Outcome{ID: fmt.Sprintf("o-%d", i), Number: i % 37}
}

func TestLogCapAndOrder(t *testing.T) {
	l := NewLog(nil, 0, log.DefaultLogger)
	for i := 1; i <= 25; i++ {
		l.Append(outcome(i))
	}
	if l.Len() != DefaultCapacity {
		t.Fatalf("长度 %d, want %d", l.Len(), DefaultCapacity)
	}
	got := l.List(NewestFirst)
	for i, o := range got {
		if want := fmt.Sprintf("o-%d", 25-i); o.ID != want {
			t.Fatalf("第 %d 条 %s, want %s", i, o.ID, want)
		}
	}
	oldest := l.List(OldestFirst)
	if oldest[0].ID != "o-6" || oldest[len(oldest)-1].ID != "o-25" {
		t.Errorf("正序错误: first=%s last=%s", oldest[0].ID, oldest[len(oldest)-1].ID)
	}
	// List 返回副本
	got[0].ID = "mutated"
	if l.List(NewestFirst)[0].ID != "o-25" {
		t.Errorf("List 不应暴露内部切片")
	}
}

type brokenStore struct{ MemoryStore }

func (b *brokenStore) Load(context.Context) ([]wheel.Outcome, error) {
	return nil, ErrCorrupt
}

func (b *brokenStore) Push(context.Context, wheel.Outcome, int) error {
	return errors.New("unavailable")
}

func TestLogCorruptStoreStartsEmpty(t *testing.T) {
	l := NewLog(&brokenStore{}, 5, log.DefaultLogger)
	l.Load(context.Background())
	if l.Len() != 0 {
		t.Fatalf("损坏存储应得到空历史, len=%d", l.Len())
	}
	// 持久化失败不影响内存
	l.Record(context.Background(), outcome(1))
	if l.Len() != 1 {
		t.Errorf("持久化失败后内存应保留, len=%d", l.Len())
	}
}

func TestLogPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	l := NewLog(store, 3, log.DefaultLogger)
	for i := 1; i <= 5; i++ {
		l.Record(ctx, outcome(i))
	}

	restored := NewLog(store, 3, log.DefaultLogger)
	restored.Load(ctx)
	got := restored.List(NewestFirst)
	if len(got) != 3 || got[0].ID != "o-5" || got[2].ID != "o-3" {
		t.Fatalf("恢复结果错误: %+v", got)
	}

	if err := restored.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	items, _ := store.Load(ctx)
	if restored.Len() != 0 || len(items) != 0 {
		t.Errorf("Clear 后应为空")
	}
}

// slowStore 记录写入顺序，Push 人为变慢
type slowStore struct {
	MemoryStore
	mu  sync.Mutex
	ops []string
}

func (s *slowStore) Push(ctx context.Context, o wheel.Outcome, limit int) error {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	s.ops = append(s.ops, o.ID)
	s.mu.Unlock()
	return s.MemoryStore.Push(ctx, o, limit)
}

func (s *slowStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.ops = append(s.ops, "clear")
	s.mu.Unlock()
	return s.MemoryStore.Clear(ctx)
}

func TestWriterKeepsOrderAcrossClear(t *testing.T) {
	ctx := context.Background()
	store := &slowStore{}
	l := NewLog(store, 10, log.DefaultLogger)
	l.StartWriter(ctx)
	defer l.Close()

	for i := 1; i <= 3; i++ {
		l.Enqueue(outcome(i))
	}
	if l.Len() != 3 {
		t.Fatalf("入队后内存应立即可见, len=%d", l.Len())
	}
	if err := l.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	l.Enqueue(outcome(4))
	l.Close()

	want := []string{"o-1", "o-2", "o-3", "clear", "o-4"}
	if fmt.Sprint(store.ops) != fmt.Sprint(want) {
		t.Fatalf("写入顺序 %v, want %v", store.ops, want)
	}
	items, _ := store.MemoryStore.Load(ctx)
	if len(items) != 1 || items[0].ID != "o-4" {
		t.Errorf("清空前的结果不应写回: %+v", items)
	}
}

func TestParseOrder(t *testing.T) {
	if ParseOrder("oldest") != OldestFirst || ParseOrder("") != NewestFirst || ParseOrder("newest") != NewestFirst {
		t.Errorf("ParseOrder 错误")
	}
}

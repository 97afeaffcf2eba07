package data

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roulette/internal/biz/batch"
	"roulette/internal/biz/history"
	"roulette/internal/biz/wheel"
	"roulette/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

func TestHistoryKey(t *testing.T) {
	if got := historyKey(""); got != "roulette_history:default" {
		t.Errorf("默认 key: %s", got)
	}
	if got := historyKey("table-7"); got != "roulette_history:table-7" {
		t.Errorf("key: %s", got)
	}
}

func TestDecodeOutcomes(t *testing.T) {
	o := wheel.Outcome{ID: "a", Number: 32, Color: wheel.Red, WheelDirection: wheel.Clockwise, BallDirection: wheel.CounterClockwise}
	s, err := json.MarshalToString(o)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeOutcomes([]string{s})
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if len(got) != 1 || got[0].Number != 32 || got[0].BallDirection != wheel.CounterClockwise {
		t.Errorf("解码结果: %+v", got)
	}

	for _, bad := range []string{"{not json", `{"number":99}`} {
		if _, err := decodeOutcomes([]string{s, bad}); !errors.Is(err, history.ErrCorrupt) {
			t.Errorf("%q 应返回 ErrCorrupt, got %v", bad, err)
		}
	}
}

func TestNewHistoryStoreWithoutRedis(t *testing.T) {
	st := NewHistoryStore(nil, &conf.Roulette{}, log.DefaultLogger)
	if _, ok := st.(*history.MemoryStore); !ok {
		t.Fatalf("无 Redis 应退化为内存存储, got %T", st)
	}
}

func TestNextBatchIDWithoutRedis(t *testing.T) {
	r := &dataRepo{data: &Data{}, log: log.NewHelper(log.DefaultLogger)}
	a, b := r.NextBatchID(context.Background()), r.NextBatchID(context.Background())
	if a == b {
		t.Errorf("批次号重复: %s", a)
	}
	if !strings.HasPrefix(a, time.Now().Format("20060102")+"-") {
		t.Errorf("批次号应以日期开头: %s", a)
	}
}

func TestBatchReportRoundTrip(t *testing.T) {
	rep := &batch.Report{
		BatchID:   "20261015-3",
		Status:    batch.StatusCompleted,
		Completed: 3,
		ChiSquare: 12.5,
		Uniform:   true,
		WallTime:  1500 * time.Millisecond,
		Physics:   wheel.DefaultConfig(),
	}
	rep.Counts[17] = 3

	row, err := toBatchReport(rep)
	if err != nil {
		t.Fatal(err)
	}
	back, err := row.toReport()
	if err != nil {
		t.Fatal(err)
	}
	if back.Counts != rep.Counts || back.Status != batch.StatusCompleted || back.WallTime != rep.WallTime || back.Physics != rep.Physics {
		t.Errorf("报告转换不一致: %+v", back)
	}
}

func TestSkipWithoutBackends(t *testing.T) {
	r := &dataRepo{data: &Data{}, log: log.NewHelper(log.DefaultLogger)}
	if err := r.SaveReport(context.Background(), &batch.Report{BatchID: "x"}); err != nil {
		t.Errorf("未配置 MySQL 时应跳过: %v", err)
	}
	if rep, err := r.LoadReport(context.Background(), "x"); rep != nil || err != nil {
		t.Errorf("未配置 MySQL 时应返回空")
	}
	if _, err := r.UploadBytes(context.Background(), "", "k", "text/html", nil); !errors.Is(err, errS3NotConfigured) {
		t.Errorf("未配置 S3 应报错: %v", err)
	}
}

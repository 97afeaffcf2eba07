package zap

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core))

	h := log.NewHelper(log.With(l, "module", "wheel"))
	h.Infof("spin resolved: %d", 32)
	_ = l.Log(log.LevelWarn, "odd")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries=%d", len(entries))
	}
	if entries[0].Message != "spin resolved: 32" || entries[0].ContextMap()["module"] != "wheel" {
		t.Errorf("entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["odd"] != "!MISSING-VALUE" {
		t.Errorf("奇数 keyvals 应补齐: %+v", entries[1].ContextMap())
	}
}

func TestSetLevel(t *testing.T) {
	l := NewLoggerWithConfig(&Config{Level: "info"})
	if l.ZapLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("info 级别不应输出 debug")
	}
	if err := l.SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	if !l.ZapLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("调整后应输出 debug")
	}
	if err := l.SetLevel("loud"); err == nil {
		t.Errorf("非法级别应报错")
	}
}

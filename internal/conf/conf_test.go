package conf

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
)

func TestDurationUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{`"500ms"`, 500 * time.Millisecond},
		{`"1.5s"`, 1500 * time.Millisecond},
		{`2`, 2 * time.Second},
		{`"0.25"`, 250 * time.Millisecond},
		{`null`, 0},
	}
	for _, c := range cases {
		var d Duration
		if err := jsoniter.Unmarshal([]byte(c.in), &d); err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if d.Duration != c.want {
			t.Errorf("%s => %v, want %v", c.in, d.Duration, c.want)
		}
	}

	var d Duration
	if err := jsoniter.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Errorf("非法时长应报错")
	}
}

func TestBootstrapScan(t *testing.T) {
	raw := `{
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "3s"}},
		"roulette": {
			"physics": {"wheel_rpm": 25, "ball_rpm": 100},
			"auto_spin": {"enabled": true, "delay": "750ms"},
			"batch": {"max_concurrent": 2, "step": "16ms"}
		}
	}`
	var bc Bootstrap
	if err := jsoniter.Unmarshal([]byte(raw), &bc); err != nil {
		t.Fatal(err)
	}
	if bc.Server.Http.Timeout.AsDuration() != 3*time.Second {
		t.Errorf("timeout=%v", bc.Server.Http.Timeout.AsDuration())
	}
	if bc.Roulette.GetPhysics().WheelRpm != 25 {
		t.Errorf("wheel_rpm=%v", bc.Roulette.GetPhysics().WheelRpm)
	}
	if !bc.Roulette.GetAutoSpin().GetEnabled() || bc.Roulette.GetAutoSpin().GetDelay().AsDuration() != 750*time.Millisecond {
		t.Errorf("auto_spin=%+v", bc.Roulette.GetAutoSpin())
	}
	if bc.Roulette.GetBatch().GetMaxConcurrent() != 2 {
		t.Errorf("max_concurrent=%d", bc.Roulette.GetBatch().GetMaxConcurrent())
	}

	// 未配置的节点 getter 不 panic
	if bc.Data.GetRedis() != nil || bc.Roulette.GetHistory().GetCapacity() != 0 {
		t.Errorf("nil getter 异常")
	}
	if got := bc.Roulette.GetBatch().GetRetention().AsDurationOr(time.Hour); got != time.Hour {
		t.Errorf("AsDurationOr=%v", got)
	}
}

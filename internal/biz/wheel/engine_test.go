package wheel

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

const frame = time.Second / 60

// fixedRand 固定返回 v
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	e, fallbacks := NewEngine(DefaultConfig(), opts...)
	if len(fallbacks) != 0 {
		t.Fatalf("默认配置不应回退: %v", fallbacks)
	}
	return e
}

func TestResolve(t *testing.T) {
	cases := []struct {
		angle float64
		want  int
	}{
		{0, 0},
		{9.73, 32},
		{360, 0},
		{720 + 9.73, 32},
		{-9.73, 26},
		{4.8, 0},
		{4.9, 32},
		{359.9, 0},
	}
	for _, c := range cases {
		if got := Resolve(c.angle); got != c.want {
			t.Errorf("Resolve(%v) = %d, want %d", c.angle, got, c.want)
		}
		if Resolve(c.angle) != Resolve(c.angle) {
			t.Errorf("Resolve(%v) 不确定", c.angle)
		}
	}
}

func TestPocketAngleRoundTrip(t *testing.T) {
	for n := 0; n <= 36; n++ {
		a, ok := PocketAngle(n)
		if !ok {
			t.Fatalf("号码 %d 不在轮盘上", n)
		}
		if got := Resolve(a); got != n {
			t.Errorf("Resolve(PocketAngle(%d)) = %d", n, got)
		}
	}
	if _, ok := PocketAngle(37); ok {
		t.Errorf("37 不应存在")
	}
}

func TestColorOf(t *testing.T) {
	if ColorOf(0) != Green {
		t.Errorf("0 应为绿色")
	}
	reds, blacks := 0, 0
	for n := 1; n <= 36; n++ {
		switch ColorOf(n) {
		case Red:
			reds++
		case Black:
			blacks++
		default:
			t.Errorf("%d 颜色错误", n)
		}
	}
	if reds != 18 || blacks != 18 {
		t.Errorf("红黑数量: %d/%d", reds, blacks)
	}
	if ColorOf(32) != Red || ColorOf(15) != Black {
		t.Errorf("32 应红，15 应黑")
	}
}

func TestDecay(t *testing.T) {
	got := Decay(100, 0.9985, 1, 60)
	want := 100 * math.Pow(0.9985, 60)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Decay = %v, want %v", got, want)
	}
	// 两个半步等于一个整步
	half := Decay(Decay(100, 0.9985, 0.5, 60), 0.9985, 0.5, 60)
	if math.Abs(half-got) > 1e-9 {
		t.Errorf("分步衰减不一致: %v vs %v", half, got)
	}
}

func TestDropThreshold(t *testing.T) {
	tu := DefaultTuning()
	if got := DropThreshold(0, tu); got != 120 {
		t.Errorf("tilt=0 阈值 %v", got)
	}
	if got := DropThreshold(2, tu); got != 130 {
		t.Errorf("tilt=2 阈值 %v", got)
	}
	if !ShouldDrop(-119, 0, tu) || ShouldDrop(121, 0, tu) {
		t.Errorf("ShouldDrop 判定错误")
	}
}

func TestScatterZeroVariance(t *testing.T) {
	sc := NewScatter(fixedRand(0.9), 0, DefaultTuning())
	if sc.Kick != 0 || sc.RadialKick != 0 {
		t.Fatalf("variance=0 不应有扰动: %+v", sc)
	}
	sc = NewScatter(fixedRand(1), 1, DefaultTuning())
	if sc.Kick != 10 || sc.RadialKick != 2.5 {
		t.Errorf("扰动幅度错误: %+v", sc)
	}
}

func TestSanitize(t *testing.T) {
	cfg := PhysicsConfig{
		WheelRPM:        math.NaN(),
		BallRPM:         -3,
		Restitution:     1.5,
		ScatterVariance: -1,
		TiltAngle:       math.Inf(1),
		Duration:        0,
	}
	got, fallbacks := cfg.Sanitize()
	if got != DefaultConfig() {
		t.Errorf("应全部回退默认值: %+v", got)
	}
	if len(fallbacks) != 6 {
		t.Errorf("回退字段数 %d: %v", len(fallbacks), fallbacks)
	}

	ok := PhysicsConfig{WheelRPM: 0, BallRPM: 80, Restitution: 1, ScatterVariance: 0, TiltAngle: 3, Duration: 2}
	got, fallbacks = ok.Sanitize()
	if got != ok || len(fallbacks) != 0 {
		t.Errorf("合法配置被修改: %+v %v", got, fallbacks)
	}

	huge := DefaultConfig()
	huge.BallRPM = 1e308
	huge.WheelRPM = maxRPM + 1
	got, fallbacks = huge.Sanitize()
	if got.BallRPM != DefaultBallRPM || got.WheelRPM != DefaultWheelRPM || len(fallbacks) != 2 {
		t.Errorf("超大 RPM 应回退: %+v %v", got, fallbacks)
	}
	edge := DefaultConfig()
	edge.BallRPM = maxRPM
	if _, fallbacks = edge.Sanitize(); len(fallbacks) != 0 {
		t.Errorf("上限值应合法: %v", fallbacks)
	}
}

func TestHugeRPMStillResolves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BallRPM = 1e308
	e, fallbacks := NewEngine(cfg, WithRand(rand.New(rand.NewPCG(3, 4))))
	if len(fallbacks) != 1 {
		t.Fatalf("fallbacks=%v", fallbacks)
	}
	var resolved bool
	e.OnSpinComplete(func(Outcome) { resolved = true })
	e.StartSpin()
	for i := 0; i < 36000 && !resolved; i++ {
		e.Advance(frame)
	}
	if !resolved {
		t.Fatalf("一局未结束: %+v", e.State())
	}
}

func TestTuningFrictionBelowOne(t *testing.T) {
	tn := DefaultTuning()
	tn.BallFriction, tn.FlightFriction, tn.SettleFriction, tn.WheelFriction = 1, 1, 1, 1
	got := tn.WithDefaults()
	d := DefaultTuning()
	if got.BallFriction != d.BallFriction || got.FlightFriction != d.FlightFriction || got.SettleFriction != d.SettleFriction {
		t.Errorf("球摩擦系数为 1 应回退: %+v", got)
	}
	if got.WheelFriction != 1 {
		t.Errorf("轮盘摩擦允许为 1, got %v", got.WheelFriction)
	}
}

func TestStartSpinNoopWhileActive(t *testing.T) {
	e := newTestEngine(t)
	if !e.StartSpin() {
		t.Fatalf("空闲时应能开局")
	}
	e.Advance(frame)
	before := e.State()
	if e.StartSpin() {
		t.Fatalf("进行中开局应返回 false")
	}
	if e.State() != before {
		t.Errorf("进行中开局不应修改状态")
	}
}

func TestDirectionAlternation(t *testing.T) {
	e := newTestEngine(t)
	want := []Direction{Clockwise, CounterClockwise, Clockwise, CounterClockwise}
	for i, w := range want {
		o, err := e.Simulate(frame, time.Minute)
		if err != nil {
			t.Fatalf("第 %d 局: %v", i, err)
		}
		if o.WheelDirection != w || o.BallDirection != -w {
			t.Errorf("第 %d 局方向 wheel=%v ball=%v, want wheel=%v", i, o.WheelDirection, o.BallDirection, w)
		}
	}
}

func TestPhaseOrderAndRadiusBounds(t *testing.T) {
	e := newTestEngine(t)
	var outcomes []Outcome
	e.OnSpinComplete(func(o Outcome) { outcomes = append(outcomes, o) })

	e.StartSpin()
	seen := []Phase{PhaseSpinning}
	for i := 0; e.Busy(); i++ {
		if i > 60*120 {
			t.Fatalf("两分钟内未落定")
		}
		e.Advance(frame)
		s := e.State()
		if s.BallRadius < PocketRadius || s.BallRadius > RimRadius {
			t.Fatalf("半径越界: %v", s.BallRadius)
		}
		if s.Phase != seen[len(seen)-1] {
			seen = append(seen, s.Phase)
		}
	}
	want := []Phase{PhaseSpinning, PhaseDropping, PhaseSettling, PhaseIdle}
	if len(seen) != len(want) {
		t.Fatalf("阶段顺序 %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("阶段顺序 %v, want %v", seen, want)
		}
	}

	if len(outcomes) != 1 {
		t.Fatalf("回调次数 %d, want 1", len(outcomes))
	}
	o := outcomes[0]
	s := e.State()
	if o.Number != Resolve(s.BallAngle) || o.Color != ColorOf(o.Number) {
		t.Errorf("结果与最终角度不符: %+v", o)
	}
	if s.BallVelocity != 0 {
		t.Errorf("落定后球速应为 0: %v", s.BallVelocity)
	}
	if o.ID == "" || o.ResolvedAt.IsZero() {
		t.Errorf("结果缺少 ID 或时间戳: %+v", o)
	}
	t.Logf("number=%d color=%s elapsed=%.2fs hits=%d", o.Number, o.Color, o.Elapsed, o.DeflectorHits)

	// 空闲后继续推进不应再回调
	for i := 0; i < 10; i++ {
		e.Advance(frame)
	}
	if len(outcomes) != 1 {
		t.Errorf("空闲后又触发回调")
	}
}

func TestIdleFreezesState(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Simulate(frame, time.Minute); err != nil {
		t.Fatal(err)
	}
	before := e.State()
	for i := 0; i < 100; i++ {
		e.Advance(frame)
	}
	if e.State() != before {
		t.Errorf("空闲时状态被修改")
	}
}

func TestAdvanceClampsStep(t *testing.T) {
	e := newTestEngine(t)
	e.StartSpin()
	e.Advance(10 * time.Second)
	if got := e.State().Elapsed; math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("dt 未截断: elapsed=%v", got)
	}
	e.Advance(-time.Second)
	e.Advance(0)
	if got := e.State().Elapsed; math.Abs(got-0.1) > 1e-9 {
		t.Errorf("非正 dt 不应推进: elapsed=%v", got)
	}
}

func TestTickFirstCallOnlyRecords(t *testing.T) {
	e := newTestEngine(t)
	e.StartSpin()
	base := time.Unix(1000, 0)
	e.Tick(base)
	if e.State().Elapsed != 0 {
		t.Fatalf("首次 Tick 不应推进")
	}
	e.Tick(base.Add(50 * time.Millisecond))
	if got := e.State().Elapsed; math.Abs(got-0.05) > 1e-9 {
		t.Errorf("elapsed=%v, want 0.05", got)
	}
	e.Tick(base.Add(5 * time.Second))
	if got := e.State().Elapsed; math.Abs(got-0.15) > 1e-9 {
		t.Errorf("大间隔应截断: elapsed=%v", got)
	}
}

func TestNudge(t *testing.T) {
	e := newTestEngine(t)
	if !e.Nudge(10, -5) {
		t.Fatalf("空闲时应允许微调")
	}
	s := e.State()
	if s.WheelAngle != 10 || s.BallAngle != -5 {
		t.Errorf("微调结果 %+v", s)
	}
	if e.Nudge(math.NaN(), 0) {
		t.Errorf("NaN 应拒绝")
	}
	e.StartSpin()
	if e.Nudge(1, 1) {
		t.Errorf("进行中应拒绝微调")
	}
}

func TestDeflectorBounceAndRetrigger(t *testing.T) {
	e := newTestEngine(t, WithRand(fixedRand(0.5)))
	var impacts []Impact
	e.OnImpact(func(i Impact) { impacts = append(impacts, i) })

	e.state.Phase = PhaseDropping
	e.state.BallRadius = DeflectorRadius
	e.state.RadialVelocity = -20
	e.state.WheelAngle = 40
	e.state.BallAngle = 5 // 世界角 45，正对 1 号挡块

	e.checkDeflector()
	if len(impacts) != 1 || !impacts[0].Bounced || impacts[0].Deflector != 1 {
		t.Fatalf("应反弹一次: %+v", impacts)
	}
	if want := 20 * DefaultRestitution; math.Abs(e.state.RadialVelocity-want) > 1e-9 {
		t.Errorf("反弹速度 %v, want %v", e.state.RadialVelocity, want)
	}
	if e.state.DeflectorHits != 1 {
		t.Errorf("hits=%d", e.state.DeflectorHits)
	}

	// 未离开容差窗口前不再触发
	e.checkDeflector()
	if len(impacts) != 1 {
		t.Fatalf("同一挡块重复触发")
	}

	// 离开窗口后可再次触发
	e.state.BallAngle += 10
	e.checkDeflector()
	e.state.BallAngle -= 10
	e.checkDeflector()
	if len(impacts) != 2 {
		t.Errorf("离开后应能再次触发: %d", len(impacts))
	}
}

func TestDeflectorNoBounce(t *testing.T) {
	e := newTestEngine(t, WithRand(fixedRand(0.9)))
	e.state.Phase = PhaseDropping
	e.state.BallRadius = DeflectorRadius
	e.state.RadialVelocity = -20
	e.checkDeflector()
	if e.state.RadialVelocity != -20 || e.state.DeflectorHits != 0 {
		t.Errorf("概率未命中不应反弹: %+v", e.state)
	}
}

func TestDeflectorOutsideBand(t *testing.T) {
	e := newTestEngine(t, WithRand(fixedRand(0)))
	var impacts []Impact
	e.OnImpact(func(i Impact) { impacts = append(impacts, i) })

	e.state.Phase = PhaseDropping
	e.state.BallRadius = PocketRadius + 1
	e.state.RadialVelocity = -20
	e.state.WheelAngle = 40
	e.state.BallAngle = 5 // 世界角 45，正对挡块但不在挡块带内
	e.checkDeflector()
	if len(impacts) != 0 || e.state.RadialVelocity != -20 || e.state.DeflectorHits != 0 {
		t.Errorf("挡块带外不应触发: impacts=%+v state=%+v", impacts, e.state)
	}
}

func TestSetConfigLive(t *testing.T) {
	e := newTestEngine(t)
	fallbacks := e.SetConfig(PhysicsConfig{WheelRPM: 10, BallRPM: 90, Restitution: 0.3, ScatterVariance: 0.1, TiltAngle: 4, Duration: 3})
	if len(fallbacks) != 0 {
		t.Fatalf("不应回退: %v", fallbacks)
	}
	if e.State().TiltAngle != 4 {
		t.Errorf("倾角应立即生效")
	}
	e.StartSpin()
	if got := e.State().BallVelocity; math.Abs(got) != 540 {
		t.Errorf("球速 %v, want ±540", got)
	}
}

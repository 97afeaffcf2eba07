package wheel

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSpinActive  = errors.New("wheel: spin already in progress")
	ErrSpinTimeout = errors.New("wheel: spin did not settle within limit")
)

// Option 引擎选项
type Option func(*Engine)

// WithRand 替换随机源（扰动与反弹判定）
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.tuning = t.WithDefaults() }
}

// WithClock 结果时间戳所用时钟
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// Engine 轮盘与球的状态机。非并发安全，须由单一 goroutine 持有（见 spin.Loop）
type Engine struct {
	cfg    PhysicsConfig
	tuning Tuning
	rng    Rand
	now    func() time.Time
	newID  func() string

	state         State
	lastDeflector int
	lastTick      time.Time
	last          *Outcome

	onComplete []func(Outcome)
	onImpact   []func(Impact)
}

// NewEngine 创建空闲引擎，非法配置回退默认值并返回回退字段
func NewEngine(cfg PhysicsConfig, opts ...Option) (*Engine, []string) {
	e := &Engine{
		tuning:        DefaultTuning(),
		rng:           globalRand{},
		now:           time.Now,
		newID:         uuid.NewString,
		lastDeflector: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	fallbacks := e.SetConfig(cfg)
	e.state.BallRadius = RimRadius
	return e, fallbacks
}

func (e *Engine) State() State          { return e.state }
func (e *Engine) Config() PhysicsConfig { return e.cfg }
func (e *Engine) Tuning() Tuning        { return e.tuning }
func (e *Engine) Busy() bool            { return e.state.Phase != PhaseIdle }

// LastOutcome 最近一局结果
func (e *Engine) LastOutcome() (Outcome, bool) {
	if e.last == nil {
		return Outcome{}, false
	}
	return *e.last, true
}

// SetConfig 更新配置：倾角/恢复系数/扰动立即生效，RPM 下局生效
func (e *Engine) SetConfig(cfg PhysicsConfig) []string {
	clean, fallbacks := cfg.Sanitize()
	e.cfg = clean
	e.state.TiltAngle = clean.TiltAngle
	return fallbacks
}

// OnSpinComplete 注册结果回调，在落定的那一帧内同步调用
func (e *Engine) OnSpinComplete(fn func(Outcome)) {
	e.onComplete = append(e.onComplete, fn)
}

func (e *Engine) OnImpact(fn func(Impact)) {
	e.onImpact = append(e.onImpact, fn)
}

// StartSpin 从当前角度开局；进行中返回 false 且不做任何事
func (e *Engine) StartSpin() bool {
	if e.Busy() {
		return false
	}
	dir := Clockwise
	if e.state.LastWheelDirection == Clockwise {
		dir = CounterClockwise
	}
	s := &e.state
	s.LastWheelDirection = dir
	s.WheelDirection = dir
	s.BallDirection = -dir
	s.WheelVelocity = DegreesPerSecond(e.cfg.WheelRPM) * float64(dir)
	s.BallVelocity = DegreesPerSecond(e.cfg.BallRPM) * float64(-dir)
	s.BallRadius = RimRadius
	s.RadialVelocity = 0
	s.Elapsed = 0
	s.DeflectorHits = 0
	s.Phase = PhaseSpinning
	e.lastDeflector = -1
	return true
}

// Nudge 空闲时手动微调角度，进行中拒绝
func (e *Engine) Nudge(wheelDelta, ballDelta float64) bool {
	if e.Busy() || !finite(wheelDelta) || !finite(ballDelta) {
		return false
	}
	e.state.WheelAngle += wheelDelta
	e.state.BallAngle += ballDelta
	return true
}

// Tick 按距上次 Tick 的时间推进，首次仅记录基准时间
func (e *Engine) Tick(now time.Time) {
	prev := e.lastTick
	e.lastTick = now
	if prev.IsZero() {
		return
	}
	e.Advance(now.Sub(prev))
}

// Advance 积分一步，dt 截断到 MaxStep；dt<=0 或空闲时不处理
func (e *Engine) Advance(dt time.Duration) {
	if dt <= 0 || !e.Busy() {
		return
	}
	dt = min(dt, e.tuning.MaxStep)
	sec := dt.Seconds()
	e.state.Elapsed += sec

	switch e.state.Phase {
	case PhaseSpinning:
		e.stepSpinning(sec)
	case PhaseDropping:
		e.stepDropping(sec)
	case PhaseSettling:
		e.stepSettling(sec)
	}
}

// Simulate 固定步长无头跑完一局
func (e *Engine) Simulate(step, limit time.Duration) (Outcome, error) {
	if !e.StartSpin() {
		return Outcome{}, ErrSpinActive
	}
	for e.Busy() {
		if e.state.Elapsed > limit.Seconds() {
			return Outcome{}, ErrSpinTimeout
		}
		e.Advance(step)
	}
	return *e.last, nil
}

func (e *Engine) rotateWheel(sec float64) {
	s := &e.state
	s.WheelVelocity = Decay(s.WheelVelocity, e.tuning.WheelFriction, sec, e.tuning.FrameRate)
	s.WheelAngle += s.WheelVelocity * sec
}

func (e *Engine) stepSpinning(sec float64) {
	s := &e.state
	e.rotateWheel(sec)
	s.BallVelocity = Decay(s.BallVelocity, e.tuning.BallFriction, sec, e.tuning.FrameRate)
	s.BallAngle += s.BallVelocity * sec
	if ShouldDrop(s.BallVelocity, s.TiltAngle, e.tuning) {
		s.Phase = PhaseDropping
		s.RadialVelocity = 0
	}
}

func (e *Engine) stepDropping(sec float64) {
	s := &e.state
	e.rotateWheel(sec)
	s.BallVelocity = Decay(s.BallVelocity, e.tuning.FlightFriction, sec, e.tuning.FrameRate)
	s.BallAngle += s.BallVelocity * sec

	s.RadialVelocity -= e.tuning.RadialAcceleration * sec
	s.BallRadius += s.RadialVelocity * sec
	if s.BallRadius >= RimRadius {
		s.BallRadius = RimRadius
		s.RadialVelocity = min(s.RadialVelocity, 0)
	}

	if s.BallRadius <= PocketRadius {
		sc := NewScatter(e.rng, e.cfg.ScatterVariance, e.tuning)
		s.BallAngle += sc.Kick
		s.BallRadius = PocketRadius
		s.RadialVelocity = 0
		s.Phase = PhaseSettling
		e.emitImpact(Impact{Deflector: -1, Kick: sc.Kick, RadialKick: sc.RadialKick})
		return
	}
	e.checkDeflector()
}

func (e *Engine) checkDeflector() {
	s := &e.state
	if math.Abs(s.BallRadius-DeflectorRadius) > e.tuning.DeflectorBandHalfWidth {
		e.lastDeflector = -1
		return
	}
	idx, dist := deflectorAt(s.WorldBallAngle(), e.tuning.DeflectorCount)
	if dist > e.tuning.DeflectorTolerance {
		e.lastDeflector = -1
		return
	}
	if idx == e.lastDeflector {
		return
	}
	e.lastDeflector = idx

	if s.DeflectorHits >= e.tuning.MaxDeflectorHits || e.rng.Float64() >= e.tuning.BounceProbability {
		e.emitImpact(Impact{Deflector: idx})
		return
	}
	sc := NewScatter(e.rng, e.cfg.ScatterVariance, e.tuning)
	s.DeflectorHits++
	s.RadialVelocity = math.Abs(s.RadialVelocity) * e.cfg.Restitution
	s.BallAngle += sc.Kick
	s.BallRadius = clamp(s.BallRadius+sc.RadialKick, PocketRadius, RimRadius)
	e.emitImpact(Impact{Deflector: idx, Kick: sc.Kick, RadialKick: sc.RadialKick, Bounced: true})
}

func (e *Engine) stepSettling(sec float64) {
	s := &e.state
	e.rotateWheel(sec)
	s.BallVelocity = Decay(s.BallVelocity, e.tuning.SettleFriction, sec, e.tuning.FrameRate)
	s.BallAngle += s.BallVelocity * sec
	if math.Abs(s.BallVelocity) >= e.tuning.SettleEpsilon {
		return
	}
	s.BallVelocity = 0
	s.Phase = PhaseIdle
	e.resolve()
}

func (e *Engine) resolve() {
	s := e.state
	number := Resolve(s.BallAngle)
	o := Outcome{
		ID:             e.newID(),
		Number:         number,
		Color:          ColorOf(number),
		WheelAngle:     s.WheelAngle,
		BallAngle:      s.BallAngle,
		WheelDirection: s.WheelDirection,
		BallDirection:  s.BallDirection,
		Duration:       e.cfg.Duration,
		Elapsed:        s.Elapsed,
		DeflectorHits:  s.DeflectorHits,
		ResolvedAt:     e.now(),
	}
	e.last = &o
	for _, fn := range e.onComplete {
		fn(o)
	}
}

func (e *Engine) emitImpact(i Impact) {
	for _, fn := range e.onImpact {
		fn(i)
	}
}

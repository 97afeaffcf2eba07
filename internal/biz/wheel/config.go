package wheel

import "time"

// 物理参数默认值，配置非法时回退
const (
	DefaultWheelRPM        = 20.0
	DefaultBallRPM         = 105.0
	DefaultRestitution     = 0.55
	DefaultScatterVariance = 0.5
	DefaultTiltAngle       = 0.0
	DefaultDuration        = 5.0

	maxTiltAngle = 45.0
	maxRPM       = 1000.0
)

// DegreesPerSecond RPM 转 度/秒
func DegreesPerSecond(rpm float64) float64 {
	return rpm * 6
}

// PhysicsConfig 外部物理配置；Duration 仅作参考，不驱动模拟
type PhysicsConfig struct {
	WheelRPM        float64 `json:"wheel_rpm"`
	BallRPM         float64 `json:"ball_rpm"`
	Restitution     float64 `json:"restitution"`
	ScatterVariance float64 `json:"scatter_variance"`
	TiltAngle       float64 `json:"tilt_angle"`
	Duration        float64 `json:"duration"` // 秒
}

// DefaultConfig 默认配置
func DefaultConfig() PhysicsConfig {
	return PhysicsConfig{
		WheelRPM:        DefaultWheelRPM,
		BallRPM:         DefaultBallRPM,
		Restitution:     DefaultRestitution,
		ScatterVariance: DefaultScatterVariance,
		TiltAngle:       DefaultTiltAngle,
		Duration:        DefaultDuration,
	}
}

// Sanitize 非法值回退为默认值，返回回退的字段名
func (c PhysicsConfig) Sanitize() (PhysicsConfig, []string) {
	var fallbacks []string
	fix := func(name string, v *float64, def float64, ok bool) {
		if !ok {
			*v = def
			fallbacks = append(fallbacks, name)
		}
	}
	fix("wheel_rpm", &c.WheelRPM, DefaultWheelRPM, validRPM(c.WheelRPM))
	fix("ball_rpm", &c.BallRPM, DefaultBallRPM, validRPM(c.BallRPM))
	fix("restitution", &c.Restitution, DefaultRestitution, finite(c.Restitution) && c.Restitution >= 0 && c.Restitution <= 1)
	fix("scatter_variance", &c.ScatterVariance, DefaultScatterVariance, finite(c.ScatterVariance) && c.ScatterVariance >= 0)
	fix("tilt_angle", &c.TiltAngle, DefaultTiltAngle, finite(c.TiltAngle) && c.TiltAngle >= 0 && c.TiltAngle <= maxTiltAngle)
	fix("duration", &c.Duration, DefaultDuration, finite(c.Duration) && c.Duration > 0)
	return c, fallbacks
}

// validRPM 上限 maxRPM，换算成度/秒后也必须有限
func validRPM(rpm float64) bool {
	return finite(rpm) && rpm >= 0 && rpm <= maxRPM && finite(DegreesPerSecond(rpm))
}

// Tuning 模拟用的经验常数，均可调
type Tuning struct {
	// 每帧摩擦系数（按 FrameRate 折算），见 Decay
	BallFriction   float64 `json:"ball_friction"`
	WheelFriction  float64 `json:"wheel_friction"`
	FlightFriction float64 `json:"flight_friction"`
	SettleFriction float64 `json:"settle_friction"`
	FrameRate      float64 `json:"frame_rate"`

	// 落球阈值 = DropBaseThreshold + tilt*TiltSensitivity（度/秒）
	DropBaseThreshold float64 `json:"drop_base_threshold"`
	TiltSensitivity   float64 `json:"tilt_sensitivity"`

	RadialAcceleration     float64 `json:"radial_acceleration"` // px/s²，向内
	DeflectorCount         int     `json:"deflector_count"`
	DeflectorTolerance     float64 `json:"deflector_tolerance"`       // 度
	DeflectorBandHalfWidth float64 `json:"deflector_band_half_width"` // 以 DeflectorRadius 为中心的半宽
	BounceProbability      float64 `json:"bounce_probability"`
	MaxDeflectorHits       int     `json:"max_deflector_hits"`
	KickScale              float64 `json:"kick_scale"`
	RadialKickScale        float64 `json:"radial_kick_scale"`

	SettleEpsilon float64       `json:"settle_epsilon"` // 度/秒
	MaxStep       time.Duration `json:"max_step"`
}

// DefaultTuning 默认经验值；球摩擦 0.9985 约 18s 由 100 RPM 降到 20 RPM
func DefaultTuning() Tuning {
	return Tuning{
		BallFriction:           0.9985,
		WheelFriction:          0.9998,
		FlightFriction:         0.9993,
		SettleFriction:         0.95,
		FrameRate:              60,
		DropBaseThreshold:      120,
		TiltSensitivity:        5,
		RadialAcceleration:     40,
		DeflectorCount:         8,
		DeflectorTolerance:     2.5,
		DeflectorBandHalfWidth: 10,
		BounceProbability:      0.7,
		MaxDeflectorHits:       8,
		KickScale:              10,
		RadialKickScale:        5,
		SettleEpsilon:          1,
		MaxStep:                100 * time.Millisecond,
	}
}

// WithDefaults 零值或越界字段取 DefaultTuning
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	// 球的三个摩擦系数必须 < 1，否则一局永远不会落球或停球
	friction := func(v *float64, def float64, allowOne bool) {
		if !finite(*v) || *v <= 0 || *v > 1 || (*v == 1 && !allowOne) {
			*v = def
		}
	}
	positive := func(v *float64, def float64) {
		if !finite(*v) || *v <= 0 {
			*v = def
		}
	}
	friction(&t.BallFriction, d.BallFriction, false)
	friction(&t.WheelFriction, d.WheelFriction, true)
	friction(&t.FlightFriction, d.FlightFriction, false)
	friction(&t.SettleFriction, d.SettleFriction, false)
	positive(&t.FrameRate, d.FrameRate)
	positive(&t.DropBaseThreshold, d.DropBaseThreshold)
	if !finite(t.TiltSensitivity) || t.TiltSensitivity < 0 {
		t.TiltSensitivity = d.TiltSensitivity
	}
	positive(&t.RadialAcceleration, d.RadialAcceleration)
	if t.DeflectorCount <= 0 {
		t.DeflectorCount = d.DeflectorCount
	}
	positive(&t.DeflectorTolerance, d.DeflectorTolerance)
	positive(&t.DeflectorBandHalfWidth, d.DeflectorBandHalfWidth)
	if !finite(t.BounceProbability) || t.BounceProbability < 0 || t.BounceProbability > 1 {
		t.BounceProbability = d.BounceProbability
	}
	if t.MaxDeflectorHits <= 0 {
		t.MaxDeflectorHits = d.MaxDeflectorHits
	}
	positive(&t.KickScale, d.KickScale)
	positive(&t.RadialKickScale, d.RadialKickScale)
	positive(&t.SettleEpsilon, d.SettleEpsilon)
	if t.MaxStep <= 0 {
		t.MaxStep = d.MaxStep
	}
	return t
}

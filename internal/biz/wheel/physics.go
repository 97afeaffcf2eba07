package wheel

import (
	"math"
	"math/rand/v2"
)

// Rand [0,1) 均匀随机源，*rand.Rand 即满足
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Decay 按 dt 折算每帧摩擦：v * f^(dt*frameRate)，与实际帧率无关
func Decay(v, f, dt, frameRate float64) float64 {
	return v * math.Pow(f, dt*frameRate)
}

// DropThreshold 球速低于该值（度/秒）即离开外沿
func DropThreshold(tilt float64, t Tuning) float64 {
	return t.DropBaseThreshold + tilt*t.TiltSensitivity
}

// ShouldDrop 是否开始落球
func ShouldDrop(ballVelocity, tilt float64, t Tuning) bool {
	return math.Abs(ballVelocity) < DropThreshold(tilt, t)
}

// Scatter 撞击挡块或落格时的随机扰动
type Scatter struct {
	Kick       float64 // 度
	RadialKick float64 // px
}

// NewScatter 抽取一次扰动，两项均与 variance 成正比
func NewScatter(r Rand, variance float64, t Tuning) Scatter {
	return Scatter{
		Kick:       (r.Float64()*2 - 1) * variance * t.KickScale,
		RadialKick: (r.Float64() - 0.5) * variance * t.RadialKickScale,
	}
}

// deflectorAt 距世界角最近的挡块及其角距
func deflectorAt(worldAngle float64, count int) (int, float64) {
	spacing := 360.0 / float64(count)
	idx := int(math.Round(normalizeDeg(worldAngle)/spacing)) % count
	return idx, angularDistance(worldAngle, float64(idx)*spacing)
}

package wheel

import (
	"fmt"
	"time"
)

// Phase 旋转阶段
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSpinning
	PhaseDropping
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSpinning:
		return "spinning"
	case PhaseDropping:
		return "dropping"
	case PhaseSettling:
		return "settling"
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Direction 旋转方向，顺时针为正
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	}
	return "none"
}

// State 实时物理量。角度累计不取模；BallAngle 相对轮盘
type State struct {
	WheelAngle         float64   `json:"wheel_angle"`
	BallAngle          float64   `json:"ball_angle"`
	WheelVelocity      float64   `json:"wheel_velocity"`
	BallVelocity       float64   `json:"ball_velocity"`
	WheelDirection     Direction `json:"wheel_direction"`
	BallDirection      Direction `json:"ball_direction"`
	BallRadius         float64   `json:"ball_radius"`
	RadialVelocity     float64   `json:"radial_velocity"`
	Phase              Phase     `json:"phase"`
	TiltAngle          float64   `json:"tilt_angle"`
	LastWheelDirection Direction `json:"last_wheel_direction"`
	Elapsed            float64   `json:"elapsed"` // 本局已模拟秒数
	DeflectorHits      int       `json:"deflector_hits"`
}

// WorldBallAngle 球的世界坐标角
func (s State) WorldBallAngle() float64 {
	return s.WheelAngle + s.BallAngle
}

// Outcome 单局结果，发出后不可变
type Outcome struct {
	ID             string    `json:"id"`
	Number         int       `json:"number"`
	Color          Color     `json:"color"`
	WheelAngle     float64   `json:"wheel_angle"`
	BallAngle      float64   `json:"ball_angle"`
	WheelDirection Direction `json:"wheel_direction"`
	BallDirection  Direction `json:"ball_direction"`
	Duration       float64   `json:"duration"` // 配置值，仅参考
	Elapsed        float64   `json:"elapsed"`  // 实际模拟时长
	DeflectorHits  int       `json:"deflector_hits"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

// Impact 每次碰到挡块及落格时发出；落格时 Deflector 为 -1
type Impact struct {
	Deflector  int     `json:"deflector"`
	Kick       float64 `json:"kick"`
	RadialKick float64 `json:"radial_kick"`
	Bounced    bool    `json:"bounced"`
}

package v1

import (
	"fmt"
	"math"
	"time"
)

// PhysicsConfig 物理参数
type PhysicsConfig struct {
	WheelRpm        float64 `json:"wheel_rpm"`
	BallRpm         float64 `json:"ball_rpm"`
	Restitution     float64 `json:"restitution"`
	ScatterVariance float64 `json:"scatter_variance"`
	TiltAngle       float64 `json:"tilt_angle"`
	Duration        float64 `json:"duration"`
}

// Validate 只拒绝非数值，越界值由服务端回退默认并在 fallbacks 中返回
func (x *PhysicsConfig) Validate() error {
	if x == nil {
		return nil
	}
	for name, v := range map[string]float64{
		"wheel_rpm":        x.WheelRpm,
		"ball_rpm":         x.BallRpm,
		"restitution":      x.Restitution,
		"scatter_variance": x.ScatterVariance,
		"tilt_angle":       x.TiltAngle,
		"duration":         x.Duration,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrorInvalidArgument("%s must be a finite number", name)
		}
	}
	return nil
}

// WheelState 渲染所需的实时状态
type WheelState struct {
	WheelAngle     float64 `json:"wheel_angle"`
	BallAngle      float64 `json:"ball_angle"`
	WheelVelocity  float64 `json:"wheel_velocity"`
	BallVelocity   float64 `json:"ball_velocity"`
	WheelDirection int32   `json:"wheel_direction"`
	BallDirection  int32   `json:"ball_direction"`
	BallRadius     float64 `json:"ball_radius"`
	RadialVelocity float64 `json:"radial_velocity"`
	Phase          string  `json:"phase"`
	TiltAngle      float64 `json:"tilt_angle"`
	Elapsed        float64 `json:"elapsed"`
	DeflectorHits  int32   `json:"deflector_hits"`
}

// Outcome 一局结果
type Outcome struct {
	Id             string    `json:"id"`
	Number         int32     `json:"number"`
	Color          string    `json:"color"`
	WheelAngle     float64   `json:"wheel_angle"`
	BallAngle      float64   `json:"ball_angle"`
	WheelDirection int32     `json:"wheel_direction"`
	BallDirection  int32     `json:"ball_direction"`
	Elapsed        float64   `json:"elapsed"`
	DeflectorHits  int32     `json:"deflector_hits"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

type Empty struct{}

type GetStateRequest struct{}

type GetStateReply struct {
	State    *WheelState    `json:"state"`
	Config   *PhysicsConfig `json:"config"`
	Frame    uint64         `json:"frame"`
	AutoSpin bool           `json:"auto_spin"`
	Last     *Outcome       `json:"last,omitempty"`
}

type SpinRequest struct{}

// SpinReply 已有一局进行中时 started=false，不视为错误
type SpinReply struct {
	Started bool `json:"started"`
}

type GetConfigRequest struct{}

type SetConfigRequest struct {
	Config *PhysicsConfig `json:"config"`
}

func (x *SetConfigRequest) Validate() error {
	if x.Config == nil {
		return ErrorInvalidArgument("config is required")
	}
	return x.Config.Validate()
}

type ConfigReply struct {
	Config    *PhysicsConfig `json:"config"`
	Fallbacks []string       `json:"fallbacks,omitempty"`
}

type NudgeRequest struct {
	WheelDelta float64 `json:"wheel_delta"`
	BallDelta  float64 `json:"ball_delta"`
}

func (x *NudgeRequest) Validate() error {
	if math.IsNaN(x.WheelDelta) || math.IsInf(x.WheelDelta, 0) || math.IsNaN(x.BallDelta) || math.IsInf(x.BallDelta, 0) {
		return ErrorInvalidArgument("nudge deltas must be finite")
	}
	return nil
}

type NudgeReply struct {
	Applied bool `json:"applied"`
}

type SetAutoSpinRequest struct {
	Enabled bool `json:"enabled"`
}

type AutoSpinReply struct {
	Enabled bool `json:"enabled"`
	Pending bool `json:"pending"`
}

type ListHistoryRequest struct {
	Order string `json:"order"` // newest|oldest
	Limit int32  `json:"limit"`
}

func (x *ListHistoryRequest) Validate() error {
	switch x.Order {
	case "", "newest", "oldest", "asc", "desc":
	default:
		return ErrorInvalidArgument("order must be newest or oldest, got %q", x.Order)
	}
	if x.Limit < 0 {
		return ErrorInvalidArgument("limit must be >= 0")
	}
	return nil
}

type ListHistoryReply struct {
	Outcomes []*Outcome `json:"outcomes"`
	Total    int32      `json:"total"`
	Capacity int32      `json:"capacity"`
}

type ClearHistoryRequest struct{}

type CreateBatchRequest struct {
	Spins       int64          `json:"spins"`
	Workers     int32          `json:"workers"`
	Seed        uint64         `json:"seed"`
	Description string         `json:"description"`
	Physics     *PhysicsConfig `json:"physics,omitempty"` // 为空时使用当前配置
}

func (x *CreateBatchRequest) Validate() error {
	if x.Spins <= 0 {
		return ErrorInvalidArgument("spins must be > 0")
	}
	if x.Workers < 0 {
		return ErrorInvalidArgument("workers must be >= 0")
	}
	if len(x.Description) > 255 {
		return ErrorInvalidArgument("description too long")
	}
	return x.Physics.Validate()
}

type BatchRequest struct {
	BatchId string `json:"batch_id"`
}

func (x *BatchRequest) Validate() error {
	if x.BatchId == "" {
		return ErrorInvalidArgument("batch_id is required")
	}
	return nil
}

type ListBatchesRequest struct {
	Status string `json:"status"`
}

// Batch 批量模拟进度与结果
type Batch struct {
	BatchId     string         `json:"batch_id"`
	Status      string         `json:"status"`
	Description string         `json:"description"`
	Spins       int64          `json:"spins"`
	Workers     int32          `json:"workers"`
	Seed        uint64         `json:"seed"`
	Physics     *PhysicsConfig `json:"physics"`
	Completed   int64          `json:"completed"`
	Failed      int64          `json:"failed"`
	ProgressPct float64        `json:"progress_pct"`
	SpinsPerSec float64        `json:"spins_per_sec"`
	Counts      []int64        `json:"counts"`
	Red         int64          `json:"red"`
	Black       int64          `json:"black"`
	Green       int64          `json:"green"`
	ChiSquare   float64        `json:"chi_square"`
	Uniform     bool           `json:"uniform"`
	MeanElapsed float64        `json:"mean_elapsed"`
	ChartUrl    string         `json:"chart_url,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
}

type BatchReply struct {
	Batch *Batch `json:"batch"`
}

type ListBatchesReply struct {
	Batches []*Batch `json:"batches"`
	Total   int32    `json:"total"`
}

func (x *Batch) String() string {
	return fmt.Sprintf("%s[%s %d/%d]", x.BatchId, x.Status, x.Completed+x.Failed, x.Spins)
}

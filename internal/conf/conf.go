package conf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Bootstrap 配置根，对应 configs/config.yaml
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Roulette *Roulette `json:"roulette"`
	Log      *Log      `json:"log"`
	Notify   *Notify   `json:"notify"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
	S3       *Data_S3       `json:"s3"`
}

type Data_Database struct {
	Driver       string `json:"driver"`
	Source       string `json:"source"`
	MaxIdleConns int32  `json:"max_idle_conns"`
	MaxOpenConns int32  `json:"max_open_conns"`
}

type Data_Redis struct {
	Addr         []string  `json:"addr"`
	Password     string    `json:"password"`
	Db           int32     `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
}

type Data_S3 struct {
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	AccessKeyId     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Endpoint        string `json:"endpoint"`
}

// Roulette 业务配置
type Roulette struct {
	Physics   *Roulette_Physics  `json:"physics"`
	Tuning    *Roulette_Tuning   `json:"tuning"`
	FrameRate int32              `json:"frame_rate"`
	AutoSpin  *Roulette_AutoSpin `json:"auto_spin"`
	History   *Roulette_History  `json:"history"`
	Batch     *Roulette_Batch    `json:"batch"`
	Chart     *Roulette_Chart    `json:"chart"`
}

// Roulette_Physics 与 wheel.PhysicsConfig 一一对应
type Roulette_Physics struct {
	WheelRpm        float64 `json:"wheel_rpm"`
	BallRpm         float64 `json:"ball_rpm"`
	Restitution     float64 `json:"restitution"`
	ScatterVariance float64 `json:"scatter_variance"`
	TiltAngle       float64 `json:"tilt_angle"`
	Duration        float64 `json:"duration"`
}

// Roulette_Tuning 经验常数覆盖项，零值取默认
type Roulette_Tuning struct {
	BounceProbability float64 `json:"bounce_probability"`
	DropBaseThreshold float64 `json:"drop_base_threshold"`
	TiltSensitivity   float64 `json:"tilt_sensitivity"`
	KickScale         float64 `json:"kick_scale"`
	RadialKickScale   float64 `json:"radial_kick_scale"`
	MaxDeflectorHits  int32   `json:"max_deflector_hits"`
}

type Roulette_AutoSpin struct {
	Enabled bool      `json:"enabled"`
	Delay   *Duration `json:"delay"`
}

type Roulette_History struct {
	Capacity int32  `json:"capacity"`
	Client   string `json:"client"`
}

type Roulette_Batch struct {
	MaxConcurrent   int32     `json:"max_concurrent"`
	MaxSpins        int64     `json:"max_spins"`
	Workers         int32     `json:"workers"`
	Step            *Duration `json:"step"`
	SpinLimit       *Duration `json:"spin_limit"`
	Retention       *Duration `json:"retention"`
	CleanupInterval *Duration `json:"cleanup_interval"`
}

type Roulette_Chart struct {
	GenerateLocal bool   `json:"generate_local"`
	UploadToS3    bool   `json:"upload_to_s3"`
	OutputDir     string `json:"output_dir"`
}

type Log struct {
	Mode  int32  `json:"mode"`
	Level string `json:"level"`
	App   string `json:"app"`
	Dir   string `json:"dir"`
	File  bool   `json:"file"`
}

type Notify struct {
	Enabled       bool   `json:"enabled"`
	WebhookUrl    string `json:"webhook_url"`
	SigningSecret string `json:"signing_secret"`
	Prefix        string `json:"prefix"`
}

// Duration 支持 "500ms"/"1.5s" 字符串或数字（秒）
type Duration struct {
	time.Duration
}

func NewDuration(d time.Duration) *Duration { return &Duration{Duration: d} }

// AsDuration nil 安全
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

// AsDurationOr 未配置或非正时返回 def
func (d *Duration) AsDurationOr(def time.Duration) time.Duration {
	if v := d.AsDuration(); v > 0 {
		return v
	}
	return def
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw any
	if err := jsoniter.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		d.Duration = 0
	case float64:
		d.Duration = time.Duration(v * float64(time.Second))
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			d.Duration = time.Duration(f * float64(time.Second))
			return nil
		}
		pd, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("conf: invalid duration %q: %w", v, err)
		}
		d.Duration = pd
	default:
		return fmt.Errorf("conf: invalid duration %s", string(b))
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Duration.String())), nil
}

func (x *Server) GetHttp() *Server_HTTP {
	if x != nil {
		return x.Http
	}
	return nil
}

func (x *Data) GetDatabase() *Data_Database {
	if x != nil {
		return x.Database
	}
	return nil
}

func (x *Data) GetRedis() *Data_Redis {
	if x != nil {
		return x.Redis
	}
	return nil
}

func (x *Data) GetS3() *Data_S3 {
	if x != nil {
		return x.S3
	}
	return nil
}

func (x *Roulette) GetPhysics() *Roulette_Physics {
	if x != nil {
		return x.Physics
	}
	return nil
}

func (x *Roulette) GetTuning() *Roulette_Tuning {
	if x != nil {
		return x.Tuning
	}
	return nil
}

func (x *Roulette) GetFrameRate() int32 {
	if x != nil {
		return x.FrameRate
	}
	return 0
}

func (x *Roulette) GetAutoSpin() *Roulette_AutoSpin {
	if x != nil {
		return x.AutoSpin
	}
	return nil
}

func (x *Roulette) GetHistory() *Roulette_History {
	if x != nil {
		return x.History
	}
	return nil
}

func (x *Roulette) GetBatch() *Roulette_Batch {
	if x != nil {
		return x.Batch
	}
	return nil
}

func (x *Roulette) GetChart() *Roulette_Chart {
	if x != nil {
		return x.Chart
	}
	return nil
}

func (x *Roulette_History) GetCapacity() int32 {
	if x != nil {
		return x.Capacity
	}
	return 0
}

func (x *Roulette_History) GetClient() string {
	if x != nil {
		return x.Client
	}
	return ""
}

func (x *Roulette_AutoSpin) GetEnabled() bool {
	if x != nil {
		return x.Enabled
	}
	return false
}

func (x *Roulette_AutoSpin) GetDelay() *Duration {
	if x != nil {
		return x.Delay
	}
	return nil
}

func (x *Roulette_Batch) GetMaxConcurrent() int32 {
	if x != nil {
		return x.MaxConcurrent
	}
	return 0
}

func (x *Roulette_Batch) GetMaxSpins() int64 {
	if x != nil {
		return x.MaxSpins
	}
	return 0
}

func (x *Roulette_Batch) GetWorkers() int32 {
	if x != nil {
		return x.Workers
	}
	return 0
}

func (x *Roulette_Batch) GetStep() *Duration {
	if x != nil {
		return x.Step
	}
	return nil
}

func (x *Roulette_Batch) GetSpinLimit() *Duration {
	if x != nil {
		return x.SpinLimit
	}
	return nil
}

func (x *Roulette_Batch) GetRetention() *Duration {
	if x != nil {
		return x.Retention
	}
	return nil
}

func (x *Roulette_Batch) GetCleanupInterval() *Duration {
	if x != nil {
		return x.CleanupInterval
	}
	return nil
}

func (x *Roulette_Chart) GetGenerateLocal() bool {
	if x != nil {
		return x.GenerateLocal
	}
	return false
}

func (x *Roulette_Chart) GetUploadToS3() bool {
	if x != nil {
		return x.UploadToS3
	}
	return false
}

func (x *Roulette_Chart) GetOutputDir() string {
	if x != nil {
		return x.OutputDir
	}
	return ""
}

func (x *Notify) GetEnabled() bool {
	if x != nil {
		return x.Enabled
	}
	return false
}

func (x *Notify) GetWebhookUrl() string {
	if x != nil {
		return x.WebhookUrl
	}
	return ""
}

func (x *Notify) GetSigningSecret() string {
	if x != nil {
		return x.SigningSecret
	}
	return ""
}

func (x *Notify) GetPrefix() string {
	if x != nil {
		return x.Prefix
	}
	return ""
}

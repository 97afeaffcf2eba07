package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelBatchID = "batch_id"
	labelNumber  = "number"
	labelColor   = "color"
)

// 指标名规范：roulette_<name>；批量模拟指标带 batch_id 标签

// 实时轮盘
var (
	spinsStarted   = promauto.NewCounter(prometheus.CounterOpts{Name: "roulette_spins_started_total", Help: "开局次数"})
	spinsCompleted = promauto.NewCounter(prometheus.CounterOpts{Name: "roulette_spins_completed_total", Help: "落定次数"})
	outcomes       = promauto.NewCounterVec(prometheus.CounterOpts{Name: "roulette_outcomes_total", Help: "各号码出现次数"}, []string{labelNumber, labelColor})
	deflectorHits  = promauto.NewCounter(prometheus.CounterOpts{Name: "roulette_deflector_hits_total", Help: "挡块反弹次数"})
	phase          = promauto.NewGauge(prometheus.GaugeOpts{Name: "roulette_phase", Help: "当前阶段 0=idle 1=spinning 2=dropping 3=settling"})
	ballSpeed      = promauto.NewGauge(prometheus.GaugeOpts{Name: "roulette_ball_speed_deg_per_sec", Help: "球相对轮盘角速度绝对值"})
	ballRadius     = promauto.NewGauge(prometheus.GaugeOpts{Name: "roulette_ball_radius", Help: "球半径"})
	spinElapsed    = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roulette_spin_elapsed_seconds",
		Help:    "单局模拟时长",
		Buckets: prometheus.LinearBuckets(10, 2.5, 12),
	})
)

// 批量模拟
var (
	batchProgressPct  = newBatchGauge("roulette_batch_progress_pct", "批量进度 (0-100)")
	batchSpinsPerSec  = newBatchGauge("roulette_batch_spins_per_sec", "每秒完成局数")
	batchChiSquare    = newBatchGauge("roulette_batch_chi_square", "号码分布卡方值 (36 自由度)")
	batchMeanElapsed  = newBatchGauge("roulette_batch_mean_elapsed_seconds", "平均单局模拟时长")
	batchDeflectorHit = newBatchGauge("roulette_batch_deflector_hits", "累计挡块反弹次数")
	batchFailed       = newBatchGauge("roulette_batch_failed_spins", "未落定局数")
)

func newBatchGauge(name, help string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{labelBatchID})
}

func set(g *prometheus.GaugeVec, labels prometheus.Labels, v float64) { g.With(labels).Set(v) }

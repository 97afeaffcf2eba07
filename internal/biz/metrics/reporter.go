package metrics

import (
	"math"
	"strconv"

	"roulette/internal/biz/wheel"

	"github.com/prometheus/client_golang/prometheus"
)

// SpinStarted 开局计数
func SpinStarted() { spinsStarted.Inc() }

// ObserveOutcome 落定结果
func ObserveOutcome(o wheel.Outcome) {
	spinsCompleted.Inc()
	outcomes.WithLabelValues(strconv.Itoa(o.Number), string(o.Color)).Inc()
	spinElapsed.Observe(o.Elapsed)
}

// ObserveImpact 仅统计实际反弹
func ObserveImpact(i wheel.Impact) {
	if i.Bounced {
		deflectorHits.Inc()
	}
}

// ObserveFrame 每帧刷新实时 gauge
func ObserveFrame(s wheel.State) {
	phase.Set(float64(s.Phase))
	ballSpeed.Set(math.Abs(s.BallVelocity))
	ballRadius.Set(s.BallRadius)
}

// BatchSample 批量模拟的一次采样
type BatchSample struct {
	ID            string
	ProgressPct   float64
	SpinsPerSec   float64
	ChiSquare     float64
	MeanElapsed   float64
	DeflectorHits int64
	Failed        int64
}

// ReportBatch 上报批量模拟指标
func ReportBatch(s BatchSample) {
	lbl := prometheus.Labels{labelBatchID: s.ID}
	set(batchProgressPct, lbl, s.ProgressPct)
	set(batchSpinsPerSec, lbl, s.SpinsPerSec)
	set(batchChiSquare, lbl, s.ChiSquare)
	set(batchMeanElapsed, lbl, s.MeanElapsed)
	set(batchDeflectorHit, lbl, float64(s.DeflectorHits))
	set(batchFailed, lbl, float64(s.Failed))
}

// DeleteBatch 批量删除后移除对应标签
func DeleteBatch(id string) {
	lbl := prometheus.Labels{labelBatchID: id}
	for _, g := range []*prometheus.GaugeVec{batchProgressPct, batchSpinsPerSec, batchChiSquare, batchMeanElapsed, batchDeflectorHit, batchFailed} {
		g.Delete(lbl)
	}
}

package batch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"roulette/internal/biz/chart"
	"roulette/internal/biz/wheel"
	"roulette/internal/notify"
	"roulette/pkg/xgo"
)

// chiSquareCritical95 自由度 36、显著性 0.05 的卡方临界值
const chiSquareCritical95 = 50.998

// Report 批量模拟报告
type Report struct {
	BatchID           string                   `json:"batch_id"`
	Description       string                   `json:"description"`
	Status            Status                   `json:"status"`
	Target            int64                    `json:"target"`
	Completed         int64                    `json:"completed"`
	Failed            int64                    `json:"failed"`
	Counts            [wheel.PocketCount]int64 `json:"counts"` // 下标为号码
	Red               int64                    `json:"red"`
	Black             int64                    `json:"black"`
	Green             int64                    `json:"green"`
	ChiSquare         float64                  `json:"chi_square"`
	Uniform           bool                     `json:"uniform"` // 卡方未超过 0.05 临界值
	MeanElapsed       float64                  `json:"mean_elapsed"`
	MeanDeflectorHits float64                  `json:"mean_deflector_hits"`
	WallTime          time.Duration            `json:"wall_time"`
	ChartURL          string                   `json:"chart_url"`
	Physics           wheel.PhysicsConfig      `json:"physics"`
	CreatedAt         time.Time                `json:"created_at"`
	FinishedAt        time.Time                `json:"finished_at"`
}

// ChiSquare 各号码次数相对均匀分布的卡方统计量
func ChiSquare(counts []int64) float64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(counts) == 0 {
		return 0
	}
	expected := float64(total) / float64(len(counts))
	var chi float64
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi
}

// BuildReport 由快照生成报告
func BuildReport(snap StatsSnapshot) *Report {
	r := &Report{
		BatchID:     snap.ID,
		Description: snap.Config.Description,
		Status:      snap.Status,
		Target:      snap.Target,
		Completed:   snap.Completed,
		Failed:      snap.Failed,
		Counts:      snap.Counts,
		ChiSquare:   ChiSquare(snap.Counts[:]),
		MeanElapsed: snap.MeanElapsed(),
		ChartURL:    snap.ChartURL,
		Physics:     snap.Config.Physics,
		CreatedAt:   snap.CreatedAt,
		FinishedAt:  snap.FinishedAt,
	}
	r.Uniform = r.ChiSquare <= chiSquareCritical95
	for n, c := range snap.Counts {
		switch wheel.ColorOf(n) {
		case wheel.Red:
			r.Red += c
		case wheel.Black:
			r.Black += c
		default:
			r.Green += c
		}
	}
	if snap.Completed > 0 {
		r.MeanDeflectorHits = float64(snap.DeflectorHits) / float64(snap.Completed)
	}
	if !snap.StartedAt.IsZero() {
		end := snap.FinishedAt
		if end.IsZero() {
			end = time.Now()
		}
		r.WallTime = end.Sub(snap.StartedAt)
	}
	return r
}

// Bars 按轮盘物理顺序的柱状图数据
func (r *Report) Bars() []chart.Bar {
	bars := make([]chart.Bar, 0, wheel.PocketCount)
	for _, n := range wheel.PocketLayout {
		bars = append(bars, chart.Bar{
			Label: strconv.Itoa(n),
			Value: float64(r.Counts[n]),
			Color: barColor(wheel.ColorOf(n)),
		})
	}
	return bars
}

// Expected 均匀分布下每个号码的期望次数
func (r *Report) Expected() float64 {
	return float64(r.Completed) / wheel.PocketCount
}

// Hottest 出现最多的号码
func (r *Report) Hottest() (number int, count int64) {
	for n, c := range r.Counts {
		if c > count {
			number, count = n, c
		}
	}
	return number, count
}

func barColor(c wheel.Color) string {
	switch c {
	case wheel.Red:
		return "#c0392b"
	case wheel.Black:
		return "#2c3e50"
	}
	return "#27ae60"
}

// BuildMessage 批量结束的飞书消息
func BuildMessage(r *Report) *notify.Message {
	if r == nil {
		return &notify.Message{Title: "批量模拟结束"}
	}
	hot, hotCount := r.Hottest()
	uniform := "是"
	color := notify.ColorGreen
	if !r.Uniform {
		uniform = "否"
		color = notify.ColorRed
	}
	lines := []string{
		fmt.Sprintf("**批次**：%s", r.BatchID),
		fmt.Sprintf("**状态**：%s", r.Status),
		fmt.Sprintf("**进度**：%d / %d (%.1f%%)", r.Completed+r.Failed, r.Target, xgo.PctCap100(r.Completed+r.Failed, r.Target)),
		fmt.Sprintf("**未落定**：%d", r.Failed),
		fmt.Sprintf("**耗时**：%s", xgo.ShortDuration(r.WallTime)),
		fmt.Sprintf("**红/黑/绿**：%d / %d / %d", r.Red, r.Black, r.Green),
		fmt.Sprintf("**最热号码**：%d (%d 次)", hot, hotCount),
		fmt.Sprintf("**卡方**：%.2f (均匀：%s)", r.ChiSquare, uniform),
		fmt.Sprintf("**平均模拟时长**：%.2fs", r.MeanElapsed),
		fmt.Sprintf("**平均反弹**：%.2f", r.MeanDeflectorHits),
	}
	if r.ChartURL != "" {
		lines = append(lines, fmt.Sprintf("[分布图](%s)", r.ChartURL))
	}
	return &notify.Message{Title: "批量模拟结束", Content: strings.Join(lines, "\n"), Color: color}
}

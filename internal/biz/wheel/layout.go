package wheel

import "math"

// PocketCount 欧式单零轮盘格数
const PocketCount = 37

// PocketWidth 单格角宽（度）
const PocketWidth = 360.0 / PocketCount

// 几何尺寸，渲染单位（1x 下为 px）
const (
	RimRadius       = 180.0
	PocketRadius    = 135.0
	DeflectorRadius = 155.0
)

// PocketLayout 轮盘物理排列，下标 0 为零号格
var PocketLayout = [PocketCount]int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30, 8, 23, 10,
	5, 24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7, 28, 12, 35, 3, 26,
}

// Color 号码颜色，仅用于展示
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

var redNumbers = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 7: {}, 9: {}, 12: {}, 14: {}, 16: {}, 18: {},
	19: {}, 21: {}, 23: {}, 25: {}, 27: {}, 30: {}, 32: {}, 34: {}, 36: {},
}

var indexByNumber = func() map[int]int {
	m := make(map[int]int, PocketCount)
	for i, n := range PocketLayout {
		m[n] = i
	}
	return m
}()

// ColorOf 号码颜色，0..36 以外按绿色处理
func ColorOf(n int) Color {
	if n <= 0 || n > 36 {
		return Green
	}
	if _, ok := redNumbers[n]; ok {
		return Red
	}
	return Black
}

// PocketIndex 累计角度（相对轮盘）映射到格下标
func PocketIndex(angle float64) int {
	return int(math.Round(normalizeDeg(angle)/PocketWidth)) % PocketCount
}

// Resolve 由球最终角度得出中奖号码
func Resolve(ballAngle float64) int {
	return PocketLayout[PocketIndex(ballAngle)]
}

// IndexOf 号码所在格下标
func IndexOf(number int) (int, bool) {
	i, ok := indexByNumber[number]
	return i, ok
}

// PocketAngle 号码所在格中心角（相对轮盘）
func PocketAngle(number int) (float64, bool) {
	i, ok := IndexOf(number)
	if !ok {
		return 0, false
	}
	return float64(i) * PocketWidth, true
}

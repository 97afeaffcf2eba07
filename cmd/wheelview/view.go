package main

import (
	"fmt"
	"math"

	v1 "roulette/api/roulette/v1"
	"roulette/internal/biz/wheel"

	"github.com/gdamore/tcell/v2"
)

// 终端字符宽高比约 1:2，横向半径放大
const aspect = 2.0

// project 世界角（度，0 在正上方顺时针）投影到屏幕坐标
func project(cx, cy int, radius, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	x := float64(cx) + math.Sin(rad)*radius*aspect
	y := float64(cy) - math.Cos(rad)*radius
	return int(math.Round(x)), int(math.Round(y))
}

func pocketStyle(n int) tcell.Style {
	switch wheel.ColorOf(n) {
	case wheel.Red:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed)
	case wheel.Black:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func draw(s tcell.Screen, reply *v1.GetStateReply, status string) {
	s.Clear()
	w, h := s.Size()
	cx, cy := w/2, h/2
	radius := math.Min(float64(h)/2-2, float64(w)/(2*aspect)-3)
	if radius < 4 {
		drawText(s, 0, 0, tcell.StyleDefault, "terminal too small")
		s.Show()
		return
	}

	var st v1.WheelState
	if reply != nil && reply.State != nil {
		st = *reply.State
	}

	for i, n := range wheel.PocketLayout {
		x, y := project(cx, cy, radius, st.WheelAngle+float64(i)*wheel.PocketWidth)
		drawText(s, x-1, y, pocketStyle(n), fmt.Sprintf("%2d", n))
	}

	// 球半径按轮缘半径比例缩放
	ballR := radius * st.BallRadius / wheel.RimRadius
	if st.BallRadius <= 0 {
		ballR = radius * wheel.DeflectorRadius / wheel.RimRadius
	}
	bx, by := project(cx, cy, ballR, st.WheelAngle+st.BallAngle)
	s.SetContent(bx, by, '●', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	info := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	drawText(s, 0, 0, info, fmt.Sprintf("phase %-9s t=%5.2fs hits=%d tilt=%.1f°", st.Phase, st.Elapsed, st.DeflectorHits, st.TiltAngle))
	drawText(s, 0, 1, info, fmt.Sprintf("wheel %7.1f°/s  ball %7.1f°/s", st.WheelVelocity, st.BallVelocity))
	if reply != nil && reply.Last != nil {
		drawText(s, cx-4, cy, pocketStyle(int(reply.Last.Number)), fmt.Sprintf(" %2d ", reply.Last.Number))
	}
	drawText(s, 0, h-1, tcell.StyleDefault, "space: spin  q: quit  "+status)
	s.Show()
}

package main

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound 挡块撞击和开奖提示音，未初始化时所有播放为空操作
type Sound struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewSound() *Sound {
	return &Sound{mixer: &beep.Mixer{}}
}

func (s *Sound) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

func (s *Sound) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Clear()
	s.initialized = false
}

// PlayClick 短促高频衰减音
func (s *Sound) PlayClick() {
	s.play(newTone(sampleRate, 1800, 25*time.Millisecond, 0.4))
}

// PlayChime 开奖提示
func (s *Sound) PlayChime() {
	s.play(beep.Seq(
		newTone(sampleRate, 660, 120*time.Millisecond, 0.25),
		newTone(sampleRate, 990, 200*time.Millisecond, 0.25),
	))
}

func (s *Sound) play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// tone 带线性衰减包络的正弦波
type tone struct {
	freq   float64
	gain   float64
	pos    int
	length int
	rate   beep.SampleRate
}

func newTone(rate beep.SampleRate, freq float64, d time.Duration, gain float64) *tone {
	return &tone{freq: freq, gain: gain, length: rate.N(d), rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.length {
			return i, i > 0
		}
		env := 1 - float64(t.pos)/float64(t.length)
		v := t.gain * env * math.Sin(2*math.Pi*t.freq*float64(t.pos)/float64(t.rate))
		samples[i][0], samples[i][1] = v, v
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	v1 "roulette/api/roulette/v1"

	"github.com/gdamore/tcell/v2"
	"github.com/go-kratos/kratos/v2/transport/http"
)

func main() {
	endpoint := flag.String("endpoint", "127.0.0.1:8000", "roulette http endpoint")
	fps := flag.Int("fps", 20, "poll rate")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()
	if *fps < 1 {
		*fps = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := http.NewClient(ctx,
		http.WithEndpoint(*endpoint),
		http.WithTimeout(2*time.Second),
	)
	if err != nil {
		fmt.Printf("dial %s failed: %v\n", *endpoint, err)
		os.Exit(1)
	}
	defer conn.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Printf("screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Printf("screen init: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	sound := NewSound()
	if !*mute {
		if err := sound.Initialize(); err != nil {
			// 无声卡时静默运行
			sound = NewSound()
		}
	}
	defer sound.Cleanup()

	v := &viewer{
		client: v1.NewRouletteServiceHTTPClient(conn),
		screen: screen,
		sound:  sound,
	}
	v.run(ctx, time.Second/time.Duration(*fps))
}

type viewer struct {
	client v1.RouletteServiceHTTPClient
	screen tcell.Screen
	sound  *Sound

	state    *v1.GetStateReply
	lastHits int32
	status   string
}

func (v *viewer) run(ctx context.Context, interval time.Duration) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !v.handle(ctx, ev) {
				return
			}
		case <-ticker.C:
			v.poll(ctx)
			draw(v.screen, v.state, v.status)
		}
	}
}

// handle 返回 false 表示退出
func (v *viewer) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ', 's':
			reply, err := v.client.Spin(ctx, &v1.SpinRequest{})
			switch {
			case err != nil:
				v.status = "spin failed: " + err.Error()
			case !reply.Started:
				v.status = "spin in progress"
			default:
				v.status = "spinning"
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) poll(ctx context.Context) {
	reply, err := v.client.GetState(ctx, &v1.GetStateRequest{})
	if err != nil {
		v.status = "poll failed: " + err.Error()
		return
	}
	prev := v.state
	v.state = reply
	if reply.State == nil {
		return
	}
	if hits := reply.State.DeflectorHits; hits > v.lastHits {
		v.sound.PlayClick()
	}
	v.lastHits = reply.State.DeflectorHits
	if prev != nil && prev.State != nil && prev.State.Phase != "idle" && reply.State.Phase == "idle" {
		v.sound.PlayChime()
		if reply.Last != nil {
			v.status = fmt.Sprintf("result %d %s", reply.Last.Number, reply.Last.Color)
		}
	}
}

package notify

import (
	"context"
)

// 卡片标题颜色
const (
	ColorBlue  = "blue"
	ColorGreen = "green"
	ColorRed   = "red"
)

// Message 通知消息，Content 为 lark_md
type Message struct {
	Title   string
	Content string
	Color   string
}

// Notifier 通知发送接口
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Noop 空实现
type Noop struct{}

func (Noop) Send(context.Context, *Message) error { return nil }
